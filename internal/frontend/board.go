package frontend

import (
	"fmt"

	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// Board renders the grid of cards and the menu of grid sizes.
type Board struct {
	app.Compo

	onUpdate func()
}

func (b *Board) OnMount(ctx app.Context) {
	klog.Infof("Board component: OnMount called")
	b.onUpdate = func() {
		ctx.Dispatch(func(ctx app.Context) {})
	}
	State.Listeners["board"] = b.onUpdate
}

func (b *Board) OnDismount() {
	delete(State.Listeners, "board")
}

func (b *Board) OnNav(ctx app.Context) {
	if State.Conn != nil {
		return
	}
	if err := State.ConnectWS(); err != nil {
		State.Error = fmt.Sprintf("Failed to connect: %v", err)
	}
}

func (b *Board) onToggleSound(ctx app.Context, e app.Event) {
	e.PreventDefault()
	State.ToggleSound()
}

func (b *Board) renderMenu() app.UI {
	var buttons []app.UI
	for _, grid := range game.Grids {
		buttons = append(buttons, app.Li().Body(
			app.Button().
				Class("secondary").
				Text(grid.String()).
				OnClick(func(ctx app.Context, e app.Event) {
					State.SendReset(grid)
				}),
		))
	}
	return app.Ul().Body(buttons...)
}

func (b *Board) renderCard(c game.Card, locked bool) app.UI {
	src := "/web/images/card_back.png"
	if c.Revealed {
		src = fmt.Sprintf("/web/images/symbol_%02d.png", c.Icon)
	}
	class := "memory-card"
	if c.Matched {
		class += " matched"
	}
	id := c.ID
	return app.Button().
		Class(class).
		Disabled(locked || c.Revealed).
		OnClick(func(ctx app.Context, e app.Event) {
			State.SendSelect(id)
		}).
		Body(app.Img().Src(src).Style("width", "100%"))
}

func (b *Board) Render() app.UI {
	soundIcon := "🔊"
	if !State.SoundEnabled {
		soundIcon = "🔇"
	}

	var content app.UI
	switch {
	case State.Error != "":
		content = app.P().Style("color", "red").Text(State.Error)
	case State.Board == nil:
		content = app.Div().Aria("busy", "true").Text("Connecting to game...")
	default:
		board := State.Board
		locked := board.Phase == "evaluating" || board.Phase == "completed"
		var cards []app.UI
		for _, c := range board.Cards {
			cards = append(cards, b.renderCard(c, locked))
		}
		content = app.Article().Body(
			app.Header().Body(
				app.Strong().Text(fmt.Sprintf("Score: %d", board.Score)),
				app.Span().Style("margin-left", "1rem").
					Text(fmt.Sprintf("Pairs: %d/%d", board.MatchCount, board.Grid.Pairs())),
				app.Span().Style("margin-left", "1rem").Text(State.Banner),
			),
			app.Div().
				Class("memory-grid").
				Style("display", "grid").
				Style("gap", "0.5rem").
				Style("grid-template-columns", fmt.Sprintf("repeat(%d, 1fr)", board.Grid.Columns)).
				Body(cards...),
		)
	}

	return app.Main().Class("container").Body(
		app.Nav().Body(
			app.Ul().Body(
				app.Li().Body(app.Strong().Text("GoMemory")),
				app.Li().Body(
					app.A().Href("#").OnClick(b.onToggleSound).Style("text-decoration", "none").Body(
						app.Span().Class("sound-icon").Text(soundIcon),
					),
				),
			),
			b.renderMenu(),
		),
		content,
	)
}
