package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/janpfeifer/GoMemory/internal/engine"
	"github.com/janpfeifer/GoMemory/internal/frontend"
	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/janpfeifer/GoMemory/internal/platform/config"
	"github.com/janpfeifer/GoMemory/internal/prefs"
	"github.com/janpfeifer/GoMemory/internal/prefs/jsonfile"
	"github.com/janpfeifer/GoMemory/internal/prefs/sqlite"
	"github.com/janpfeifer/GoMemory/internal/snapshot"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// shutdownTimeout limits how long the server waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// ServerState holds the single game and the clients watching it.
type ServerState struct {
	Address string
	Engine  *engine.Engine

	hub   *Hub
	store prefs.Store
}

// NewServerState opens the configured store and resumes the saved game, or
// deals a new one.
func NewServerState(ctx context.Context, cfg config.Config) (*ServerState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	catalog, err := game.NewCatalog(cfg.Icons)
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	hub := NewHub()
	opts := []engine.Option{
		engine.WithNotifier(hub),
		engine.WithStore(snapshot.NewCodec(store)),
		engine.WithSettleDelay(cfg.SettleDelay),
	}
	if cfg.ScoreExpr != "" {
		rule, err := engine.NewExprRule(cfg.ScoreExpr)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		opts = append(opts, engine.WithScoring(rule))
	}
	eng, err := engine.New(catalog, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	grid := game.GridSpec{Columns: cfg.Columns, Rows: cfg.Rows}
	if err := eng.Resume(ctx, grid); err != nil {
		if errors.Is(err, engine.ErrInvalidGrid) {
			eng.Close()
			_ = store.Close()
			return nil, err
		}
		// The game is playable, it just could not be saved.
		klog.Errorf("Failed to save the new game: %v", err)
	}
	return &ServerState{Engine: eng, hub: hub, store: store}, nil
}

// Close cancels any pending judgment and closes the store.
func (s *ServerState) Close() error {
	s.Engine.Close()
	return s.store.Close()
}

func openStore(cfg config.Config) (prefs.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return prefs.NewMemoryStore(), nil
	case config.StoreJSON:
		return jsonfile.Open(cfg.StorePath)
	case config.StoreSQLite:
		return sqlite.Open(cfg.StorePath)
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// Routes returns the HTTP handler: websocket, health check, assets and the app.
func (s *ServerState) Routes() http.Handler {
	// Server-side prerendering reads the client state.
	frontend.InitState()
	app.Route("/", func() app.Composer { return &frontend.Board{} })

	h := &app.Handler{
		Name:        "GoMemory",
		Description: "A memory matching game",
		Styles: []string{
			"/web/css/pico.min.css",
			"/web/css/main.css",
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", s.HandleWS)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/web/*", http.StripPrefix("/web/", http.FileServer(http.Dir("web/"))))
	r.Handle("/*", h)
	return r
}

// Run starts the server and blocks until the context is canceled.
// If started is not nil, it receives the ServerState once the server listens.
func Run(ctx context.Context, cfg config.Config, started chan<- *ServerState) error {
	state, err := NewServerState(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := state.Close(); err != nil {
			klog.Errorf("Failed to close store: %v", err)
		}
	}()

	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	state.Address = listener.Addr().String()

	srv := &http.Server{
		Handler:           state.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		klog.Infof("Server started on %s", state.Address)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.Errorf("Server error: %v", err)
		}
	}()
	if started != nil {
		started <- state
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	klog.Infof("Shutting down server...")
	return srv.Shutdown(shutdownCtx)
}
