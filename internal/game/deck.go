package game

import "math/rand/v2"

// BuildDeck returns the icon assignment for totalCards slots, shuffled with rng.
//
// Icons are taken from the catalog in order, two copies each, wrapping around
// when there are more pairs than icons. For an odd totalCards one extra copy
// of catalog[0] is added: that card can never be paired.
//
// The catalog must not be empty.
func BuildDeck(totalCards int, catalog Catalog, rng *rand.Rand) []IconID {
	if len(catalog) == 0 {
		panic("game.BuildDeck: empty icon catalog")
	}
	if totalCards <= 0 {
		return nil
	}
	deck := make([]IconID, 0, totalCards)
	pairs := totalCards / 2
	for i := range pairs {
		icon := catalog[i%len(catalog)]
		deck = append(deck, icon, icon)
	}
	if totalCards%2 == 1 {
		deck = append(deck, catalog[0])
	}
	Shuffle(deck, rng)
	return deck
}

// Shuffle permutes icons in place (Fisher–Yates).
func Shuffle(icons []IconID, rng *rand.Rand) {
	for i := len(icons) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		icons[i], icons[j] = icons[j], icons[i]
	}
}
