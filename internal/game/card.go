package game

// Reveal turns the card face-up. It returns false if it already was.
func (c *Card) Reveal() bool {
	if c.Revealed {
		return false
	}
	c.Revealed = true
	return true
}

// Conceal turns the card face-down again. Matched cards stay revealed, and
// Conceal returns false for them.
func (c *Card) Conceal() bool {
	if c.Matched || !c.Revealed {
		return false
	}
	c.Revealed = false
	return true
}

// Match marks the card as permanently paired, which also keeps it revealed.
func (c *Card) Match() {
	c.Matched = true
	c.Revealed = true
}

// Selectable reports whether a player may still pick this card.
func (c *Card) Selectable() bool {
	return !c.Revealed && !c.Matched
}
