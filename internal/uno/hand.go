package uno

// Hand is the unordered multiset of cards owned by one player. It is mutated
// only by the session that deals into it.
type Hand struct {
	cards []Card
}

// NewHand returns an empty hand.
func NewHand() *Hand {
	return &Hand{}
}

// Add appends a card to the hand.
func (h *Hand) Add(card Card) {
	h.cards = append(h.cards, card)
}

// Remove removes exactly one card equal to the given value. It reports false
// without mutating anything if no such card is held; a hand with two red 7s
// loses only one of them.
func (h *Hand) Remove(card Card) bool {
	for i, c := range h.cards {
		if c == card {
			h.cards = append(h.cards[:i], h.cards[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether at least one equal card is held.
func (h *Hand) Contains(card Card) bool {
	for _, c := range h.cards {
		if c == card {
			return true
		}
	}
	return false
}

// Playable returns the held cards that are legal plays on the given top card
// and active color. Pure query; duplicates in the hand appear as duplicates
// in the result.
func (h *Hand) Playable(top Card, active Color) []Card {
	var out []Card
	for _, c := range h.cards {
		if CanPlayOn(c, top, active) {
			out = append(out, c)
		}
	}
	return out
}

// Size returns the number of cards held.
func (h *Hand) Size() int { return len(h.cards) }

// Empty reports whether the hand has been played out.
func (h *Hand) Empty() bool { return len(h.cards) == 0 }

// Cards returns a copy of the held cards.
func (h *Hand) Cards() []Card {
	return append([]Card(nil), h.cards...)
}
