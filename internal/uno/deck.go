// internal/uno/deck.go
package uno

import (
	"errors"
	"math/rand"
	"time"
)

// ErrDeckExhausted is returned by DrawOne when the draw pile is empty and the
// discard pile has nothing left to recycle, i.e. every remaining card is in a
// hand. The current deal cannot continue past this point.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck owns the draw pile, the discard pile and the active color. Both piles
// are stacks: the last element is the top. The active color tracks the most
// recently played colored card, or the declared color after a wild.
type Deck struct {
	draw    []Card
	discard []Card
	active  Color
	rng     *rand.Rand
}

// NewDeck builds a full shuffled 108-card draw pile with an empty discard.
func NewDeck() *Deck {
	d := &Deck{
		draw: FullSet(),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	d.shuffle()
	return d
}

// RestoreDeck rebuilds a deck from snapshot state. The draw pile is assumed
// to already be shuffled (or about to be by the caller owning the restore).
func RestoreDeck(draw, discard []Card, active Color) *Deck {
	d := &Deck{
		draw:    append([]Card(nil), draw...),
		discard: append([]Card(nil), discard...),
		active:  active,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	d.shuffle()
	return d
}

func (d *Deck) shuffle() {
	d.rng.Shuffle(len(d.draw), func(i, j int) {
		d.draw[i], d.draw[j] = d.draw[j], d.draw[i]
	})
}

// DrawOne pops the top card of the draw pile. When the pile is empty it
// recycles every discard except the current top back into the draw pile,
// reshuffles, and retries; if nothing is left to recycle it reports
// ErrDeckExhausted.
func (d *Deck) DrawOne() (Card, error) {
	if len(d.draw) == 0 {
		if len(d.discard) <= 1 {
			return Card{}, ErrDeckExhausted
		}
		top := d.discard[len(d.discard)-1]
		d.draw = append(d.draw, d.discard[:len(d.discard)-1]...)
		d.discard = []Card{top}
		d.shuffle()
	}
	card := d.draw[len(d.draw)-1]
	d.draw = d.draw[:len(d.draw)-1]
	return card, nil
}

// Play pushes card onto the discard pile. For wild cards the declared color
// becomes the active color; the caller must have validated that a color was
// actually declared. For colored cards the card's own color takes over.
func (d *Deck) Play(card Card, declared Color) {
	d.discard = append(d.discard, card)
	if card.IsWild() {
		d.active = declared
	} else {
		d.active = card.Color()
	}
}

// FlipOpening draws the opening discard. Wild and action cards are slipped
// back into the draw pile and reshuffled until a plain number card comes up,
// so nobody is penalized or color-locked before anyone has acted.
func (d *Deck) FlipOpening() (Card, error) {
	for {
		card, err := d.DrawOne()
		if err != nil {
			return Card{}, err
		}
		if card.Kind() == KindNumber {
			d.discard = append(d.discard, card)
			d.active = card.Color()
			return card, nil
		}
		d.draw = append(d.draw, card)
		d.shuffle()
	}
}

// Bury slips cards underneath the discard pile without disturbing the top
// card. Used when a player leaves mid-game: their hand stays in circulation
// and will come back on the next recycle.
func (d *Deck) Bury(cards []Card) {
	d.discard = append(append([]Card(nil), cards...), d.discard...)
}

// Top returns the top discard, if any.
func (d *Deck) Top() (Card, bool) {
	if len(d.discard) == 0 {
		return Card{}, false
	}
	return d.discard[len(d.discard)-1], true
}

// ActiveColor returns the color currently in force.
func (d *Deck) ActiveColor() Color { return d.active }

// DrawSize returns the number of cards left in the draw pile.
func (d *Deck) DrawSize() int { return len(d.draw) }

// DiscardSize returns the number of cards in the discard pile.
func (d *Deck) DiscardSize() int { return len(d.discard) }

// Discards returns a copy of the discard pile, bottom first.
func (d *Deck) Discards() []Card {
	return append([]Card(nil), d.discard...)
}
