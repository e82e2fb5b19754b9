// internal/ai/ai.go

// Package ai picks moves for bot-controlled seats. It is a pure heuristic
// over the visible hand; it never sees other players' cards.
package ai

import (
	"github.com/cardtable/uno/internal/uno"
)

// Move is the bot's decision for one turn. Draw set means no card is played.
type Move struct {
	Draw     bool
	Card     uno.Card
	Declared uno.Color
}

// ChooseMove selects a play from hand against the given top card and active
// color. Colored cards are preferred over wilds (wilds keep their value for
// later), and among colored cards the bot plays from its most-held color to
// keep future options open. When nothing is playable the move is a draw.
func ChooseMove(hand []uno.Card, top uno.Card, active uno.Color) Move {
	var colored []uno.Card
	var wilds []uno.Card
	for _, c := range hand {
		if !uno.CanPlayOn(c, top, active) {
			continue
		}
		if c.IsWild() {
			wilds = append(wilds, c)
		} else {
			colored = append(colored, c)
		}
	}

	if len(colored) > 0 {
		counts := colorCounts(hand)
		best := colored[0]
		for _, c := range colored[1:] {
			if counts[c.Color()] > counts[best.Color()] {
				best = c
			}
		}
		return Move{Card: best}
	}

	if len(wilds) > 0 {
		// Plain wild before wild-draw-four: the four is worth more when the
		// penalty lands on a low hand.
		best := wilds[0]
		for _, c := range wilds[1:] {
			if c.Kind() == uno.KindWild {
				best = c
			}
		}
		return Move{Card: best, Declared: DeclareColor(hand)}
	}

	return Move{Draw: true}
}

// DeclareColor picks the color the bot holds the most of, so a wild play
// maximizes follow-up options. An empty or all-wild hand declares red.
func DeclareColor(hand []uno.Card) uno.Color {
	counts := colorCounts(hand)
	best := uno.Red
	for _, color := range uno.Colors {
		if counts[color] > counts[best] {
			best = color
		}
	}
	return best
}

func colorCounts(hand []uno.Card) map[uno.Color]int {
	counts := make(map[uno.Color]int, 4)
	for _, c := range hand {
		if c.Color() != uno.ColorNone {
			counts[c.Color()]++
		}
	}
	return counts
}
