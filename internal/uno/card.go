// internal/uno/card.go
package uno

import (
	"encoding/json"
	"fmt"
)

// Color identifies one of the four chromatic card colors. ColorNone marks
// wild cards, which have no intrinsic color until one is declared.
type Color uint8

const (
	ColorNone Color = iota
	Red
	Yellow
	Green
	Blue
)

// Colors lists the four playable colors, in deck-composition order.
var Colors = [4]Color{Red, Yellow, Green, Blue}

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return "none"
	}
}

// MarshalText lets Color serialize as its name.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText parses a color name.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor converts a color name back to a Color. The empty string and
// "none" both map to ColorNone.
func ParseColor(s string) (Color, error) {
	switch s {
	case "red":
		return Red, nil
	case "yellow":
		return Yellow, nil
	case "green":
		return Green, nil
	case "blue":
		return Blue, nil
	case "", "none":
		return ColorNone, nil
	default:
		return ColorNone, fmt.Errorf("unknown color %q", s)
	}
}

// Kind identifies the card face.
type Kind uint8

const (
	KindNumber Kind = iota
	KindSkip
	KindReverse
	KindDrawTwo
	KindWild
	KindWildDrawFour
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindSkip:
		return "skip"
	case KindReverse:
		return "reverse"
	case KindDrawTwo:
		return "draw_two"
	case KindWild:
		return "wild"
	case KindWildDrawFour:
		return "wild_draw_four"
	default:
		return "unknown"
	}
}

// MarshalText lets Kind serialize as its name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "number":
		return KindNumber, nil
	case "skip":
		return KindSkip, nil
	case "reverse":
		return KindReverse, nil
	case "draw_two":
		return KindDrawTwo, nil
	case "wild":
		return KindWild, nil
	case "wild_draw_four":
		return KindWildDrawFour, nil
	default:
		return KindNumber, fmt.Errorf("unknown card kind %q", s)
	}
}

// Card is an immutable card value. Fields are unexported so that invalid
// combinations (a wild with a color, a skip with a numeric value) cannot be
// built outside the constructors below; untrusted input goes through Make.
// Cards compare by value, so two red 7s are equal and interchangeable.
type Card struct {
	kind  Kind
	color Color
	value int
}

// Number builds a numbered card. Value must be in [0,9] and the color must be
// chromatic; violating either is a programmer error.
func Number(color Color, value int) Card {
	if color == ColorNone || value < 0 || value > 9 {
		panic(fmt.Sprintf("uno: invalid number card %v %d", color, value))
	}
	return Card{kind: KindNumber, color: color, value: value}
}

// Skip builds a skip card of the given color.
func Skip(color Color) Card {
	mustChromatic(color, KindSkip)
	return Card{kind: KindSkip, color: color}
}

// Reverse builds a reverse card of the given color.
func Reverse(color Color) Card {
	mustChromatic(color, KindReverse)
	return Card{kind: KindReverse, color: color}
}

// DrawTwo builds a draw-two card of the given color.
func DrawTwo(color Color) Card {
	mustChromatic(color, KindDrawTwo)
	return Card{kind: KindDrawTwo, color: color}
}

// Wild builds a colorless wild card.
func Wild() Card { return Card{kind: KindWild} }

// WildDrawFour builds a colorless wild-draw-four card.
func WildDrawFour() Card { return Card{kind: KindWildDrawFour} }

func mustChromatic(color Color, kind Kind) {
	if color == ColorNone {
		panic(fmt.Sprintf("uno: %v card requires a color", kind))
	}
}

// Make validates and builds a card from loose parts. It is the boundary
// constructor for snapshots and wire commands, where the input is untrusted.
func Make(kind Kind, color Color, value int) (Card, error) {
	switch kind {
	case KindNumber:
		if color == ColorNone {
			return Card{}, fmt.Errorf("number card requires a color")
		}
		if value < 0 || value > 9 {
			return Card{}, fmt.Errorf("number card value %d out of range", value)
		}
		return Card{kind: KindNumber, color: color, value: value}, nil
	case KindSkip, KindReverse, KindDrawTwo:
		if color == ColorNone {
			return Card{}, fmt.Errorf("%v card requires a color", kind)
		}
		if value != 0 {
			return Card{}, fmt.Errorf("%v card cannot carry a value", kind)
		}
		return Card{kind: kind, color: color}, nil
	case KindWild, KindWildDrawFour:
		if color != ColorNone {
			return Card{}, fmt.Errorf("%v card cannot carry a color", kind)
		}
		if value != 0 {
			return Card{}, fmt.Errorf("%v card cannot carry a value", kind)
		}
		return Card{kind: kind}, nil
	default:
		return Card{}, fmt.Errorf("unknown card kind %d", kind)
	}
}

// Kind returns the card face.
func (c Card) Kind() Kind { return c.kind }

// Color returns the card's intrinsic color. Wild cards return ColorNone.
func (c Card) Color() Color { return c.color }

// Value returns the numeric value of a number card, and 0 for anything else.
func (c Card) Value() int { return c.value }

// IsWild reports whether the card has no intrinsic color.
func (c Card) IsWild() bool {
	return c.kind == KindWild || c.kind == KindWildDrawFour
}

func (c Card) String() string {
	switch c.kind {
	case KindNumber:
		return fmt.Sprintf("%v %d", c.color, c.value)
	case KindWild, KindWildDrawFour:
		return c.kind.String()
	default:
		return fmt.Sprintf("%v %v", c.color, c.kind)
	}
}

type cardJSON struct {
	Kind  Kind  `json:"kind"`
	Color Color `json:"color,omitempty"`
	Value int   `json:"value"`
}

// MarshalJSON serializes the card as {kind, color, value}.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Kind: c.kind, Color: c.color, Value: c.value})
}

// UnmarshalJSON parses and validates a card; invalid combinations are
// rejected the same way Make rejects them.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	card, err := Make(raw.Kind, raw.Color, raw.Value)
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// CanPlayOn reports whether candidate is a legal play on top given the
// active color (the declared color when top is wild, otherwise top's own
// color). Wilds are always legal; otherwise the candidate must match the
// active color, match a non-number kind, or match a number card's value.
func CanPlayOn(candidate, top Card, active Color) bool {
	if candidate.IsWild() {
		return true
	}
	effective := top.color
	if top.IsWild() {
		effective = active
	}
	if candidate.color == effective {
		return true
	}
	if candidate.kind == top.kind && candidate.kind != KindNumber {
		return true
	}
	return candidate.kind == KindNumber && top.kind == KindNumber && candidate.value == top.value
}

// FullSet returns the standard 108-card composition: per color one 0, two
// each of 1-9, two each of skip/reverse/draw-two, plus four wilds and four
// wild-draw-fours.
func FullSet() []Card {
	cards := make([]Card, 0, 108)
	for _, color := range Colors {
		cards = append(cards, Number(color, 0))
		for v := 1; v <= 9; v++ {
			cards = append(cards, Number(color, v), Number(color, v))
		}
		cards = append(cards,
			Skip(color), Skip(color),
			Reverse(color), Reverse(color),
			DrawTwo(color), DrawTwo(color),
		)
	}
	for i := 0; i < 4; i++ {
		cards = append(cards, Wild(), WildDrawFour())
	}
	return cards
}
