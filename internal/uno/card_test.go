package uno

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullSetComposition(t *testing.T) {
	cards := FullSet()
	require.Len(t, cards, 108)

	perColor := make(map[Color]int)
	perKind := make(map[Kind]int)
	zeroes := 0
	for _, c := range cards {
		perColor[c.Color()]++
		perKind[c.Kind()]++
		if c.Kind() == KindNumber && c.Value() == 0 {
			zeroes++
		}
	}

	for _, color := range Colors {
		assert.Equal(t, 25, perColor[color], "each color contributes 25 cards")
	}
	assert.Equal(t, 8, perColor[ColorNone], "eight colorless wilds")
	assert.Equal(t, 76, perKind[KindNumber])
	assert.Equal(t, 8, perKind[KindSkip])
	assert.Equal(t, 8, perKind[KindReverse])
	assert.Equal(t, 8, perKind[KindDrawTwo])
	assert.Equal(t, 4, perKind[KindWild])
	assert.Equal(t, 4, perKind[KindWildDrawFour])
	assert.Equal(t, 4, zeroes, "one zero per color")
}

func TestCanPlayOn(t *testing.T) {
	tests := []struct {
		name      string
		candidate Card
		top       Card
		active    Color
		want      bool
	}{
		{"same color different value", Number(Red, 7), Number(Red, 5), Red, true},
		{"different color same value", Number(Blue, 5), Number(Red, 5), Red, true},
		{"different color different value", Number(Blue, 3), Number(Red, 5), Red, false},
		{"wild always legal", Wild(), Number(Red, 5), Red, true},
		{"wild draw four always legal", WildDrawFour(), Skip(Green), Green, true},
		{"matching action kind across colors", Skip(Blue), Skip(Red), Red, true},
		{"action on number needs color", DrawTwo(Blue), Number(Red, 2), Red, false},
		{"declared color honored on wild top", Number(Green, 1), Wild(), Green, true},
		{"declared color rejected on wild top", Number(Blue, 1), Wild(), Green, false},
		{"reverse on reverse", Reverse(Yellow), Reverse(Blue), Blue, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPlayOn(tt.candidate, tt.top, tt.active))
		})
	}
}

func TestMakeRejectsInvalidShapes(t *testing.T) {
	_, err := Make(KindNumber, ColorNone, 5)
	assert.Error(t, err, "number card needs a color")

	_, err = Make(KindNumber, Red, 12)
	assert.Error(t, err, "number value out of range")

	_, err = Make(KindWild, Red, 0)
	assert.Error(t, err, "wild cannot carry a color")

	_, err = Make(KindSkip, Blue, 3)
	assert.Error(t, err, "skip cannot carry a value")

	card, err := Make(KindNumber, Red, 0)
	require.NoError(t, err)
	assert.Equal(t, Number(Red, 0), card)
}

func TestColorKindRoundTrip(t *testing.T) {
	for _, color := range []Color{ColorNone, Red, Yellow, Green, Blue} {
		parsed, err := ParseColor(color.String())
		require.NoError(t, err)
		assert.Equal(t, color, parsed)
	}
	for _, kind := range []Kind{KindNumber, KindSkip, KindReverse, KindDrawTwo, KindWild, KindWildDrawFour} {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
	_, err := ParseColor("purple")
	assert.Error(t, err)
}
