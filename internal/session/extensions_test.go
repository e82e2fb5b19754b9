// internal/session/extensions_test.go
//
// Optional rule extensions: draw stacking, wild-draw-four challenges, and
// explicit UNO calls. All default off; the plain ruleset never hits these
// paths.
package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/uno/internal/uno"
)

func TestStackDrawTwoPassesPenaltyAlong(t *testing.T) {
	rules := DefaultRules()
	rules.StackDraw = true
	s := rigged(t, uno.Number(uno.Red, 5), filler(10), map[string][]uno.Card{
		"a": {uno.DrawTwo(uno.Red), uno.Number(uno.Blue, 3)},
		"b": {uno.DrawTwo(uno.Green), uno.Number(uno.Green, 1)},
		"c": {uno.Number(uno.Green, 2)},
	}, []string{"a", "b", "c"}, rules)

	_, err := s.Play("a", uno.DrawTwo(uno.Red), uno.ColorNone)
	require.NoError(t, err)

	res, err := s.Play("b", uno.DrawTwo(uno.Green), uno.ColorNone)
	require.NoError(t, err, "a matching draw card answers the penalty")
	assert.Equal(t, 4, res.PendingPenalty)
	assert.Equal(t, "c", res.Next)

	// c has no draw-two, so the grown debt must be drawn.
	dres, err := s.Draw("c", 0)
	require.NoError(t, err)
	assert.Len(t, dres.Cards, 4)
	assert.Equal(t, 0, s.Status().PendingPenalty)
}

func TestStackingRequiresMatchingKind(t *testing.T) {
	rules := DefaultRules()
	rules.StackDraw = true
	s := rigged(t, uno.Number(uno.Red, 5), filler(10), map[string][]uno.Card{
		"a": {uno.DrawTwo(uno.Red), uno.Number(uno.Blue, 3)},
		"b": {uno.WildDrawFour(), uno.Number(uno.Green, 1)},
	}, []string{"a", "b"}, rules)

	_, err := s.Play("a", uno.DrawTwo(uno.Red), uno.ColorNone)
	require.NoError(t, err)

	_, err = s.Play("b", uno.WildDrawFour(), uno.Blue)
	assert.ErrorIs(t, err, ErrIllegalPlay, "a draw-four does not answer a draw-two")
}

func TestStackingDisabledByDefault(t *testing.T) {
	s := rigged(t, uno.Number(uno.Red, 5), filler(10), map[string][]uno.Card{
		"a": {uno.DrawTwo(uno.Red), uno.Number(uno.Blue, 3)},
		"b": {uno.DrawTwo(uno.Green), uno.Number(uno.Green, 1)},
	}, []string{"a", "b"}, DefaultRules())

	_, err := s.Play("a", uno.DrawTwo(uno.Red), uno.ColorNone)
	require.NoError(t, err)

	_, err = s.Play("b", uno.DrawTwo(uno.Green), uno.ColorNone)
	assert.ErrorIs(t, err, ErrIllegalPlay)
}

func TestChallengeAgainstIllegitimateFour(t *testing.T) {
	rules := DefaultRules()
	rules.AllowChallenge = true
	// a plays a draw-four while still holding a red card: illegitimate.
	s := rigged(t, uno.Number(uno.Red, 5), filler(10), map[string][]uno.Card{
		"a": {uno.WildDrawFour(), uno.Number(uno.Red, 8)},
		"b": {uno.Number(uno.Blue, 1)},
	}, []string{"a", "b"}, rules)

	_, err := s.Play("a", uno.WildDrawFour(), uno.Blue)
	require.NoError(t, err)

	handA := s.Status().HandSizes["a"]
	res, err := s.Challenge("b")
	require.NoError(t, err)
	assert.True(t, res.Successful)
	assert.Equal(t, 4, res.OffenderDrew)
	assert.Equal(t, handA+4, s.Status().HandSizes["a"])
	assert.Equal(t, 0, s.Status().PendingPenalty)

	// b is free to play on the declared color now.
	_, err = s.Play("b", uno.Number(uno.Blue, 1), uno.ColorNone)
	assert.NoError(t, err)
}

func TestChallengeAgainstLegitimateFour(t *testing.T) {
	rules := DefaultRules()
	rules.AllowChallenge = true
	// a holds nothing matching red, so the draw-four was clean.
	s := rigged(t, uno.Number(uno.Red, 5), filler(10), map[string][]uno.Card{
		"a": {uno.WildDrawFour(), uno.Number(uno.Blue, 8)},
		"b": {uno.Number(uno.Green, 1)},
	}, []string{"a", "b"}, rules)

	_, err := s.Play("a", uno.WildDrawFour(), uno.Blue)
	require.NoError(t, err)

	res, err := s.Challenge("b")
	require.NoError(t, err)
	assert.False(t, res.Successful)
	assert.Equal(t, 6, res.PendingPenalty, "a failed challenge costs two extra")

	dres, err := s.Draw("b", 0)
	require.NoError(t, err)
	assert.Len(t, dres.Cards, 6)

	// The resolved four cannot be challenged again.
	_, err = s.Challenge("b")
	assert.Error(t, err)
}

func TestChallengeDisabledByDefault(t *testing.T) {
	s := rigged(t, uno.Number(uno.Red, 5), filler(10), map[string][]uno.Card{
		"a": {uno.WildDrawFour(), uno.Number(uno.Red, 8)},
		"b": {uno.Number(uno.Green, 1)},
	}, []string{"a", "b"}, DefaultRules())

	_, err := s.Play("a", uno.WildDrawFour(), uno.Blue)
	require.NoError(t, err)

	_, err = s.Challenge("b")
	assert.ErrorIs(t, err, ErrIllegalPlay)
}

func TestUnoCallAvoidsPenalty(t *testing.T) {
	rules := DefaultRules()
	rules.RequireUnoCall = true
	s := rigged(t, uno.Number(uno.Red, 5), filler(10), map[string][]uno.Card{
		"a": {uno.Number(uno.Red, 7), uno.Number(uno.Blue, 3)},
		"b": {uno.Number(uno.Green, 1), uno.Number(uno.Green, 2)},
	}, []string{"a", "b"}, rules)

	require.NoError(t, s.CallUno("a"))
	res, err := s.Play("a", uno.Number(uno.Red, 7), uno.ColorNone)
	require.NoError(t, err)
	assert.Zero(t, res.UnoPenalty)
	assert.Equal(t, 1, s.Status().HandSizes["a"])
}

func TestMissedUnoCallDrawsPenalty(t *testing.T) {
	rules := DefaultRules()
	rules.RequireUnoCall = true
	s := rigged(t, uno.Number(uno.Red, 5), filler(10), map[string][]uno.Card{
		"a": {uno.Number(uno.Red, 7), uno.Number(uno.Blue, 3)},
		"b": {uno.Number(uno.Green, 1), uno.Number(uno.Green, 2)},
	}, []string{"a", "b"}, rules)

	res, err := s.Play("a", uno.Number(uno.Red, 7), uno.ColorNone)
	require.NoError(t, err)
	assert.Equal(t, 2, res.UnoPenalty)
	assert.Equal(t, 3, s.Status().HandSizes["a"], "one played, two drawn back")
}

func TestUnoCallValidation(t *testing.T) {
	rules := DefaultRules()
	rules.RequireUnoCall = true
	s := rigged(t, uno.Number(uno.Red, 5), filler(10), map[string][]uno.Card{
		"a": {uno.Number(uno.Red, 7), uno.Number(uno.Blue, 3), uno.Number(uno.Blue, 4)},
		"b": {uno.Number(uno.Green, 1), uno.Number(uno.Green, 2)},
	}, []string{"a", "b"}, rules)

	assert.ErrorIs(t, s.CallUno("a"), ErrIllegalPlay, "too many cards to call uno")
	assert.ErrorIs(t, s.CallUno("ghost"), ErrNotAMember)

	plain := rigged(t, uno.Number(uno.Red, 5), filler(10), map[string][]uno.Card{
		"a": {uno.Number(uno.Red, 7), uno.Number(uno.Blue, 3)},
		"b": {uno.Number(uno.Green, 1)},
	}, []string{"a", "b"}, DefaultRules())
	assert.ErrorIs(t, plain.CallUno("a"), ErrIllegalPlay, "extension disabled")
}

func TestDrawVoidsEarlierUnoCall(t *testing.T) {
	rules := DefaultRules()
	rules.RequireUnoCall = true
	s := rigged(t, uno.Number(uno.Red, 5), filler(10), map[string][]uno.Card{
		"a": {uno.Number(uno.Red, 7), uno.Number(uno.Blue, 3)},
		"b": {uno.Number(uno.Green, 1), uno.Number(uno.Green, 2)},
	}, []string{"a", "b"}, rules)

	require.NoError(t, s.CallUno("a"))
	_, err := s.Draw("a", 0)
	require.NoError(t, err)

	// Turn comes back to a, who now must call again before going to one.
	_, err = s.Draw("b", 0)
	require.NoError(t, err)
	res, err := s.Play("a", uno.Number(uno.Red, 7), uno.ColorNone)
	require.NoError(t, err)
	assert.Zero(t, res.UnoPenalty, "hand no longer at two cards, rule not in play")
}
