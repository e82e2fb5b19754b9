package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/uno/internal/uno"
)

func handMultiset(cards []uno.Card) map[uno.Card]int {
	m := make(map[uno.Card]int)
	for _, c := range cards {
		m[c]++
	}
	return m
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := setupStartedSession(t, 3, DefaultRules())

	// Advance the game a little so the snapshot is not trivial.
	for i := 0; i < 5 && s.State() == StatePlaying; i++ {
		current := s.Status().Current
		playable, err := s.Playable(current)
		require.NoError(t, err)
		if s.Status().PendingPenalty > 0 || len(playable) == 0 {
			_, err = s.Draw(current, 0)
		} else {
			_, err = s.Play(current, playable[0], colorFor(playable[0]))
		}
		require.NoError(t, err)
	}

	snap := s.Snapshot()
	restored, err := FromSnapshot(snap)
	require.NoError(t, err)

	orig := s.Status()
	got := restored.Status()

	assert.Equal(t, orig.SessionID, got.SessionID)
	assert.Equal(t, orig.Key, got.Key)
	assert.Equal(t, orig.State, got.State)
	assert.Equal(t, orig.Players, got.Players)
	assert.Equal(t, orig.Current, got.Current)
	assert.Equal(t, orig.Reversed, got.Reversed)
	assert.Equal(t, orig.ActiveColor, got.ActiveColor)
	assert.Equal(t, orig.PendingPenalty, got.PendingPenalty)
	assert.Equal(t, orig.HandSizes, got.HandSizes)
	assert.Equal(t, orig.DiscardPileSize, got.DiscardPileSize)
	require.NotNil(t, got.Top)
	assert.Equal(t, *orig.Top, *got.Top)

	// The synthesized draw pile has the same size and, together with hands
	// and discard, reconstitutes the full composition.
	assert.Equal(t, orig.DrawPileSize, got.DrawPileSize)
	assert.Equal(t, 108, cardsInPlay(restored))

	// Hands carry the exact same multisets.
	for pid, cards := range snap.Hands {
		restoredSnap := restored.Snapshot()
		assert.Equal(t, handMultiset(cards), handMultiset(restoredSnap.Hands[pid]))
	}

	// The restored session keeps playing.
	current := got.Current
	playable, err := restored.Playable(current)
	require.NoError(t, err)
	if got.PendingPenalty > 0 || len(playable) == 0 {
		_, err = restored.Draw(current, 0)
	} else {
		_, err = restored.Play(current, playable[0], colorFor(playable[0]))
	}
	assert.NoError(t, err)
}

func TestSnapshotRoundTripLobby(t *testing.T) {
	s := NewSession("table-2", "host", DefaultRules())
	require.NoError(t, s.Join("p1"))

	restored, err := FromSnapshot(s.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, StateLobby, restored.State())
	assert.Equal(t, []string{"host", "p1"}, restored.Status().Players)

	// The lobby is still usable.
	require.NoError(t, restored.Join("p2"))
	require.NoError(t, restored.Start())
}

func TestFromSnapshotRejectsCorruptState(t *testing.T) {
	s := setupStartedSession(t, 2, DefaultRules())
	base := s.Snapshot()

	missingKey := base
	missingKey.Key = ""
	_, err := FromSnapshot(missingKey)
	assert.Error(t, err)

	badTurn := base
	badTurn.Turn = 99
	_, err = FromSnapshot(badTurn)
	assert.Error(t, err)

	// Duplicate a card beyond what the composition allows.
	overstuffed := base
	overstuffed.Hands = map[string][]uno.Card{}
	for pid, cards := range base.Hands {
		overstuffed.Hands[pid] = append([]uno.Card(nil), cards...)
	}
	for i := 0; i < 5; i++ {
		overstuffed.Hands["p0"] = append(overstuffed.Hands["p0"], uno.Wild())
	}
	_, err = FromSnapshot(overstuffed)
	assert.Error(t, err)

	wrongCount := base
	wrongCount.DrawSize = base.DrawSize + 1
	_, err = FromSnapshot(wrongCount)
	assert.Error(t, err)

	ghostHand := base
	ghostHand.Hands = map[string][]uno.Card{"stranger": {uno.Wild()}}
	_, err = FromSnapshot(ghostHand)
	assert.Error(t, err)
}
