// internal/session/snapshot.go
package session

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cardtable/uno/internal/uno"
)

// Snapshot is a consistent copy of everything needed to reconstruct a
// session's behavior. The draw pile is captured only as a count: its order is
// random and irrelevant, so persisting it would leak future draws for
// nothing. Restore rebuilds it from the full composition minus every card
// accounted for elsewhere.
type Snapshot struct {
	ID           uuid.UUID
	Key          string
	HostID       string
	State        State
	Players      []string
	Hands        map[string][]uno.Card
	Discard      []uno.Card
	ActiveColor  uno.Color
	Turn         int
	Reversed     bool
	Pending      int
	PendingKind  uno.Kind
	UnoCalled    []string
	Winner       string
	LastActivity time.Time
	DrawSize     int
	Rules        Rules
}

// Snapshot copies the session state under its lock, so it only ever observes
// the session between completed operations.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:           s.id,
		Key:          s.key,
		HostID:       s.hostID,
		State:        s.state,
		Players:      append([]string(nil), s.players...),
		Hands:        make(map[string][]uno.Card, len(s.hands)),
		Turn:         s.turn,
		Reversed:     s.reversed,
		Pending:      s.pending,
		PendingKind:  s.pendingKind,
		Winner:       s.winner,
		LastActivity: s.lastActivity,
		Rules:        s.rules,
	}
	for pid, hand := range s.hands {
		snap.Hands[pid] = hand.Cards()
	}
	for pid := range s.unoCalled {
		snap.UnoCalled = append(snap.UnoCalled, pid)
	}
	sort.Strings(snap.UnoCalled)
	if s.deck != nil {
		snap.Discard = s.deck.Discards()
		snap.ActiveColor = s.deck.ActiveColor()
		snap.DrawSize = s.deck.DrawSize()
	}
	return snap
}

// FromSnapshot rebuilds a live session. The draw pile is synthesized from
// the 108-card composition with every card in hands and the discard pile
// subtracted, then shuffled; a snapshot whose cards cannot be carved out of
// one full set, or whose indices are out of range, is rejected as corrupt.
func FromSnapshot(snap Snapshot) (*Session, error) {
	if snap.Key == "" {
		return nil, fmt.Errorf("snapshot has no session key")
	}
	if len(snap.Players) == 0 {
		return nil, fmt.Errorf("snapshot for %q has no players", snap.Key)
	}
	if snap.Turn < 0 || snap.Turn >= len(snap.Players) {
		return nil, fmt.Errorf("snapshot for %q: turn index %d out of range", snap.Key, snap.Turn)
	}
	if snap.Pending < 0 {
		return nil, fmt.Errorf("snapshot for %q: negative pending penalty", snap.Key)
	}

	s := &Session{
		id:           snap.ID,
		key:          snap.Key,
		hostID:       snap.HostID,
		rules:        snap.Rules,
		state:        snap.State,
		players:      append([]string(nil), snap.Players...),
		hands:        make(map[string]*uno.Hand, len(snap.Players)),
		turn:         snap.Turn,
		reversed:     snap.Reversed,
		pending:      snap.Pending,
		pendingKind:  snap.PendingKind,
		unoCalled:    make(map[string]bool),
		winner:       snap.Winner,
		lastActivity: snap.LastActivity,
	}
	if s.id == uuid.Nil {
		s.id = uuid.New()
	}
	if s.lastActivity.IsZero() {
		s.lastActivity = time.Now()
	}
	for _, pid := range snap.UnoCalled {
		s.unoCalled[pid] = true
	}

	seated := make(map[string]bool, len(snap.Players))
	for _, pid := range snap.Players {
		seated[pid] = true
		s.hands[pid] = uno.NewHand()
	}
	for pid, cards := range snap.Hands {
		if !seated[pid] {
			return nil, fmt.Errorf("snapshot for %q: hand for unseated player %s", snap.Key, pid)
		}
		for _, c := range cards {
			s.hands[pid].Add(c)
		}
	}

	if snap.State == StateLobby {
		return s, nil
	}

	// Carve the known cards out of a full set; whatever is left becomes the
	// draw pile.
	remaining := make(map[uno.Card]int, 54)
	for _, c := range uno.FullSet() {
		remaining[c]++
	}
	take := func(c uno.Card) error {
		if remaining[c] == 0 {
			return fmt.Errorf("snapshot for %q: card %v appears more often than the deck contains", snap.Key, c)
		}
		remaining[c]--
		return nil
	}
	for _, cards := range snap.Hands {
		for _, c := range cards {
			if err := take(c); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range snap.Discard {
		if err := take(c); err != nil {
			return nil, err
		}
	}

	var draw []uno.Card
	for c, n := range remaining {
		for i := 0; i < n; i++ {
			draw = append(draw, c)
		}
	}
	if snap.DrawSize != len(draw) {
		return nil, fmt.Errorf("snapshot for %q: draw pile count %d does not match %d unaccounted cards",
			snap.Key, snap.DrawSize, len(draw))
	}

	s.deck = uno.RestoreDeck(draw, snap.Discard, snap.ActiveColor)
	return s, nil
}
