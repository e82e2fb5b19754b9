// internal/persist/codec.go
package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cardtable/uno/internal/session"
	"github.com/cardtable/uno/internal/uno"
)

func cardToRecord(c uno.Card) CardRecord {
	rec := CardRecord{Kind: c.Kind().String(), Value: c.Value()}
	if c.Color() != uno.ColorNone {
		rec.Color = c.Color().String()
	}
	return rec
}

func cardFromRecord(rec CardRecord) (uno.Card, error) {
	kind, err := uno.ParseKind(rec.Kind)
	if err != nil {
		return uno.Card{}, err
	}
	color, err := uno.ParseColor(rec.Color)
	if err != nil {
		return uno.Card{}, err
	}
	return uno.Make(kind, color, rec.Value)
}

func cardsToRecords(cards []uno.Card) []CardRecord {
	out := make([]CardRecord, len(cards))
	for i, c := range cards {
		out[i] = cardToRecord(c)
	}
	return out
}

func cardsFromRecords(recs []CardRecord) ([]uno.Card, error) {
	out := make([]uno.Card, len(recs))
	for i, rec := range recs {
		c, err := cardFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func rulesToRecord(r session.Rules) RulesRecord {
	return RulesRecord{
		HandSize:       r.HandSize,
		MinPlayers:     r.MinPlayers,
		MaxPlayers:     r.MaxPlayers,
		StackDraw:      r.StackDraw,
		AllowChallenge: r.AllowChallenge,
		RequireUnoCall: r.RequireUnoCall,
		UnoPenalty:     r.UnoPenalty,
	}
}

func rulesFromRecord(rec RulesRecord) session.Rules {
	return session.Rules{
		HandSize:       rec.HandSize,
		MinPlayers:     rec.MinPlayers,
		MaxPlayers:     rec.MaxPlayers,
		StackDraw:      rec.StackDraw,
		AllowChallenge: rec.AllowChallenge,
		RequireUnoCall: rec.RequireUnoCall,
		UnoPenalty:     rec.UnoPenalty,
	}
}

// recordFromSnapshot maps a live snapshot to its persisted form.
func recordFromSnapshot(snap session.Snapshot) SessionRecord {
	rec := SessionRecord{
		SessionID:    snap.ID,
		Key:          snap.Key,
		HostID:       snap.HostID,
		State:        snap.State.String(),
		Players:      snap.Players,
		Hands:        make(map[string][]CardRecord, len(snap.Hands)),
		Discard:      cardsToRecords(snap.Discard),
		ActiveColor:  snap.ActiveColor.String(),
		Turn:         snap.Turn,
		Reversed:     snap.Reversed,
		Pending:      snap.Pending,
		UnoCalled:    snap.UnoCalled,
		Winner:       snap.Winner,
		LastActivity: snap.LastActivity,
		DrawCount:    snap.DrawSize,
		Rules:        rulesToRecord(snap.Rules),
	}
	if snap.Pending > 0 {
		rec.PendingKind = snap.PendingKind.String()
	}
	for pid, cards := range snap.Hands {
		rec.Hands[pid] = cardsToRecords(cards)
	}
	return rec
}

// snapshotFromRecord maps a persisted record back into a live snapshot,
// validating every card on the way in.
func snapshotFromRecord(rec SessionRecord) (session.Snapshot, error) {
	state, err := session.ParseState(rec.State)
	if err != nil {
		return session.Snapshot{}, err
	}
	activeColor, err := uno.ParseColor(rec.ActiveColor)
	if err != nil {
		return session.Snapshot{}, err
	}
	discard, err := cardsFromRecords(rec.Discard)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("discard pile: %w", err)
	}

	snap := session.Snapshot{
		ID:           rec.SessionID,
		Key:          rec.Key,
		HostID:       rec.HostID,
		State:        state,
		Players:      rec.Players,
		Hands:        make(map[string][]uno.Card, len(rec.Hands)),
		Discard:      discard,
		ActiveColor:  activeColor,
		Turn:         rec.Turn,
		Reversed:     rec.Reversed,
		Pending:      rec.Pending,
		UnoCalled:    rec.UnoCalled,
		Winner:       rec.Winner,
		LastActivity: rec.LastActivity,
		DrawSize:     rec.DrawCount,
		Rules:        rulesFromRecord(rec.Rules),
	}
	if rec.Pending > 0 {
		kind, err := uno.ParseKind(rec.PendingKind)
		if err != nil {
			return session.Snapshot{}, fmt.Errorf("pending kind: %w", err)
		}
		snap.PendingKind = kind
	}
	for pid, cards := range rec.Hands {
		hand, err := cardsFromRecords(cards)
		if err != nil {
			return session.Snapshot{}, fmt.Errorf("hand of %s: %w", pid, err)
		}
		snap.Hands[pid] = hand
	}
	return snap, nil
}

// EncodeDocument serializes every non-finished session into a versioned
// snapshot document.
func EncodeDocument(sessions []*session.Session) ([]byte, error) {
	doc := Document{
		Version:  SnapshotVersion,
		ID:       uuid.New(),
		SavedAt:  time.Now().UTC(),
		Sessions: make(map[string]json.RawMessage, len(sessions)),
	}
	for _, s := range sessions {
		snap := s.Snapshot()
		if snap.State == session.StateFinished {
			continue
		}
		raw, err := json.Marshal(recordFromSnapshot(snap))
		if err != nil {
			return nil, fmt.Errorf("encoding session %q: %w", snap.Key, err)
		}
		doc.Sessions[snap.Key] = raw
	}
	return json.Marshal(doc)
}

// DecodeDocument parses and version-checks a snapshot document. Individual
// session entries are left raw for per-entry decoding.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parsing snapshot document: %w", err)
	}
	if doc.Version != SnapshotVersion {
		return Document{}, fmt.Errorf("snapshot version %d not supported (want %d)", doc.Version, SnapshotVersion)
	}
	return doc, nil
}

// DecodeSession rebuilds one live session from its raw document entry.
func DecodeSession(raw json.RawMessage) (*session.Session, error) {
	var rec SessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("parsing session record: %w", err)
	}
	snap, err := snapshotFromRecord(rec)
	if err != nil {
		return nil, err
	}
	return session.FromSnapshot(snap)
}
