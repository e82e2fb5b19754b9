// internal/persist/schema.go
//
// Persisted snapshot schema. One explicit record type per persisted entity,
// with a two-way mapping to the live types in codec.go, so a schema change is
// a compile-time-visible edit rather than a silent runtime mismatch.
package persist

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SnapshotVersion is the current document version. Documents carrying any
// other version are rejected on load rather than guessed at.
const SnapshotVersion = 1

// Document is the top-level snapshot: every live session at the moment the
// snapshot was cut, keyed by session key. Sessions are kept as raw JSON so
// one corrupt entry can be skipped without poisoning its neighbors.
type Document struct {
	Version  int                        `json:"version"`
	ID       uuid.UUID                  `json:"id"`
	SavedAt  time.Time                  `json:"saved_at"`
	Sessions map[string]json.RawMessage `json:"sessions"`
}

// CardRecord is the persisted form of one card.
type CardRecord struct {
	Kind  string `json:"kind"`
	Color string `json:"color,omitempty"`
	Value int    `json:"value"`
}

// RulesRecord is the persisted form of a session's rule configuration.
type RulesRecord struct {
	HandSize       int  `json:"hand_size"`
	MinPlayers     int  `json:"min_players"`
	MaxPlayers     int  `json:"max_players"`
	StackDraw      bool `json:"stack_draw,omitempty"`
	AllowChallenge bool `json:"allow_challenge,omitempty"`
	RequireUnoCall bool `json:"require_uno_call,omitempty"`
	UnoPenalty     int  `json:"uno_penalty,omitempty"`
}

// SessionRecord is the persisted form of one session. The draw pile is
// stored only as a count: its order is random, so restore synthesizes a
// fresh pile from the full composition minus hands and discard.
type SessionRecord struct {
	SessionID    uuid.UUID               `json:"session_id"`
	Key          string                  `json:"key"`
	HostID       string                  `json:"host_id"`
	State        string                  `json:"state"`
	Players      []string                `json:"players"`
	Hands        map[string][]CardRecord `json:"hands"`
	Discard      []CardRecord            `json:"discard,omitempty"`
	ActiveColor  string                  `json:"active_color,omitempty"`
	Turn         int                     `json:"turn"`
	Reversed     bool                    `json:"reversed"`
	Pending      int                     `json:"pending"`
	PendingKind  string                  `json:"pending_kind,omitempty"`
	UnoCalled    []string                `json:"uno_called,omitempty"`
	Winner       string                  `json:"winner,omitempty"`
	LastActivity time.Time               `json:"last_activity"`
	DrawCount    int                     `json:"draw_count"`
	Rules        RulesRecord             `json:"rules"`
}
