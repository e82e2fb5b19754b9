// internal/session/rules.go
package session

// Rules captures the per-session configuration: table limits plus the
// optional rule extensions. Extensions default to off; the plain ruleset is
// the one every session enforces.
type Rules struct {
	HandSize   int `json:"handSize"`   // cards dealt to each player at start
	MinPlayers int `json:"minPlayers"` // below this a running game finishes
	MaxPlayers int `json:"maxPlayers"` // join cap

	// StackDraw lets a player owing a draw penalty answer with a matching
	// draw card instead of drawing, passing the grown debt along.
	StackDraw bool `json:"stackDraw"`

	// AllowChallenge enables contesting a wild-draw-four that may have been
	// played while the offender still held a matching color.
	AllowChallenge bool `json:"allowChallenge"`

	// RequireUnoCall penalizes reaching a single card without having called
	// UNO first.
	RequireUnoCall bool `json:"requireUnoCall"`
	UnoPenalty     int  `json:"unoPenalty"` // cards drawn for a missed call
}

// DefaultRules returns the standard table: 7-card hands, 2-10 players, no
// extensions.
func DefaultRules() Rules {
	return Rules{
		HandSize:   7,
		MinPlayers: 2,
		MaxPlayers: 10,
		UnoPenalty: 2,
	}
}
