package session

import "errors"

// Validation and lifecycle failures are returned, never panicked, so the
// hosting layer can render a message without tearing anything down. No state
// mutation survives a failed operation.
var (
	ErrNotYourTurn             = errors.New("not your turn")
	ErrCardNotInHand           = errors.New("card not in hand")
	ErrIllegalPlay             = errors.New("illegal play")
	ErrMissingColorDeclaration = errors.New("wild play requires a declared color")
	ErrWrongState              = errors.New("operation invalid for current state")

	ErrAlreadyJoined    = errors.New("player already joined")
	ErrSessionFull      = errors.New("session is full")
	ErrNotAMember       = errors.New("player is not in the session")
	ErrNotEnoughPlayers = errors.New("not enough players")

	ErrSessionExists   = errors.New("an active session already exists for this key")
	ErrSessionNotFound = errors.New("session not found")
)
