// internal/session/session.go
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cardtable/uno/internal/uno"
)

// State is the session lifecycle. Finished is terminal.
type State uint8

const (
	StateLobby State = iota
	StatePlaying
	StateFinished
)

// MarshalText lets State serialize as its name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s State) String() string {
	switch s {
	case StateLobby:
		return "lobby"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ParseState converts a state name back to a State.
func ParseState(s string) (State, error) {
	switch s {
	case "lobby":
		return StateLobby, nil
	case "playing":
		return StatePlaying, nil
	case "finished":
		return StateFinished, nil
	default:
		return StateLobby, fmt.Errorf("unknown session state %q", s)
	}
}

// challengeState remembers whether the most recent wild-draw-four was legal
// at the moment it was played. It lives only while that penalty is pending.
type challengeState struct {
	offender string
	legal    bool
}

// Session holds the entire state of one game. Every operation locks, then
// validates state and turn ownership before touching anything; a failed
// operation leaves the session exactly as it found it. One session is driven
// by one caller at a time; independent sessions never share a deck or hand.
type Session struct {
	id     uuid.UUID
	key    string
	hostID string
	rules  Rules

	mu           sync.Mutex
	state        State
	players      []string // turn order
	hands        map[string]*uno.Hand
	deck         *uno.Deck
	turn         int
	reversed     bool
	pending      int
	pendingKind  uno.Kind
	challenge    *challengeState
	unoCalled    map[string]bool
	winner       string
	lastActivity time.Time
}

// NewSession creates a session in the Lobby state with the host already
// seated.
func NewSession(key, hostID string, rules Rules) *Session {
	s := &Session{
		id:           uuid.New(),
		key:          key,
		hostID:       hostID,
		rules:        rules,
		state:        StateLobby,
		players:      []string{hostID},
		hands:        map[string]*uno.Hand{hostID: uno.NewHand()},
		unoCalled:    make(map[string]bool),
		lastActivity: time.Now(),
	}
	return s
}

// ID returns the session's instance identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Key returns the external table/channel key.
func (s *Session) Key() string { return s.key }

// HostID returns the player who created the session.
func (s *Session) HostID() string { return s.hostID }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActivity returns the time of the last completed operation.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Expired reports whether the session has been idle longer than timeout.
func (s *Session) Expired(timeout time.Duration) bool {
	return time.Since(s.LastActivity()) > timeout
}

func (s *Session) touch() {
	s.lastActivity = time.Now()
}

// Join seats a new player. Lobby only.
func (s *Session) Join(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLobby {
		return fmt.Errorf("join: %w", ErrWrongState)
	}
	if s.indexOf(playerID) >= 0 {
		return ErrAlreadyJoined
	}
	if len(s.players) >= s.rules.MaxPlayers {
		return ErrSessionFull
	}
	s.players = append(s.players, playerID)
	s.hands[playerID] = uno.NewHand()
	s.touch()
	return nil
}

// Leave removes a player in any state. Mid-game the departing hand is buried
// under the discard pile so no card ever leaves circulation, and the turn
// pointer keeps meaning "the player due to act next". Dropping below the
// player minimum finishes the session.
func (s *Session) Leave(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(playerID)
	if idx < 0 {
		return ErrNotAMember
	}

	if s.state == StatePlaying {
		if hand := s.hands[playerID]; hand != nil && hand.Size() > 0 {
			s.deck.Bury(hand.Cards())
		}
		if idx == s.turn {
			// A pending penalty is owed personally; it leaves with its owner.
			s.pending = 0
			s.challenge = nil
		}
		if s.challenge != nil && s.challenge.offender == playerID {
			s.challenge = nil
		}
	}

	delete(s.hands, playerID)
	delete(s.unoCalled, playerID)
	s.players = append(s.players[:idx], s.players[idx+1:]...)

	switch {
	case idx < s.turn:
		s.turn--
	case idx == s.turn && len(s.players) > 0:
		if s.reversed {
			s.turn = idx - 1
			if s.turn < 0 {
				s.turn = len(s.players) - 1
			}
		} else if s.turn >= len(s.players) {
			s.turn = 0
		}
	}

	if s.state == StatePlaying && len(s.players) < s.rules.MinPlayers {
		s.state = StateFinished
	}
	if s.state == StateLobby && len(s.players) == 0 {
		s.state = StateFinished
	}
	s.touch()
	return nil
}

// Start deals every seated player their opening hand, flips the first
// discard, and moves to Playing. The whole deal is prepared off to the side
// first so a failure leaves the lobby untouched.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLobby {
		return fmt.Errorf("start: %w", ErrWrongState)
	}
	if len(s.players) < s.rules.MinPlayers {
		return ErrNotEnoughPlayers
	}

	deck := uno.NewDeck()
	hands := make(map[string]*uno.Hand, len(s.players))
	for _, pid := range s.players {
		hand := uno.NewHand()
		for i := 0; i < s.rules.HandSize; i++ {
			card, err := deck.DrawOne()
			if err != nil {
				return fmt.Errorf("dealing opening hands: %w", err)
			}
			hand.Add(card)
		}
		hands[pid] = hand
	}
	if _, err := deck.FlipOpening(); err != nil {
		return fmt.Errorf("flipping opening card: %w", err)
	}

	s.deck = deck
	s.hands = hands
	s.state = StatePlaying
	s.turn = 0
	s.reversed = false
	s.pending = 0
	s.touch()
	return nil
}

// PlayResult summarizes a successful play for the hosting layer.
type PlayResult struct {
	Card           uno.Card
	Effect         string // kind of the played card
	Winner         string // set when the play emptied the hand
	Skipped        string // player bypassed by a skip
	Next           string // current turn holder afterwards, empty once finished
	PendingPenalty int    // penalty now owed by Next
	UnoPenalty     int    // cards auto-drawn for a missed UNO call
}

// Play validates and applies one card play for the current turn holder.
func (s *Session) Play(playerID string, card uno.Card, declared uno.Color) (PlayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return PlayResult{}, fmt.Errorf("play: %w", ErrWrongState)
	}
	if s.players[s.turn] != playerID {
		return PlayResult{}, ErrNotYourTurn
	}
	if card.IsWild() && declared == uno.ColorNone {
		return PlayResult{}, ErrMissingColorDeclaration
	}

	hand := s.hands[playerID]
	if !hand.Contains(card) {
		return PlayResult{}, ErrCardNotInHand
	}

	top, _ := s.deck.Top()
	if s.pending > 0 {
		if !(s.rules.StackDraw && card.Kind() == s.pendingKind) {
			return PlayResult{}, fmt.Errorf("a %d-card penalty must be drawn first: %w", s.pending, ErrIllegalPlay)
		}
	} else if !uno.CanPlayOn(card, top, s.deck.ActiveColor()) {
		return PlayResult{}, fmt.Errorf("%v cannot be played on %v (%v): %w", card, top, s.deck.ActiveColor(), ErrIllegalPlay)
	}

	// Record wild-draw-four legality before the hand changes, for a later
	// challenge. The play is illegitimate if the player still held a card
	// matching the color in force.
	var fourLegal bool
	if card.Kind() == uno.KindWildDrawFour {
		fourLegal = !s.holdsColor(hand, card, s.deck.ActiveColor())
	}

	handSizeBefore := hand.Size()
	hand.Remove(card)
	s.deck.Play(card, declared)

	res := PlayResult{Card: card, Effect: card.Kind().String()}

	if hand.Empty() {
		s.state = StateFinished
		s.winner = playerID
		res.Winner = playerID
		s.touch()
		return res, nil
	}

	switch card.Kind() {
	case uno.KindSkip:
		res.Skipped = s.playerAt(1)
		s.advance(2)
	case uno.KindReverse:
		// With two players this acts as a skip: flip, step once, and the
		// turn lands back on the player who reversed.
		s.reversed = !s.reversed
		s.advance(1)
	case uno.KindDrawTwo:
		s.pending += 2
		s.pendingKind = uno.KindDrawTwo
		s.challenge = nil
		s.advance(1)
	case uno.KindWildDrawFour:
		s.pending += 4
		s.pendingKind = uno.KindWildDrawFour
		s.challenge = &challengeState{offender: playerID, legal: fourLegal}
		s.advance(1)
	default: // number, wild
		s.advance(1)
	}

	if s.rules.RequireUnoCall && handSizeBefore == 2 {
		if s.unoCalled[playerID] {
			delete(s.unoCalled, playerID)
		} else {
			res.UnoPenalty = s.penaltyDraw(hand, s.rules.UnoPenalty)
		}
	}

	res.Next = s.players[s.turn]
	res.PendingPenalty = s.pending
	s.touch()
	return res, nil
}

// DrawResult reports the cards a draw handed out.
type DrawResult struct {
	Cards            []uno.Card
	Next             string
	SatisfiedPenalty int // the penalty that this draw paid off, if any
}

// Draw gives the current turn holder cards from the draw pile: the owed
// penalty when one is outstanding, otherwise one card (or count, when the
// caller asks for more). On deck exhaustion the cards already drawn stay in
// the hand, the turn does not advance, and the caller decides whether to
// abort the round.
func (s *Session) Draw(playerID string, count int) (DrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return DrawResult{}, fmt.Errorf("draw: %w", ErrWrongState)
	}
	if s.players[s.turn] != playerID {
		return DrawResult{}, ErrNotYourTurn
	}

	n := count
	if n <= 0 {
		n = 1
	}
	satisfied := 0
	if s.pending > 0 {
		if count > 0 && count < s.pending {
			return DrawResult{}, fmt.Errorf("must draw %d to satisfy the penalty: %w", s.pending, ErrIllegalPlay)
		}
		n = s.pending
		satisfied = s.pending
	}

	hand := s.hands[playerID]
	var drawn []uno.Card
	for i := 0; i < n; i++ {
		card, err := s.deck.DrawOne()
		if err != nil {
			if s.pending > 0 {
				s.pending -= len(drawn)
				if s.pending < 0 {
					s.pending = 0
				}
			}
			s.touch()
			return DrawResult{Cards: drawn}, fmt.Errorf("drew %d of %d: %w", len(drawn), n, err)
		}
		hand.Add(card)
		drawn = append(drawn, card)
	}

	s.pending = 0
	s.challenge = nil
	delete(s.unoCalled, playerID) // holding more cards voids an earlier call
	s.advance(1)
	s.touch()
	return DrawResult{Cards: drawn, Next: s.players[s.turn], SatisfiedPenalty: satisfied}, nil
}

// CallUno registers an UNO call for a player about to go down to one card.
// Only meaningful when the RequireUnoCall extension is on.
func (s *Session) CallUno(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.rules.RequireUnoCall {
		return fmt.Errorf("uno calls are not enabled: %w", ErrIllegalPlay)
	}
	if s.state != StatePlaying {
		return fmt.Errorf("uno call: %w", ErrWrongState)
	}
	idx := s.indexOf(playerID)
	if idx < 0 {
		return ErrNotAMember
	}
	if s.hands[playerID].Size() > 2 {
		return fmt.Errorf("uno can only be called holding two cards or fewer: %w", ErrIllegalPlay)
	}
	s.unoCalled[playerID] = true
	s.touch()
	return nil
}

// ChallengeResult reports the outcome of a wild-draw-four challenge.
type ChallengeResult struct {
	Successful     bool
	OffenderDrew   int // cards the offender drew after a successful challenge
	PendingPenalty int // what the challenger still owes afterwards
}

// Challenge contests the wild-draw-four whose penalty the caller currently
// owes. A successful challenge shifts the four cards onto the offender and
// frees the challenger to play; a failed one raises the debt by two. Only
// available with the AllowChallenge extension.
func (s *Session) Challenge(playerID string) (ChallengeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.rules.AllowChallenge {
		return ChallengeResult{}, fmt.Errorf("challenges are not enabled: %w", ErrIllegalPlay)
	}
	if s.state != StatePlaying {
		return ChallengeResult{}, fmt.Errorf("challenge: %w", ErrWrongState)
	}
	if s.players[s.turn] != playerID {
		return ChallengeResult{}, ErrNotYourTurn
	}
	if s.pending == 0 || s.pendingKind != uno.KindWildDrawFour || s.challenge == nil {
		return ChallengeResult{}, fmt.Errorf("no wild-draw-four to challenge: %w", ErrIllegalPlay)
	}

	ch := s.challenge
	s.challenge = nil

	if ch.legal {
		s.pending += 2
		s.touch()
		return ChallengeResult{Successful: false, PendingPenalty: s.pending}, nil
	}

	offender := s.hands[ch.offender]
	drew := 0
	if offender != nil {
		drew = s.penaltyDraw(offender, s.pending)
	}
	s.pending = 0
	s.touch()
	return ChallengeResult{Successful: true, OffenderDrew: drew}, nil
}

// Playable returns the cards a player could legally put down right now.
// Read-only; usable by the hosting layer for prompts and by bot players.
func (s *Session) Playable(playerID string) ([]uno.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return nil, fmt.Errorf("playable: %w", ErrWrongState)
	}
	hand, ok := s.hands[playerID]
	if !ok {
		return nil, ErrNotAMember
	}
	top, _ := s.deck.Top()
	return hand.Playable(top, s.deck.ActiveColor()), nil
}

// StatusView is the read-only projection handed to the presentation layer.
type StatusView struct {
	SessionID       uuid.UUID
	Key             string
	HostID          string
	State           State
	Players         []string
	Current         string
	Reversed        bool
	Top             *uno.Card
	ActiveColor     uno.Color
	PendingPenalty  int
	HandSizes       map[string]int
	DrawPileSize    int
	DiscardPileSize int
	Winner          string
	LastActivity    time.Time
}

// Status projects the current state without mutating anything.
func (s *Session) Status() StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := StatusView{
		SessionID:    s.id,
		Key:          s.key,
		HostID:       s.hostID,
		State:        s.state,
		Players:      append([]string(nil), s.players...),
		Reversed:     s.reversed,
		HandSizes:    make(map[string]int, len(s.hands)),
		Winner:       s.winner,
		LastActivity: s.lastActivity,
	}
	for pid, hand := range s.hands {
		view.HandSizes[pid] = hand.Size()
	}
	if s.deck != nil {
		if top, ok := s.deck.Top(); ok {
			view.Top = &top
		}
		view.ActiveColor = s.deck.ActiveColor()
		view.DrawPileSize = s.deck.DrawSize()
		view.DiscardPileSize = s.deck.DiscardSize()
	}
	if s.state == StatePlaying {
		view.Current = s.players[s.turn]
		view.PendingPenalty = s.pending
	}
	return view
}

// penaltyDraw pulls up to n cards into hand, stopping quietly if the deck
// runs dry. Assumes the lock is held.
func (s *Session) penaltyDraw(hand *uno.Hand, n int) int {
	drew := 0
	for i := 0; i < n; i++ {
		card, err := s.deck.DrawOne()
		if err != nil {
			break
		}
		hand.Add(card)
		drew++
	}
	return drew
}

// holdsColor reports whether hand contains a colored card matching active,
// not counting one instance of the card being played. Assumes the lock is
// held.
func (s *Session) holdsColor(hand *uno.Hand, playing uno.Card, active uno.Color) bool {
	skipped := false
	for _, c := range hand.Cards() {
		if !skipped && c == playing {
			skipped = true
			continue
		}
		if c.Color() == active && c.Color() != uno.ColorNone {
			return true
		}
	}
	return false
}

// playerAt returns the player steps ahead of the current turn holder in the
// current direction. Assumes the lock is held.
func (s *Session) playerAt(steps int) string {
	n := len(s.players)
	dir := 1
	if s.reversed {
		dir = -1
	}
	idx := ((s.turn+dir*steps)%n + n) % n
	return s.players[idx]
}

// advance moves the turn pointer. Assumes the lock is held.
func (s *Session) advance(steps int) {
	n := len(s.players)
	dir := 1
	if s.reversed {
		dir = -1
	}
	s.turn = ((s.turn+dir*steps)%n + n) % n
}

func (s *Session) indexOf(playerID string) int {
	for i, p := range s.players {
		if p == playerID {
			return i
		}
	}
	return -1
}
