// internal/session/registry.go
package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Registry owns every live session, keyed by the external table/channel
// identifier. It is an explicit object handed to its call sites; tests can
// run any number of independent registries in one process.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	rules    Rules
	timeout  time.Duration
	log      *logrus.Logger
}

// NewRegistry returns an empty registry. rules seed every created session;
// timeout is the idle span after which a session is considered expired.
func NewRegistry(rules Rules, timeout time.Duration, logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		rules:    rules,
		timeout:  timeout,
		log:      logger,
	}
}

// Create starts a new session under key with hostID seated. A key already
// occupied by a live session is rejected; finished or expired occupants are
// silently displaced.
func (r *Registry) Create(key, hostID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[key]; ok {
		if existing.State() != StateFinished && !existing.Expired(r.timeout) {
			return nil, ErrSessionExists
		}
		r.log.WithFields(logrus.Fields{
			"key":   key,
			"state": existing.State().String(),
		}).Info("displacing defunct session")
	}

	s := NewSession(key, hostID, r.rules)
	r.sessions[key] = s
	r.log.WithFields(logrus.Fields{
		"key":     key,
		"host":    hostID,
		"session": s.ID(),
	}).Info("session created")
	return s, nil
}

// Get looks up the session under key.
func (r *Registry) Get(key string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Remove drops the session under key, reporting whether one existed.
func (r *Registry) Remove(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[key]; !ok {
		return false
	}
	delete(r.sessions, key)
	return true
}

// Adopt re-registers a restored session under its own key, replacing any
// occupant. Used by the persistence layer on startup.
func (r *Registry) Adopt(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Key()] = s
}

// SweepExpired removes every session idle for longer than timeout, plus any
// that already finished, and returns how many went.
func (r *Registry) SweepExpired(timeout time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, s := range r.sessions {
		if s.State() == StateFinished || s.Expired(timeout) {
			delete(r.sessions, key)
			removed++
			r.log.WithFields(logrus.Fields{
				"key":   key,
				"state": s.State().String(),
				"idle":  time.Since(s.LastActivity()).Round(time.Second).String(),
			}).Info("session swept")
		}
	}
	return removed
}

// Sessions returns the live sessions in no particular order.
func (r *Registry) Sessions() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// TotalPlayers counts players across all registered sessions.
func (r *Registry) TotalPlayers() int {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	total := 0
	for _, s := range sessions {
		total += len(s.Status().Players)
	}
	return total
}
