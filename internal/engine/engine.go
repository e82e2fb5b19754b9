// internal/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/cardtable/uno/internal/cache"
	"github.com/cardtable/uno/internal/config"
	"github.com/cardtable/uno/internal/persist"
	"github.com/cardtable/uno/internal/session"
	"github.com/cardtable/uno/internal/uno"
)

// Engine is the narrow command/query surface the hosting application drives.
// It owns the registry, the persistence manager, and the optional event
// queue; everything above it is presentation.
type Engine struct {
	cfg      config.Config
	log      *logrus.Logger
	registry *session.Registry
	manager  *persist.Manager
	events   *cache.Publisher
	pool     *pgxpool.Pool
}

// New wires an engine from configuration. Redis is optional: a failed
// connection degrades to no event publishing. The postgres backend is only
// dialed when selected.
func New(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*Engine, error) {
	if logger == nil {
		logger = logrus.New()
	}

	e := &Engine{
		cfg:      cfg,
		log:      logger,
		registry: session.NewRegistry(cfg.Rules, cfg.SessionTimeout, logger),
	}

	if cfg.RedisAddr != "" {
		events, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.EventQueue)
		if err != nil {
			logger.WithError(err).Warn("event queue unavailable, continuing without it")
		} else {
			e.events = events
		}
	}

	var store persist.Store
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := connectPostgres(ctx)
		if err != nil {
			return nil, fmt.Errorf("connecting snapshot database: %w", err)
		}
		pg := persist.NewPostgresStore(pool, cfg.BackupRetention)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		e.pool = pool
		store = pg
	case "file", "":
		store = persist.NewFileStore(cfg.SnapshotPath, cfg.BackupRetention)
	default:
		return nil, fmt.Errorf("unknown snapshot store backend %q", cfg.StoreBackend)
	}

	e.manager = persist.NewManager(e.registry, store, cfg.SnapshotInterval, logger, e.events)
	return e, nil
}

func connectPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)
	pcfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

// Registry exposes the session registry for direct queries.
func (e *Engine) Registry() *session.Registry { return e.registry }

// Restore rebuilds sessions from the latest snapshot. Called once at boot.
func (e *Engine) Restore(ctx context.Context) (int, error) {
	return e.manager.Restore(ctx)
}

// Snapshot persists the current registry state immediately.
func (e *Engine) Snapshot(ctx context.Context) error {
	return e.manager.SnapshotNow(ctx)
}

// Run drives the background maintenance (expiry sweep and periodic
// snapshots) until ctx is done. It returns only after the manager has cut
// its final shutdown snapshot, so callers can wait on it for a clean exit.
func (e *Engine) Run(ctx context.Context) {
	managerDone := make(chan struct{})
	go func() {
		defer close(managerDone)
		e.manager.Run(ctx)
	}()

	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			<-managerDone
			return
		case <-ticker.C:
			removed := e.registry.SweepExpired(e.cfg.SessionTimeout)
			if removed > 0 {
				e.log.WithField("removed", removed).Info("expired sessions swept")
				e.publish(ctx, cache.Event{
					Type:    cache.EventSessionsSwept,
					Payload: map[string]interface{}{"removed": removed},
				})
			}
		}
	}
}

// Close releases external resources.
func (e *Engine) Close() {
	if err := e.events.Close(); err != nil {
		e.log.WithError(err).Warn("closing event queue")
	}
	if e.pool != nil {
		e.pool.Close()
	}
}

func (e *Engine) publish(ctx context.Context, ev cache.Event) {
	if err := e.events.Publish(ctx, ev); err != nil {
		e.log.WithError(err).WithField("type", ev.Type).Warn("failed to publish event")
	}
}

// Create opens a new session under key, hosted by hostID.
func (e *Engine) Create(ctx context.Context, key, hostID string) (*session.Session, error) {
	s, err := e.registry.Create(key, hostID)
	if err != nil {
		return nil, err
	}
	e.publish(ctx, cache.Event{
		Type:    cache.EventSessionCreated,
		Key:     key,
		Payload: map[string]interface{}{"host": hostID},
	})
	return s, nil
}

func (e *Engine) lookup(key string) (*session.Session, error) {
	s, ok := e.registry.Get(key)
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return s, nil
}

// Join seats playerID at the session under key.
func (e *Engine) Join(key, playerID string) error {
	s, err := e.lookup(key)
	if err != nil {
		return err
	}
	return s.Join(playerID)
}

// Leave removes playerID from the session under key.
func (e *Engine) Leave(ctx context.Context, key, playerID string) error {
	s, err := e.lookup(key)
	if err != nil {
		return err
	}
	if err := s.Leave(playerID); err != nil {
		return err
	}
	if s.State() == session.StateFinished {
		e.publish(ctx, cache.Event{Type: cache.EventSessionFinished, Key: key})
	}
	return nil
}

// Start begins play for the session under key.
func (e *Engine) Start(ctx context.Context, key string) error {
	s, err := e.lookup(key)
	if err != nil {
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}
	e.publish(ctx, cache.Event{
		Type:    cache.EventSessionStarted,
		Key:     key,
		Payload: map[string]interface{}{"players": len(s.Status().Players)},
	})
	return nil
}

// Play applies one card play.
func (e *Engine) Play(ctx context.Context, key, playerID string, card uno.Card, declared uno.Color) (session.PlayResult, error) {
	s, err := e.lookup(key)
	if err != nil {
		return session.PlayResult{}, err
	}
	res, err := s.Play(playerID, card, declared)
	if err != nil {
		return session.PlayResult{}, err
	}
	if res.Winner != "" {
		e.publish(ctx, cache.Event{
			Type:    cache.EventSessionFinished,
			Key:     key,
			Payload: map[string]interface{}{"winner": res.Winner},
		})
	}
	return res, nil
}

// Draw hands the current player their card(s).
func (e *Engine) Draw(key, playerID string, count int) (session.DrawResult, error) {
	s, err := e.lookup(key)
	if err != nil {
		return session.DrawResult{}, err
	}
	return s.Draw(playerID, count)
}

// CallUno registers an UNO call.
func (e *Engine) CallUno(key, playerID string) error {
	s, err := e.lookup(key)
	if err != nil {
		return err
	}
	return s.CallUno(playerID)
}

// Challenge contests the pending wild-draw-four.
func (e *Engine) Challenge(key, playerID string) (session.ChallengeResult, error) {
	s, err := e.lookup(key)
	if err != nil {
		return session.ChallengeResult{}, err
	}
	return s.Challenge(playerID)
}

// Status projects the session under key.
func (e *Engine) Status(key string) (session.StatusView, error) {
	s, err := e.lookup(key)
	if err != nil {
		return session.StatusView{}, err
	}
	return s.Status(), nil
}

// Playable lists playerID's legal plays in the session under key.
func (e *Engine) Playable(key, playerID string) ([]uno.Card, error) {
	s, err := e.lookup(key)
	if err != nil {
		return nil, err
	}
	return s.Playable(playerID)
}

// Stop removes the session under key outright.
func (e *Engine) Stop(ctx context.Context, key string) error {
	if !e.registry.Remove(key) {
		return session.ErrSessionNotFound
	}
	e.publish(ctx, cache.Event{Type: cache.EventSessionFinished, Key: key})
	return nil
}
