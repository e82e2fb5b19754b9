// internal/persist/manager.go
package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cardtable/uno/internal/cache"
	"github.com/cardtable/uno/internal/session"
)

// Manager snapshots the registry's live sessions on a schedule and rebuilds
// them after a restart. Snapshots observe each session only between completed
// operations (the session copies itself under its own lock), so the manager
// can run alongside request handling.
type Manager struct {
	registry *session.Registry
	store    Store
	interval time.Duration
	log      *logrus.Logger
	events   *cache.Publisher
}

// NewManager wires a manager. events may be nil.
func NewManager(registry *session.Registry, store Store, interval time.Duration, logger *logrus.Logger, events *cache.Publisher) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{
		registry: registry,
		store:    store,
		interval: interval,
		log:      logger,
		events:   events,
	}
}

// SnapshotNow cuts and stores one snapshot of every live session.
func (m *Manager) SnapshotNow(ctx context.Context) error {
	sessions := m.registry.Sessions()
	data, err := EncodeDocument(sessions)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := m.store.Save(ctx, data); err != nil {
		return fmt.Errorf("storing snapshot: %w", err)
	}
	m.log.WithFields(logrus.Fields{
		"sessions": len(sessions),
		"bytes":    len(data),
	}).Debug("snapshot saved")
	if err := m.events.Publish(ctx, cache.Event{
		Type:    cache.EventSnapshotSaved,
		Payload: map[string]interface{}{"sessions": len(sessions)},
	}); err != nil {
		m.log.WithError(err).Warn("failed to publish snapshot event")
	}
	return nil
}

// Restore loads the newest parseable snapshot generation and re-registers
// its sessions, skipping (and logging) corrupt individual entries. It
// returns the number of sessions brought back.
func (m *Manager) Restore(ctx context.Context) (int, error) {
	candidates, err := m.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading snapshots: %w", err)
	}
	if len(candidates) == 0 {
		m.log.Info("no snapshot found, starting empty")
		return 0, nil
	}

	var doc Document
	found := false
	for i, data := range candidates {
		d, err := DecodeDocument(data)
		if err != nil {
			m.log.WithError(err).WithField("generation", i).Warn("skipping unreadable snapshot generation")
			continue
		}
		doc = d
		found = true
		break
	}
	if !found {
		return 0, fmt.Errorf("no parseable snapshot among %d generations", len(candidates))
	}

	restored := 0
	for key, raw := range doc.Sessions {
		s, err := DecodeSession(raw)
		if err != nil {
			m.log.WithError(err).WithField("key", key).Warn("skipping corrupt session entry")
			continue
		}
		m.registry.Adopt(s)
		restored++
	}
	m.log.WithFields(logrus.Fields{
		"restored": restored,
		"total":    len(doc.Sessions),
		"saved_at": doc.SavedAt,
	}).Info("sessions restored from snapshot")
	if err := m.events.Publish(ctx, cache.Event{
		Type:    cache.EventSnapshotRestored,
		Payload: map[string]interface{}{"restored": restored},
	}); err != nil {
		m.log.WithError(err).Warn("failed to publish restore event")
	}
	return restored, nil
}

// Run snapshots on the configured interval until ctx is done, then cuts one
// final snapshot so a clean shutdown loses nothing.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := m.SnapshotNow(shutdownCtx); err != nil {
				m.log.WithError(err).Error("final snapshot failed")
			}
			cancel()
			return
		case <-ticker.C:
			if err := m.SnapshotNow(ctx); err != nil {
				m.log.WithError(err).Error("periodic snapshot failed")
			}
		}
	}
}
