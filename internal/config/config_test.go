package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, 7, cfg.Rules.HandSize)
	assert.Equal(t, 2, cfg.Rules.MinPlayers)
	assert.Equal(t, 10, cfg.Rules.MaxPlayers)
	assert.False(t, cfg.Rules.StackDraw)
	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout)
	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, 3, cfg.BackupRetention)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("UNO_HAND_SIZE", "5")
	t.Setenv("UNO_STACK_DRAW", "true")
	t.Setenv("UNO_SESSION_TIMEOUT", "10m")
	t.Setenv("UNO_BACKUP_RETENTION", "1")
	t.Setenv("UNO_STORE", "postgres")

	cfg := Load()
	assert.Equal(t, 5, cfg.Rules.HandSize)
	assert.True(t, cfg.Rules.StackDraw)
	assert.Equal(t, 10*time.Minute, cfg.SessionTimeout)
	assert.Equal(t, 1, cfg.BackupRetention)
	assert.Equal(t, "postgres", cfg.StoreBackend)
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("UNO_HAND_SIZE", "many")
	t.Setenv("UNO_SESSION_TIMEOUT", "soon")
	t.Setenv("UNO_STACK_DRAW", "yes please")

	cfg := Load()
	assert.Equal(t, 7, cfg.Rules.HandSize)
	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout)
	assert.False(t, cfg.Rules.StackDraw)
}
