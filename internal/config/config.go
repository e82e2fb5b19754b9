// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cardtable/uno/internal/session"
)

// Config is everything the engine reads from the environment.
type Config struct {
	Rules session.Rules

	SessionTimeout   time.Duration // idle span before a session is sweepable
	SweepInterval    time.Duration
	SnapshotInterval time.Duration
	SnapshotPath     string
	BackupRetention  int
	StoreBackend     string // "file" or "postgres"

	RedisAddr  string // empty disables the event queue
	RedisDB    int
	EventQueue string

	ServicePort string
}

// Load reads the configuration, applying defaults for anything unset.
func Load() Config {
	rules := session.DefaultRules()
	rules.HandSize = getEnvInt("UNO_HAND_SIZE", rules.HandSize)
	rules.MinPlayers = getEnvInt("UNO_MIN_PLAYERS", rules.MinPlayers)
	rules.MaxPlayers = getEnvInt("UNO_MAX_PLAYERS", rules.MaxPlayers)
	rules.StackDraw = getEnvBool("UNO_STACK_DRAW", false)
	rules.AllowChallenge = getEnvBool("UNO_ALLOW_CHALLENGE", false)
	rules.RequireUnoCall = getEnvBool("UNO_REQUIRE_UNO_CALL", false)
	rules.UnoPenalty = getEnvInt("UNO_PENALTY", rules.UnoPenalty)

	return Config{
		Rules:            rules,
		SessionTimeout:   getEnvDuration("UNO_SESSION_TIMEOUT", 30*time.Minute),
		SweepInterval:    getEnvDuration("UNO_SWEEP_INTERVAL", 5*time.Minute),
		SnapshotInterval: getEnvDuration("UNO_SNAPSHOT_INTERVAL", 30*time.Second),
		SnapshotPath:     getEnv("UNO_SNAPSHOT_PATH", "data/snapshot.json"),
		BackupRetention:  getEnvInt("UNO_BACKUP_RETENTION", 3),
		StoreBackend:     getEnv("UNO_STORE", "file"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		EventQueue:       getEnv("UNO_EVENT_QUEUE", ""),
		ServicePort:      getEnv("UNO_SERVICE_PORT", "8080"),
	}
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return v
}
