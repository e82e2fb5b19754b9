// internal/handlers/command_ws_test.go
package handlers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtable/uno/internal/config"
	"github.com/cardtable/uno/internal/engine"
	"github.com/cardtable/uno/internal/session"
	"github.com/cardtable/uno/internal/uno"
)

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := config.Load()
	cfg.StoreBackend = "file"
	cfg.SnapshotPath = filepath.Join(t.TempDir(), "snapshot.json")
	cfg.RedisAddr = ""
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	e, err := engine.New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestDispatchLifecycle(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	rep := dispatch(ctx, e, Command{Type: "create", Key: "chan", Player: "alice"})
	require.Equal(t, "ok", rep.Type, rep.Error)
	rep = dispatch(ctx, e, Command{Type: "join", Key: "chan", Player: "bob"})
	require.Equal(t, "ok", rep.Type, rep.Error)
	rep = dispatch(ctx, e, Command{Type: "start", Key: "chan"})
	require.Equal(t, "ok", rep.Type, rep.Error)

	rep = dispatch(ctx, e, Command{Type: "status", Key: "chan"})
	require.Equal(t, "ok", rep.Type, rep.Error)
	st, ok := rep.Result.(session.StatusView)
	require.True(t, ok)
	assert.Equal(t, session.StatePlaying, st.State)
	assert.Equal(t, []string{"alice", "bob"}, st.Players)
}

func TestDispatchErrors(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	rep := dispatch(ctx, e, Command{Type: "status", Key: "nowhere"})
	assert.Equal(t, "error", rep.Type)
	assert.Equal(t, session.ErrSessionNotFound.Error(), rep.Error)

	rep = dispatch(ctx, e, Command{Type: "flip-table", Key: "chan"})
	assert.Equal(t, "error", rep.Type)

	rep = dispatch(ctx, e, Command{Type: "play", Key: "chan"})
	assert.Equal(t, "error", rep.Type)
	assert.Contains(t, rep.Error, "requires a card")
}

func TestCardPayloadParsing(t *testing.T) {
	card, err := (&CardPayload{Kind: "number", Color: "red", Value: 7}).card()
	require.NoError(t, err)
	assert.Equal(t, uno.Number(uno.Red, 7), card)

	card, err = (&CardPayload{Kind: "wild"}).card()
	require.NoError(t, err)
	assert.Equal(t, uno.Wild(), card)

	_, err = (&CardPayload{Kind: "wild", Color: "red"}).card()
	assert.Error(t, err)

	_, err = (&CardPayload{Kind: "teapot"}).card()
	assert.Error(t, err)
}
