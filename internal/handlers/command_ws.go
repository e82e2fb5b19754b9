// internal/handlers/command_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/cardtable/uno/internal/engine"
	"github.com/cardtable/uno/internal/uno"
)

// Command is one JSON frame from a client. Type selects the operation; the
// remaining fields are read as each operation needs them.
type Command struct {
	Type   string `json:"type"`
	Key    string `json:"key"`
	Player string `json:"player,omitempty"`

	// Card and Declared accompany "play".
	Card     *CardPayload `json:"card,omitempty"`
	Declared string       `json:"declared,omitempty"`

	// Count accompanies "draw"; zero means "whatever is owed".
	Count int `json:"count,omitempty"`
}

// CardPayload mirrors the wire form of a card.
type CardPayload struct {
	Kind  string `json:"kind"`
	Color string `json:"color,omitempty"`
	Value int    `json:"value"`
}

// Reply is the frame written back for every command.
type Reply struct {
	Type   string      `json:"type"`
	Error  string      `json:"error,omitempty"`
	Result interface{} `json:"result,omitempty"`
}

func (c *CardPayload) card() (uno.Card, error) {
	kind, err := uno.ParseKind(c.Kind)
	if err != nil {
		return uno.Card{}, err
	}
	color := uno.ColorNone
	if c.Color != "" {
		if color, err = uno.ParseColor(c.Color); err != nil {
			return uno.Card{}, err
		}
	}
	return uno.Make(kind, color, c.Value)
}

// CommandWSHandler upgrades the connection and runs a command loop against
// the engine. One frame in, one reply out; malformed frames get an error
// reply rather than a dropped connection.
func CommandWSHandler(logger *logrus.Logger, e *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"uno"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "uno" {
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'uno' subprotocol.")
			return
		}
		logger.Infof("command connection established from %s", r.RemoteAddr)

		ctx := r.Context()
		for {
			msgType, data, err := c.Read(ctx)
			if err != nil {
				logger.Infof("command connection from %s closed: %v", r.RemoteAddr, err)
				return
			}
			if msgType != websocket.MessageText {
				continue
			}

			var cmd Command
			if err := json.Unmarshal(data, &cmd); err != nil {
				writeReply(ctx, c, logger, Reply{Type: "error", Error: "invalid JSON"})
				continue
			}
			writeReply(ctx, c, logger, dispatch(ctx, e, cmd))
		}
	}
}

func writeReply(ctx context.Context, c *websocket.Conn, logger *logrus.Logger, rep Reply) {
	data, err := json.Marshal(rep)
	if err != nil {
		logger.Warnf("failed to marshal reply: %v", err)
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Write(writeCtx, websocket.MessageText, data); err != nil {
		logger.Warnf("failed to write reply: %v", err)
	}
}

func dispatch(ctx context.Context, e *engine.Engine, cmd Command) Reply {
	switch cmd.Type {
	case "create":
		s, err := e.Create(ctx, cmd.Key, cmd.Player)
		if err != nil {
			return errReply(err)
		}
		return okReply(map[string]interface{}{"session_id": s.ID().String()})
	case "join":
		return plainReply(e.Join(cmd.Key, cmd.Player))
	case "leave":
		return plainReply(e.Leave(ctx, cmd.Key, cmd.Player))
	case "start":
		return plainReply(e.Start(ctx, cmd.Key))
	case "play":
		if cmd.Card == nil {
			return Reply{Type: "error", Error: "play requires a card"}
		}
		card, err := cmd.Card.card()
		if err != nil {
			return errReply(err)
		}
		declared := uno.ColorNone
		if cmd.Declared != "" {
			if declared, err = uno.ParseColor(cmd.Declared); err != nil {
				return errReply(err)
			}
		}
		res, err := e.Play(ctx, cmd.Key, cmd.Player, card, declared)
		if err != nil {
			return errReply(err)
		}
		return okReply(res)
	case "draw":
		res, err := e.Draw(cmd.Key, cmd.Player, cmd.Count)
		if err != nil {
			return errReply(err)
		}
		return okReply(res)
	case "uno":
		return plainReply(e.CallUno(cmd.Key, cmd.Player))
	case "challenge":
		res, err := e.Challenge(cmd.Key, cmd.Player)
		if err != nil {
			return errReply(err)
		}
		return okReply(res)
	case "status":
		st, err := e.Status(cmd.Key)
		if err != nil {
			return errReply(err)
		}
		return okReply(st)
	case "playable":
		cards, err := e.Playable(cmd.Key, cmd.Player)
		if err != nil {
			return errReply(err)
		}
		names := make([]string, len(cards))
		for i, card := range cards {
			names[i] = card.String()
		}
		return okReply(map[string]interface{}{"cards": names})
	case "stop":
		return plainReply(e.Stop(ctx, cmd.Key))
	default:
		return Reply{Type: "error", Error: "unknown command type"}
	}
}

func okReply(result interface{}) Reply {
	return Reply{Type: "ok", Result: result}
}

func errReply(err error) Reply {
	return Reply{Type: "error", Error: err.Error()}
}

func plainReply(err error) Reply {
	if err != nil {
		return errReply(err)
	}
	return okReply(nil)
}
