// handlers/ws.go - Live progress notifications
package handlers

import (
	"context"
	"time"

	"hangeul/services"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 4096
)

// ClientMessage is a frame sent by the browser.
type ClientMessage struct {
	Type string `json:"type"`
}

// HeartbeatReply answers a heartbeat frame on the same connection.
type HeartbeatReply struct {
	Type    string                    `json:"type"`
	Payload *services.HeartbeatResult `json:"payload"`
}

// UpgradeWebSocket rejects plain HTTP requests to /ws.
func UpgradeWebSocket(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebSocket streams the user's notifications and accepts heartbeat frames,
// so an open tab keeps crediting study time without separate requests.
func (h *Handler) WebSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userId").(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		log := h.log.With().Uint("user_id", userID).Logger()
		sub := h.hub.Subscribe(userID)
		replies := make(chan HeartbeatReply, 4)
		done := make(chan struct{})
		go writePump(conn, sub, replies, done, log)

		conn.SetReadLimit(wsMaxMessage)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})

		log.Debug().Msg("websocket connected")
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Msg("websocket read failed")
				}
				break
			}

			var msg ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if msg.Type != "heartbeat" {
				continue
			}

			_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
			ctx, cancel := h.boundedContext(context.Background())
			outcome, err := h.engine.OnHeartbeat(ctx, userID, h.clock.Now())
			cancel()
			if err != nil {
				log.Error().Err(err).Msg("websocket heartbeat failed")
				continue
			}
			select {
			case replies <- HeartbeatReply{Type: "heartbeat", Payload: outcome.HeartbeatResult}:
			default:
			}
		}

		sub.Close()
		<-done
		log.Debug().Msg("websocket disconnected")
	})
}

// writePump owns all writes to conn. It returns once the subscription is
// closed or a write fails.
func writePump(conn *websocket.Conn, sub *services.Subscription, replies <-chan HeartbeatReply, done chan<- struct{}, log zerolog.Logger) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
		close(done)
	}()

	write := func(v interface{}) bool {
		data, err := json.Marshal(v)
		if err != nil {
			log.Error().Err(err).Msg("encoding websocket frame failed")
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteMessage(websocket.TextMessage, data) == nil
	}

	for {
		select {
		case n, ok := <-sub.C():
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if !write(n) {
				return
			}
		case r := <-replies:
			if !write(r) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
