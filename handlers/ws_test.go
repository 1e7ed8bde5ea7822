package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"hangeul/models"
	"hangeul/services"

	"github.com/fasthttp/websocket"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen serves the app on a loopback port and returns its websocket URL.
func (s *testServer) listen() string {
	s.t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(s.t, err)
	go func() { _ = s.app.Listener(ln) }()
	s.t.Cleanup(func() { _ = s.app.ShutdownWithTimeout(time.Second) })
	return fmt.Sprintf("ws://%s/ws", ln.Addr().String())
}

type wsFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// readFrame returns the next frame of the given type, skipping others.
func readFrame(t *testing.T, conn *websocket.Conn, kind string) wsFrame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for a %q frame", kind)
		var f wsFrame
		require.NoError(t, json.Unmarshal(data, &f), string(data))
		if f.Type == kind {
			return f
		}
	}
}

func TestWebSocketRequiresToken(t *testing.T) {
	s := newTestServer(t)
	url := s.listen()

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=garbage", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketHeartbeatAndNotifications(t *testing.T) {
	s := newTestServer(t)
	token := s.register("minji")
	url := s.listen()

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`)))
	frame := readFrame(t, conn, "heartbeat")
	var beat services.HeartbeatResult
	require.NoError(t, json.Unmarshal(frame.Payload, &beat))
	assert.Equal(t, 30, beat.ActiveSeconds)
	assert.Equal(t, "2025-03-12", beat.Day)

	// Unknown and malformed frames are ignored.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"hello"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))

	var userID uint
	require.NoError(t, s.db.Model(&models.User{}).Where("username = ?", "minji").Pluck("id", &userID).Error)
	for i := 0; i < 49; i++ {
		require.NoError(t, s.db.Create(&models.VocabularyItem{
			UserID: userID, Word: fmt.Sprintf("단어%d", i), Meaning: "word", CreatedDay: "2025-03-12",
		}).Error)
	}
	status, body := s.do(http.MethodPost, "/api/vocabulary", fiber.Map{"word": "불", "meaning": "fire"}, token)
	require.Equal(t, http.StatusCreated, status, body)

	frame = readFrame(t, conn, services.NotifyAchievementUnlocked)
	var unlock services.Unlock
	require.NoError(t, json.Unmarshal(frame.Payload, &unlock))
	assert.Equal(t, "On Fire", unlock.Title)
}

func TestBoundedContext(t *testing.T) {
	h := &Handler{requestTimeout: time.Second}
	ctx, cancel := h.boundedContext(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)

	h.requestTimeout = 0
	ctx, cancel = h.boundedContext(context.Background())
	defer cancel()
	_, ok = ctx.Deadline()
	assert.False(t, ok)
}
