package wsrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialedConn starts a server that runs the router's serve loop on every
// accepted connection and returns a client connected to it.
func dialedConn(t *testing.T, r *WSRouter) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		r.ServeConn(req.Context(), conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

type echoInput struct {
	Text string `json:"text"`
}

type reply struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readReply(t *testing.T, conn *websocket.Conn) reply {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var r reply
	require.NoError(t, conn.ReadJSON(&r))

	return r
}

func TestDispatchInReceiptOrder(t *testing.T) {
	r := New()
	HandleTyped(r, "echo", func(ctx context.Context, conn *websocket.Conn, input echoInput) error {
		return conn.WriteJSON(map[string]any{"type": "echoed", "payload": input})
	})

	conn := dialedConn(t, r)

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"type":    "echo",
			"payload": echoInput{Text: text},
		}))
	}

	for _, want := range []string{"one", "two", "three"} {
		got := readReply(t, conn)
		assert.Equal(t, "echoed", got.Type)

		var input echoInput
		require.NoError(t, json.Unmarshal(got.Payload, &input))
		assert.Equal(t, want, input.Text)
	}
}

func TestUnknownMessageTypeGoesToErrorHandler(t *testing.T) {
	r := New()
	r.HandleError(func(ctx context.Context, conn *websocket.Conn, err error) error {
		assert.ErrorIs(t, err, ErrUnknownMessageType)
		return conn.WriteJSON(map[string]any{"type": "error", "payload": GetMessageTypeFromCtx(ctx)})
	})

	conn := dialedConn(t, r)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "nope"}))

	got := readReply(t, conn)
	assert.Equal(t, "error", got.Type)
	assert.Equal(t, `"nope"`, string(got.Payload))
}

func TestMalformedPayloadGoesToErrorHandler(t *testing.T) {
	r := New()
	HandleTyped(r, "echo", func(ctx context.Context, conn *websocket.Conn, input echoInput) error {
		t.Error("handler must not run on a malformed payload")
		return nil
	})
	r.HandleError(func(ctx context.Context, conn *websocket.Conn, err error) error {
		assert.ErrorIs(t, err, ErrMalformedPayload)
		return conn.WriteJSON(map[string]any{"type": "error"})
	})

	conn := dialedConn(t, r)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"echo","payload":"not an object"}`)))

	assert.Equal(t, "error", readReply(t, conn).Type)
}

func TestMiddlewareWrapsEveryMessage(t *testing.T) {
	r := New()

	var mu sync.Mutex
	var seen []string
	r.Use(func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
			mu.Lock()
			seen = append(seen, GetMessageTypeFromCtx(ctx))
			mu.Unlock()
			return next(ctx, conn, payload)
		}
	})
	HandleTyped(r, "ping", func(ctx context.Context, conn *websocket.Conn, _ struct{}) error {
		return conn.WriteJSON(map[string]any{"type": "pong"})
	})
	r.HandleError(func(ctx context.Context, conn *websocket.Conn, err error) error {
		return conn.WriteJSON(map[string]any{"type": "error"})
	})

	conn := dialedConn(t, r)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	assert.Equal(t, "pong", readReply(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "nope"}))
	assert.Equal(t, "error", readReply(t, conn).Type)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ping", "nope"}, seen)
}
