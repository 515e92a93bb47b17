package wsrouter

import (
	"context"
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

type echoInput struct {
	Text string `json:"text"`
}

type recorder struct {
	mu     sync.Mutex
	calls  []string
	errors []error
	done   chan struct{}
}

func (r *recorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) recordErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func serve(t *testing.T, router *WSRouter) (*websocket.Conn, chan error) {
	t.Helper()

	served := make(chan error, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			served <- err
			return
		}
		defer conn.Close()
		served <- router.ServeConn(context.Background(), conn)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, served
}

func TestServeConnDispatch(t *testing.T) {
	rec := &recorder{done: make(chan struct{})}
	router := New()
	router.Use(
		func(next HandlerFunc[any]) HandlerFunc[any] {
			return func(ctx context.Context, conn *websocket.Conn, payload any) error {
				rec.record("outer:" + GetMessageTypeFromCtx(ctx))
				return next(ctx, conn, payload)
			}
		},
		func(next HandlerFunc[any]) HandlerFunc[any] {
			return func(ctx context.Context, conn *websocket.Conn, payload any) error {
				rec.record("inner")
				return next(ctx, conn, payload)
			}
		},
	)
	router.HandleError(func(_ context.Context, _ *websocket.Conn, err error) {
		rec.recordErr(err)
	})
	Handle(router, "ECHO", func(_ context.Context, _ *websocket.Conn, input echoInput) error {
		rec.record("echo:" + input.Text)
		return nil
	})
	Handle(router, "DONE", func(_ context.Context, _ *websocket.Conn, _ struct{}) error {
		close(rec.done)
		return nil
	})

	conn, _ := serve(t, router)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ECHO", "payload": map[string]string{"text": "hi"}}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "NOPE"}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ECHO", "payload": "not an object"}))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{broken")))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "DONE"}))

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("DONE was not dispatched")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"outer:ECHO", "inner", "echo:hi", "outer:DONE", "inner"}, rec.calls)
	require.Len(t, rec.errors, 3)
	assert.ErrorIs(t, rec.errors[0], ErrUnknownMessageType)
	assert.ErrorIs(t, rec.errors[1], ErrInvalidPayload)
	assert.ErrorIs(t, rec.errors[2], ErrInvalidPayload)
}

func TestServeConnReturnsOnClose(t *testing.T) {
	conn, served := serve(t, New())

	require.NoError(t, conn.Close())

	select {
	case err := <-served:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("ServeConn did not return after the peer closed")
	}
}

func TestGetMessageTypeFromCtxMissing(t *testing.T) {
	assert.Equal(t, "", GetMessageTypeFromCtx(context.Background()))
}
