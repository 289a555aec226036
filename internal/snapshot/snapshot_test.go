package snapshot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junsooki/rdpcore/internal/pipeline"
)

type fakeCapturer struct {
	mu      sync.Mutex
	targets []pipeline.Target
	err     error
}

func (f *fakeCapturer) Run(_ context.Context, t pipeline.Target) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, t)
	if f.err != nil {
		return nil, f.err
	}
	return []byte{0xFF, 0xD8, byte(t.Width), byte(t.Height), 0xFF, 0xD9}, nil
}

func startServer(t *testing.T, c Capturer, code string) string {
	t.Helper()
	srv := httptest.NewServer(NewServer(c, code, nil))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestCaptureRoundTrip(t *testing.T) {
	fc := &fakeCapturer{}
	url := startServer(t, fc, "")

	cl, err := Dial(ctx(t), url, "")
	require.NoError(t, err)
	defer cl.Close()

	data, err := cl.Capture(ctx(t), 64, 48)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 64, 48, 0xFF, 0xD9}, data)

	data, err = cl.Capture(ctx(t), 0, 0)
	require.NoError(t, err)
	assert.Len(t, data, 6)

	assert.Equal(t, []pipeline.Target{{Width: 64, Height: 48}, {}}, fc.targets)
}

func TestCaptureError(t *testing.T) {
	url := startServer(t, &fakeCapturer{err: errors.New("capture: backend unavailable")}, "")

	cl, err := Dial(ctx(t), url, "")
	require.NoError(t, err)
	defer cl.Close()

	data, err := cl.Capture(ctx(t), 0, 0)
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrRemote)
	assert.ErrorContains(t, err, "backend unavailable")
}

func TestSessionCode(t *testing.T) {
	url := startServer(t, &fakeCapturer{}, "secret")

	_, err := Dial(ctx(t), url, "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = Dial(ctx(t), url, "")
	require.Error(t, err)

	cl, err := Dial(ctx(t), url, "secret")
	require.NoError(t, err)
	defer cl.Close()
	_, err = cl.Capture(ctx(t), 1, 1)
	assert.NoError(t, err)
}

func TestPingAndUnknownType(t *testing.T) {
	url := startServer(t, &fakeCapturer{}, "")

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.WriteJSON(Message{Type: TypePing}))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, TypePong, msg.Type)
	assert.NotZero(t, msg.Timestamp)

	require.NoError(t, conn.WriteJSON(Message{Type: "stream"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, msg.Msg, "stream")
}
