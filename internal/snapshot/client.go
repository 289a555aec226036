package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrRemote wraps an error message sent by the server.
var ErrRemote = errors.New("snapshot server error")

// Client requests captures from a snapshot Server.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Dial connects to rawURL, adding code as the session code when set.
func Dial(ctx context.Context, rawURL, code string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("snapshot url: %w", err)
	}
	if code != "" {
		q := u.Query()
		q.Set("code", code)
		u.RawQuery = q.Encode()
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("snapshot dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("snapshot dial: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Capture asks for one frame at width x height (0,0 = native) and returns
// the JPEG bytes.
func (c *Client) Capture(ctx context.Context, width, height uint32) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dl, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(dl)
		c.conn.SetReadDeadline(dl)
		defer c.conn.SetReadDeadline(time.Time{})
		defer c.conn.SetWriteDeadline(time.Time{})
	}

	if err := c.conn.WriteJSON(Message{Type: TypeCapture, Width: width, Height: height}); err != nil {
		return nil, fmt.Errorf("send capture request: %w", err)
	}
	kind, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read capture reply: %w", err)
	}
	if kind == websocket.BinaryMessage {
		return data, nil
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if msg.Type == TypeError {
		return nil, fmt.Errorf("%w: %s", ErrRemote, msg.Msg)
	}
	return nil, fmt.Errorf("unexpected reply %q", msg.Type)
}

// Close shuts down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
