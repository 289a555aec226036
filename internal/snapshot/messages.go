package snapshot

// Message types for the snapshot protocol.
const (
	TypeCapture = "capture"
	TypeError   = "error"
	TypePing    = "ping"
	TypePong    = "pong"
)

// Message is the envelope for all text frames. A successful capture is
// answered with a binary frame holding the JPEG instead.
type Message struct {
	Type      string `json:"type"`
	Width     uint32 `json:"width,omitempty"`
	Height    uint32 `json:"height,omitempty"`
	Msg       string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}
