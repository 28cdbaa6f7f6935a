package transport

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ygrebnov/taskpool/internal/frame"
	"github.com/ygrebnov/taskpool/internal/scan"
)

// WebSocket is the second of the two supported transport shapes: it wraps
// a *websocket.Conn so a worker can run as a genuinely separate process or
// host. Frames are encoded as JSON text messages; the core does not
// prescribe a wire codec, this is simply this adapter's choice.
type WebSocket struct {
	conn   *websocket.Conn
	logger zerolog.Logger

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
}

// Option configures a WebSocket.
type Option func(*WebSocket)

// WithLogger attaches a structured logger, used to report transferables
// Send cannot actually move across the connection.
func WithLogger(l zerolog.Logger) Option {
	return func(w *WebSocket) { w.logger = l }
}

// NewWebSocket wraps an already-established connection.
func NewWebSocket(conn *websocket.Conn, opts ...Option) *WebSocket {
	w := &WebSocket{conn: conn, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Send encodes f as JSON and writes it to the connection. A websocket
// crosses a real process boundary, so transferables cannot physically move
// with the frame the way they do over Inprocess; Send still invalidates
// each one on the caller side (the invariant Transfer documents), and logs
// that they could not be carried.
func (w *WebSocket) Send(f frame.Frame, transferables ...scan.Transferable) error {
	w.writeMu.Lock()
	err := w.conn.WriteJSON(f)
	w.writeMu.Unlock()
	if err != nil {
		return err
	}
	if len(transferables) > 0 {
		w.logger.Warn().Int("count", len(transferables)).
			Msg("transport: transferable handles cannot cross a websocket boundary, invalidating caller-side handles only")
	}
	for _, t := range transferables {
		t.Transfer()
	}
	return nil
}

func (w *WebSocket) Recv() (frame.Frame, bool) {
	var f frame.Frame
	if err := w.conn.ReadJSON(&f); err != nil {
		return frame.Frame{}, false
	}
	return f, true
}

func (w *WebSocket) Close() error {
	w.closeMu.Lock()
	defer w.closeMu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.conn.Close()
}
