package lmwire

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// Transport provides the interface for sending and receiving messages on
// one established websocket. Implementations must be safe for concurrent
// use.
type Transport interface {
	// SendAuth sends the authentication payload. It must be the first
	// frame written after the socket opens.
	SendAuth(ctx context.Context, auth *AuthDetails) error
	Send(ctx context.Context, msg *ClientToServerMessage) error
	Receive(ctx context.Context) (*ServerToClientMessage, error)
	Close() error
}

// DialOptions configures the websocket handshake.
type DialOptions struct {
	// HTTPHeader specifies additional HTTP headers to send during handshake.
	HTTPHeader http.Header

	// HTTPClient is the HTTP client used for the handshake.
	// If nil, http.DefaultClient is used.
	HTTPClient *http.Client
}

// Dial connects to a namespace endpoint and returns a Transport.
func Dial(ctx context.Context, url string, opts *DialOptions) (Transport, error) {
	dialOpts := &websocket.DialOptions{}
	if opts != nil {
		dialOpts.HTTPHeader = opts.HTTPHeader
		dialOpts.HTTPClient = opts.HTTPClient
	}

	conn, _, err := websocket.Dial(ctx, url, dialOpts)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", URL: url, Err: err}
	}

	// Set a large read limit for potentially large responses
	conn.SetReadLimit(32 * 1024 * 1024) // 32MB

	return &wsTransport{conn: conn}, nil
}

// wsTransport implements Transport over WebSocket.
type wsTransport struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func (t *wsTransport) SendAuth(ctx context.Context, auth *AuthDetails) error {
	return t.write(ctx, auth)
}

func (t *wsTransport) Send(ctx context.Context, msg *ClientToServerMessage) error {
	return t.write(ctx, msg)
}

func (t *wsTransport) write(ctx context.Context, v interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrConnectionClosed
	}

	data, err := json.Marshal(v)
	if err != nil {
		return &WebsocketError{Message: "marshal", Err: err}
	}

	if err := t.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return &ConnectionError{Op: "write", Err: err}
	}

	return nil
}

// Receive receives a message from the server.
func (t *wsTransport) Receive(ctx context.Context) (*ServerToClientMessage, error) {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		t.mu.Lock()
		closed := t.closed
		t.mu.Unlock()
		if closed {
			return nil, ErrConnectionClosed
		}
		return nil, &ConnectionError{Op: "read", Err: err}
	}

	var msg ServerToClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, &WebsocketError{Message: "unmarshal", Err: err}
	}

	return &msg, nil
}

// Close closes the transport.
func (t *wsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	return t.conn.Close(websocket.StatusNormalClosure, "")
}
