package lmwire

import (
	"context"
	"log/slog"
	"sync"
)

// DialFunc opens a Transport for a namespace endpoint. It exists so
// tests and custom transports can replace the default websocket dialer.
type DialFunc func(ctx context.Context, url string, opts *DialOptions) (Transport, error)

// connectionConfig carries the shared client configuration down to each
// connection.
type connectionConfig struct {
	logger    *slog.Logger
	onSend    func(*ClientToServerMessage)
	onReceive func(*ServerToClientMessage)
	dial      DialFunc
}

// Connection owns one websocket to a single namespace endpoint. It
// performs the auth handshake on connect, serializes outbound sends, and
// runs the read loop that feeds inbound messages to the dispatcher.
//
// A Connection is owned by exactly one Session (or one ad-hoc caller);
// it is never shared. Connect is a hard precondition (connecting twice
// is an error), Disconnect is idempotent.
type Connection struct {
	url       string
	namespace Namespace
	auth      *AuthDetails
	headers   map[string]string
	demux     *dispatcher
	cfg       connectionConfig

	mu        sync.Mutex
	state     ConnectionState
	transport Transport
}

// NewConnection creates a disconnected Connection for the given
// namespace endpoint URL.
func NewConnection(url string, namespace Namespace, auth *AuthDetails, headers map[string]string, demux *dispatcher, cfg connectionConfig) *Connection {
	if cfg.dial == nil {
		cfg.dial = Dial
	}
	return &Connection{
		url:       url,
		namespace: namespace,
		auth:      auth,
		headers:   headers,
		demux:     demux,
		cfg:       cfg,
		state:     StateDisconnected,
	}
}

// State returns the current connection state.
func (c *Connection) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether the connection is established.
func (c *Connection) Connected() bool {
	return c.State() == StateConnected
}

// Connect dials the endpoint, sends the auth payload as the first
// protocol frame, and starts the read loop. It fails with
// ErrAlreadyConnected unless the connection is fully disconnected, and
// leaves the state disconnected after any transport failure.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	c.mu.Unlock()

	fail := func() {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
	}

	transport, err := c.cfg.dial(ctx, c.url, &DialOptions{
		HTTPHeader: httpHeader(c.headers),
	})
	if err != nil {
		fail()
		return err
	}

	if err := transport.SendAuth(ctx, c.auth); err != nil {
		transport.Close()
		fail()
		return &ConnectionError{Op: "auth handshake", URL: c.url, Err: err}
	}

	c.mu.Lock()
	c.transport = transport
	c.state = StateConnected
	c.mu.Unlock()

	if c.cfg.logger != nil {
		c.cfg.logger.Debug("connected",
			slog.String("url", c.url),
			slog.String("namespace", string(c.namespace)),
		)
	}

	go c.readLoop(transport)

	return nil
}

// Disconnect closes the connection and fails all of its pending calls
// and streams with a connection-closed error. Disconnecting an already
// disconnected connection is a no-op.
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosing
	transport := c.transport
	c.transport = nil
	c.mu.Unlock()

	err := transport.Close()

	c.mu.Lock()
	c.state = StateDisconnected
	c.mu.Unlock()

	c.demux.connectionClosed(c, ErrConnectionClosed)

	if c.cfg.logger != nil {
		c.cfg.logger.Debug("disconnected", slog.String("url", c.url))
	}

	return err
}

// Scope runs fn with the connection held as a scoped resource: entry
// connects only if disconnected, exit always disconnects, even when fn
// returns an error. An inner Scope on an already open connection is a
// no-op on entry, but its exit still closes the connection for any
// enclosing scope.
func (c *Connection) Scope(ctx context.Context, fn func(*Connection) error) error {
	if !c.Connected() {
		if err := c.Connect(ctx); err != nil {
			return err
		}
	}
	defer c.Disconnect()
	return fn(c)
}

// send writes one message through the transport. Fails fast when the
// connection is not established.
func (c *Connection) send(ctx context.Context, msg *ClientToServerMessage) error {
	c.mu.Lock()
	transport := c.transport
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected {
		return ErrConnectionClosed
	}

	if c.cfg.onSend != nil {
		c.cfg.onSend(msg)
	}
	if c.cfg.logger != nil {
		c.cfg.logger.Debug("sending message",
			slog.String("type", msg.Type),
			slog.String("endpoint", msg.Endpoint),
			slog.String("call_id", msg.CallID),
			slog.String("channel_id", msg.ChannelID),
		)
	}

	return transport.Send(ctx, msg)
}

// readLoop reads messages until the transport fails, then routes the
// failure to every waiter still registered on this connection. A failure
// observed while a local Disconnect is in progress is not an error; the
// Disconnect path owns the fan-out in that case.
func (c *Connection) readLoop(transport Transport) {
	for {
		msg, err := transport.Receive(context.Background())
		if err != nil {
			c.mu.Lock()
			if c.state != StateConnected {
				// Local close in progress
				c.mu.Unlock()
				return
			}
			c.state = StateDisconnected
			c.transport = nil
			c.mu.Unlock()

			transport.Close()
			c.demux.connectionClosed(c, &WebsocketError{Message: "connection closed", Err: err})
			return
		}

		if c.cfg.onReceive != nil {
			c.cfg.onReceive(msg)
		}
		if c.cfg.logger != nil {
			c.cfg.logger.Debug("received message",
				slog.String("type", msg.Type),
				slog.String("call_id", msg.CallID),
				slog.String("channel_id", msg.ChannelID),
			)
		}

		c.demux.dispatch(msg)
	}
}
