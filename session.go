package lmwire

import (
	"context"
	"encoding/json"
	"sync"
)

// Session exposes the call and stream operations of one namespace. It
// owns the lifecycle of its Connection: sessions connect implicitly on
// first use, may be disconnected and transparently reconnected, and
// create a fresh Connection for every (re)connect.
//
// Unlike implicit connection, *explicit* reconnection of an already
// connected session fails with ErrAlreadyConnected, matching the
// Connection-level contract.
type Session struct {
	client    *Client
	namespace Namespace

	// connectMu serializes (re)connection so concurrent implicit
	// connects cannot race to create two connections.
	connectMu sync.Mutex

	mu   sync.Mutex
	conn *Connection
}

func newSession(client *Client, namespace Namespace) *Session {
	return &Session{client: client, namespace: namespace}
}

// Namespace returns the namespace this session is bound to.
func (s *Session) Namespace() Namespace {
	return s.namespace
}

// Connected reports whether the session currently holds an established
// connection.
func (s *Session) Connected() bool {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	return conn != nil && conn.Connected()
}

// Connect establishes a fresh connection for this session. Fails with
// ErrAlreadyConnected if the session is already connected.
func (s *Session) Connect(ctx context.Context) error {
	_, err := s.connect(ctx)
	return err
}

func (s *Session) connect(ctx context.Context) (*Connection, error) {
	s.connectMu.Lock()
	defer s.connectMu.Unlock()

	if conn := s.currentConn(); conn != nil && conn.Connected() {
		return nil, ErrAlreadyConnected
	}
	return s.reconnect(ctx)
}

// ensureConnected returns the live connection, connecting implicitly if
// the session is disconnected.
func (s *Session) ensureConnected(ctx context.Context) (*Connection, error) {
	s.connectMu.Lock()
	defer s.connectMu.Unlock()

	if conn := s.currentConn(); conn != nil && conn.Connected() {
		return conn, nil
	}
	return s.reconnect(ctx)
}

// reconnect dials a fresh connection; a stale one from a previous cycle
// is discarded, never reused. Caller holds connectMu.
func (s *Session) reconnect(ctx context.Context) (*Connection, error) {
	conn := s.client.newConnection(s.namespace)
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	return conn, nil
}

func (s *Session) currentConn() *Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Disconnect closes the session's connection. Disconnecting an already
// disconnected session is a no-op.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Disconnect()
}

// Close disconnects and releases the underlying connection, so a
// subsequent call dials fresh rather than reusing the old instance.
func (s *Session) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Disconnect()
}

// Scope runs fn with the session held as a scoped resource, with the
// same contract as Connection.Scope: entry connects only if needed, exit
// always disconnects, and a nested scope's exit closes the session for
// any enclosing scope.
func (s *Session) Scope(ctx context.Context, fn func(*Session) error) error {
	if !s.Connected() {
		if err := s.Connect(ctx); err != nil {
			return err
		}
	}
	defer s.Disconnect()
	return fn(s)
}

// RemoteCall performs a request/response call against an endpoint in
// this session's namespace, connecting implicitly if needed.
func (s *Session) RemoteCall(ctx context.Context, endpoint string, param interface{}) (json.RawMessage, error) {
	conn, err := s.ensureConnected(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.demux.RunCall(ctx, conn, endpoint, param)
}

// RemoteStream opens a streaming channel against an endpoint in this
// session's namespace, connecting implicitly if needed.
func (s *Session) RemoteStream(ctx context.Context, endpoint string, creationParam interface{}) (*ChannelStream, error) {
	conn, err := s.ensureConnected(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.demux.RunStream(ctx, conn, endpoint, creationParam)
}
