package lmwire

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"
)

// A structurally valid API token for tests.
const validAPIToken = "sk-lm-abcDEF78:abcDEF7890abcDEF7890"

// mockTransport implements Transport for testing.
type mockTransport struct {
	mu       sync.Mutex
	auth     *AuthDetails
	sent     []*ClientToServerMessage
	messages chan *ServerToClientMessage
	closed   bool
	sendErr  error

	// Channel signaled when a message is sent
	onSend chan *ClientToServerMessage
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		messages: make(chan *ServerToClientMessage, 100),
		onSend:   make(chan *ClientToServerMessage, 100),
	}
}

func (m *mockTransport) SendAuth(ctx context.Context, auth *AuthDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrConnectionClosed
	}
	m.auth = auth
	return nil
}

func (m *mockTransport) Send(ctx context.Context, msg *ClientToServerMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrConnectionClosed
	}
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)

	select {
	case m.onSend <- msg:
	default:
	}
	return nil
}

func (m *mockTransport) Receive(ctx context.Context) (*ServerToClientMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-m.messages:
		if !ok {
			return nil, ErrConnectionClosed
		}
		return msg, nil
	}
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.messages)
	}
	return nil
}

func (m *mockTransport) pushMessage(msg *ServerToClientMessage) {
	m.messages <- msg
}

func (m *mockTransport) authDetails() *AuthDetails {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.auth
}

func (m *mockTransport) getSent() []*ClientToServerMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

// waitForMessage waits for an outbound message and returns it.
func (m *mockTransport) waitForMessage(t *testing.T, timeout time.Duration) *ClientToServerMessage {
	t.Helper()
	select {
	case msg := <-m.onSend:
		return msg
	case <-time.After(timeout):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

// mockDialer hands out mock transports and records every dial.
type mockDialer struct {
	mu         sync.Mutex
	dialErr    error
	urls       []string
	headers    []http.Header
	transports []*mockTransport
}

func newMockDialer() *mockDialer {
	return &mockDialer{}
}

func (m *mockDialer) dial(ctx context.Context, url string, opts *DialOptions) (Transport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dialErr != nil {
		return nil, &ConnectionError{Op: "dial", URL: url, Err: m.dialErr}
	}

	transport := newMockTransport()
	m.urls = append(m.urls, url)
	if opts != nil {
		m.headers = append(m.headers, opts.HTTPHeader)
	} else {
		m.headers = append(m.headers, nil)
	}
	m.transports = append(m.transports, transport)
	return transport, nil
}

func (m *mockDialer) dialCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transports)
}

func (m *mockDialer) lastTransport(t *testing.T) *mockTransport {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.transports) == 0 {
		t.Fatal("no transport dialed")
	}
	return m.transports[len(m.transports)-1]
}

// newTestClient builds a client wired to dialer with a clean environment
// and a guest identity.
func newTestClient(t *testing.T, dialer *mockDialer, opts ...ClientOption) *Client {
	t.Helper()
	t.Setenv(envAPIToken, "")
	t.Setenv(envXAPIKey, "")

	opts = append([]ClientOption{WithDialFunc(dialer.dial)}, opts...)
	client, err := NewClient("localhost:1234", opts...)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return client
}

// newTestConnection builds a standalone connection wired to dialer.
func newTestConnection(dialer *mockDialer, demux *dispatcher) *Connection {
	return NewConnection("ws://localhost:1234/system", NamespaceSystem,
		guestAuthDetails(), map[string]string{}, demux,
		connectionConfig{dial: dialer.dial})
}
