package lmwire

import (
	"context"
	"errors"
	"net"
	"time"
)

// defaultLocalHosts are the conventional local server addresses probed
// when no API host is supplied.
var defaultLocalHosts = []string{
	"localhost:1234",
	"127.0.0.1:1234",
}

// Client is the top-level entry point. It resolves authentication and
// headers once at construction, owns one dispatcher, and composes the
// fixed set of namespace sessions, all sharing the same auth identity
// and handshake headers.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	apiHost string
	auth    *AuthDetails
	headers map[string]string
	cfg     clientConfig
	demux   *dispatcher

	system    *Session
	llm       *Session
	embedding *Session
	files     *Session
}

// NewClient creates a client for the given API host ("host:port"). An
// empty host triggers a best-effort probe for a locally running server.
// A malformed API token fails here, before any network activity.
func NewClient(apiHost string, opts ...ClientOption) (*Client, error) {
	cfg := clientConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	env := loadEnvConfig()

	auth, err := authFromToken(cfg.apiToken, cfg.apiTokenSet, env.apiToken)
	if err != nil {
		return nil, err
	}

	if apiHost == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		apiHost, err = FindDefaultLocalAPIHost(ctx)
		if err != nil {
			return nil, err
		}
	}

	c := &Client{
		apiHost: apiHost,
		auth:    auth,
		headers: assembleHeaders(env.xAPIKey, cfg.httpHeaders, cfg.xAPIKey),
		cfg:     cfg,
		demux:   newDispatcher(cfg.logger),
	}
	c.system = newSession(c, NamespaceSystem)
	c.llm = newSession(c, NamespaceLLM)
	c.embedding = newSession(c, NamespaceEmbedding)
	c.files = newSession(c, NamespaceFiles)

	return c, nil
}

// FindDefaultLocalAPIHost probes the conventional local server addresses
// and returns the first that accepts a TCP connection. Returns
// ErrNoLocalAPIHost when nothing answers.
func FindDefaultLocalAPIHost(ctx context.Context) (string, error) {
	var dialer net.Dialer
	for _, host := range defaultLocalHosts {
		conn, err := dialer.DialContext(ctx, "tcp", host)
		if err != nil {
			continue
		}
		conn.Close()
		return host, nil
	}
	return "", ErrNoLocalAPIHost
}

// APIHost returns the host this client connects to.
func (c *Client) APIHost() string {
	return c.apiHost
}

// System returns the system namespace session.
func (c *Client) System() *Session {
	return c.system
}

// LLM returns the llm namespace session.
func (c *Client) LLM() *Session {
	return c.llm
}

// Embedding returns the embedding namespace session.
func (c *Client) Embedding() *Session {
	return c.embedding
}

// Files returns the files namespace session.
func (c *Client) Files() *Session {
	return c.files
}

// Close closes every session. Idempotent.
func (c *Client) Close() error {
	return errors.Join(
		c.system.Close(),
		c.llm.Close(),
		c.embedding.Close(),
		c.files.Close(),
	)
}

// newConnection creates a fresh connection for a namespace endpoint,
// sharing the client's auth identity, headers, and dispatcher.
func (c *Client) newConnection(namespace Namespace) *Connection {
	url := "ws://" + c.apiHost + "/" + string(namespace)
	return NewConnection(url, namespace, c.auth, c.headers, c.demux, connectionConfig{
		logger:    c.cfg.logger,
		onSend:    c.cfg.onSend,
		onReceive: c.cfg.onReceive,
		dial:      c.cfg.dial,
	})
}
