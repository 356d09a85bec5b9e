package lmwire

import "log/slog"

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	apiToken    string
	apiTokenSet bool
	httpHeaders map[string]string
	xAPIKey     string

	logger    *slog.Logger
	onSend    func(*ClientToServerMessage)
	onReceive func(*ServerToClientMessage)
	dial      DialFunc
}

// WithAPIToken sets the API token used for the connection auth handshake.
// An explicitly empty token means "no token": the client falls back to a
// guest identity without consulting the environment.
func WithAPIToken(token string) ClientOption {
	return func(c *clientConfig) {
		c.apiToken = token
		c.apiTokenSet = true
	}
}

// WithHTTPHeaders sets additional HTTP headers sent with every websocket
// handshake. Entries override any environment-derived X-API-Key header.
func WithHTTPHeaders(headers map[string]string) ClientOption {
	return func(c *clientConfig) {
		c.httpHeaders = headers
	}
}

// WithXAPIKey is a shortcut for setting the X-API-Key handshake header.
// It overrides both the environment and any WithHTTPHeaders entry for
// the same key.
func WithXAPIKey(key string) ClientOption {
	return func(c *clientConfig) {
		c.xAPIKey = key
	}
}

// WithDialFunc replaces the websocket dialer used to open connections.
// This is useful for testing or custom transport implementations.
func WithDialFunc(dial DialFunc) ClientOption {
	return func(c *clientConfig) {
		c.dial = dial
	}
}

// WithLogger sets a structured logger for the client and its connections.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithOnSend sets a callback invoked before each message is sent.
func WithOnSend(fn func(*ClientToServerMessage)) ClientOption {
	return func(c *clientConfig) {
		c.onSend = fn
	}
}

// WithOnReceive sets a callback invoked after each message is received.
func WithOnReceive(fn func(*ServerToClientMessage)) ClientOption {
	return func(c *clientConfig) {
		c.onReceive = fn
	}
}
