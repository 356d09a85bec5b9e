package lmwire

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrAlreadyConnected = errors.New("lmwire: already connected")
	ErrConnectionClosed = errors.New("lmwire: connection closed")
	ErrCallCancelled    = errors.New("lmwire: call cancelled")
	ErrClientClosed     = errors.New("lmwire: client closed")
	ErrNoLocalAPIHost   = errors.New("lmwire: no local API host found")
)

// ValidationError reports a structurally invalid API token. It is always
// raised before any network activity.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lmwire: invalid API token: %s", e.Message)
}

// ConnectionError represents a transport-level failure while dialing,
// reading or writing the websocket.
type ConnectionError struct {
	Op  string
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("lmwire: %s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("lmwire: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// WebsocketError represents a protocol-level failure on an established
// connection, including remote-side closure while calls are pending.
type WebsocketError struct {
	Message string
	Err     error
}

func (e *WebsocketError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lmwire: websocket: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("lmwire: websocket: %s", e.Message)
}

func (e *WebsocketError) Unwrap() error {
	return e.Err
}

// RPCError represents a server-reported failure of a single remote call
// or channel.
type RPCError struct {
	Namespace string
	Endpoint  string
	Message   string
}

func (e *RPCError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("lmwire: rpc %s/%s: %s", e.Namespace, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("lmwire: rpc %s: %s", e.Namespace, e.Message)
}
