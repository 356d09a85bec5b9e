package lmwire

import "encoding/json"

// Namespace names the logical API partition a session is bound to.
// Each namespace is served over its own websocket endpoint path.
type Namespace string

const (
	NamespaceSystem    Namespace = "system"
	NamespaceLLM       Namespace = "llm"
	NamespaceEmbedding Namespace = "embedding"
	NamespaceFiles     Namespace = "files"
)

// ConnectionState represents the lifecycle state of a Connection.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateClosing      ConnectionState = "closing"
)

// --- Messages (Client -> Server) ---

// ClientToServerMessage represents a message sent to the server. RPC
// messages correlate on CallID, channel messages on ChannelID.
type ClientToServerMessage struct {
	Type string `json:"type"`

	// RPC fields
	CallID    string      `json:"callId,omitempty"`
	Endpoint  string      `json:"endpoint,omitempty"`
	Parameter interface{} `json:"parameter,omitempty"`

	// Channel fields
	ChannelID         string      `json:"channelId,omitempty"`
	CreationParameter interface{} `json:"creationParameter,omitempty"`
	Message           interface{} `json:"message,omitempty"`
}

// NewRpcCallMessage creates an rpcCall message.
func NewRpcCallMessage(callID, endpoint string, param interface{}) *ClientToServerMessage {
	return &ClientToServerMessage{
		Type:      "rpcCall",
		CallID:    callID,
		Endpoint:  endpoint,
		Parameter: param,
	}
}

// NewChannelCreateMessage creates a channelCreate message opening a
// streaming channel on the given endpoint.
func NewChannelCreateMessage(channelID, endpoint string, creationParam interface{}) *ClientToServerMessage {
	return &ClientToServerMessage{
		Type:              "channelCreate",
		ChannelID:         channelID,
		Endpoint:          endpoint,
		CreationParameter: creationParam,
	}
}

// NewChannelSendMessage creates a channelSend message carrying a
// client-to-server payload on an open channel.
func NewChannelSendMessage(channelID string, message interface{}) *ClientToServerMessage {
	return &ClientToServerMessage{
		Type:      "channelSend",
		ChannelID: channelID,
		Message:   message,
	}
}

// --- Messages (Server -> Client) ---

// ErrorPayload is the server's serialized error shape.
type ErrorPayload struct {
	Title string `json:"title"`
	Cause string `json:"cause,omitempty"`
}

func (p *ErrorPayload) text() string {
	if p == nil {
		return "unknown error"
	}
	if p.Cause != "" {
		return p.Title + ": " + p.Cause
	}
	return p.Title
}

// ServerToClientMessage represents a message received from the server.
// Domain payloads (Result, Message) are left as raw JSON for the caller
// to decode.
type ServerToClientMessage struct {
	Type string `json:"type"`

	// Correlation ids
	CallID    string `json:"callId,omitempty"`
	ChannelID string `json:"channelId,omitempty"`

	// rpcResult / channelSend payloads
	Result  json.RawMessage `json:"result,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`

	// rpcError / channelError payload
	Error *ErrorPayload `json:"error,omitempty"`
}

// CorrelationID returns the id this message should be routed by,
// whichever of the two correlation fields is populated.
func (m *ServerToClientMessage) CorrelationID() string {
	if m.CallID != "" {
		return m.CallID
	}
	return m.ChannelID
}

// IsRpcResult returns true if this is an rpcResult message.
func (m *ServerToClientMessage) IsRpcResult() bool {
	return m.Type == "rpcResult"
}

// IsRpcError returns true if this is an rpcError message.
func (m *ServerToClientMessage) IsRpcError() bool {
	return m.Type == "rpcError"
}

// IsChannelSend returns true if this is a channelSend message.
func (m *ServerToClientMessage) IsChannelSend() bool {
	return m.Type == "channelSend"
}

// IsChannelClose returns true if this is a channelClose message.
func (m *ServerToClientMessage) IsChannelClose() bool {
	return m.Type == "channelClose"
}

// IsChannelError returns true if this is a channelError message.
func (m *ServerToClientMessage) IsChannelError() bool {
	return m.Type == "channelError"
}

// IsCommunicationWarning returns true if this is a communicationWarning
// message. These are advisory and never correlate to a pending call.
func (m *ServerToClientMessage) IsCommunicationWarning() bool {
	return m.Type == "communicationWarning"
}
