package lmwire

import (
	"encoding/json"
	"testing"
)

func TestAuthDetails_WireShape(t *testing.T) {
	auth := &AuthDetails{
		AuthVersion:      1,
		ClientIdentifier: "abcDEF78",
		ClientPasskey:    "abcDEF7890abcDEF7890",
	}

	data, err := json.Marshal(auth)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if decoded["authVersion"] != float64(1) {
		t.Errorf("authVersion = %v, want 1", decoded["authVersion"])
	}
	if decoded["clientIdentifier"] != "abcDEF78" {
		t.Errorf("clientIdentifier = %v", decoded["clientIdentifier"])
	}
	if decoded["clientPasskey"] != "abcDEF7890abcDEF7890" {
		t.Errorf("clientPasskey = %v", decoded["clientPasskey"])
	}
}

func TestNewRpcCallMessage(t *testing.T) {
	msg := NewRpcCallMessage("call-1", "listDownloadedModels", map[string]string{"k": "v"})

	if msg.Type != "rpcCall" {
		t.Errorf("Type = %s, want rpcCall", msg.Type)
	}
	if msg.CallID != "call-1" {
		t.Errorf("CallID = %s, want call-1", msg.CallID)
	}
	if msg.Endpoint != "listDownloadedModels" {
		t.Errorf("Endpoint = %s", msg.Endpoint)
	}
}

func TestNewChannelCreateMessage(t *testing.T) {
	msg := NewChannelCreateMessage("chan-1", "predict", nil)

	if msg.Type != "channelCreate" {
		t.Errorf("Type = %s, want channelCreate", msg.Type)
	}
	if msg.ChannelID != "chan-1" {
		t.Errorf("ChannelID = %s, want chan-1", msg.ChannelID)
	}
	if msg.CallID != "" {
		t.Errorf("CallID = %s, want empty", msg.CallID)
	}
}

func TestServerToClientMessage_CorrelationID(t *testing.T) {
	rpc := &ServerToClientMessage{Type: "rpcResult", CallID: "call-1"}
	if rpc.CorrelationID() != "call-1" {
		t.Errorf("CorrelationID = %s, want call-1", rpc.CorrelationID())
	}

	channel := &ServerToClientMessage{Type: "channelSend", ChannelID: "chan-1"}
	if channel.CorrelationID() != "chan-1" {
		t.Errorf("CorrelationID = %s, want chan-1", channel.CorrelationID())
	}
}

func TestServerToClientMessage_Predicates(t *testing.T) {
	cases := []struct {
		typ  string
		pred func(*ServerToClientMessage) bool
	}{
		{"rpcResult", (*ServerToClientMessage).IsRpcResult},
		{"rpcError", (*ServerToClientMessage).IsRpcError},
		{"channelSend", (*ServerToClientMessage).IsChannelSend},
		{"channelClose", (*ServerToClientMessage).IsChannelClose},
		{"channelError", (*ServerToClientMessage).IsChannelError},
		{"communicationWarning", (*ServerToClientMessage).IsCommunicationWarning},
	}
	for _, tc := range cases {
		msg := &ServerToClientMessage{Type: tc.typ}
		if !tc.pred(msg) {
			t.Errorf("predicate for %s returned false", tc.typ)
		}
	}
}

func TestErrorPayload_Text(t *testing.T) {
	if got := (&ErrorPayload{Title: "bad request"}).text(); got != "bad request" {
		t.Errorf("text() = %s", got)
	}
	withCause := &ErrorPayload{Title: "bad request", Cause: "missing field"}
	if got := withCause.text(); got != "bad request: missing field" {
		t.Errorf("text() = %s", got)
	}
	var nilPayload *ErrorPayload
	if got := nilPayload.text(); got != "unknown error" {
		t.Errorf("text() = %s", got)
	}
}
