package lmwire

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// dispatcher owns the correlation tables pairing outbound calls and
// channel creations with their inbound messages. Entries are registered
// by callers and resolved only from a connection's read loop; each entry
// resolves exactly once, whether by response, cancellation, or the
// owning connection closing.
type dispatcher struct {
	logger *slog.Logger

	mu      sync.Mutex
	calls   map[string]*pendingCall
	streams map[string]*ChannelStream
}

func newDispatcher(logger *slog.Logger) *dispatcher {
	return &dispatcher{
		logger:  logger,
		calls:   make(map[string]*pendingCall),
		streams: make(map[string]*ChannelStream),
	}
}

// pendingCall is a single-resolution waiter for one rpc call.
type pendingCall struct {
	conn   *Connection
	result chan *ServerToClientMessage
	failed chan error
	once   sync.Once
}

func (p *pendingCall) resolve(msg *ServerToClientMessage) {
	p.once.Do(func() { p.result <- msg })
}

func (p *pendingCall) fail(err error) {
	p.once.Do(func() { p.failed <- err })
}

// RunCall sends an rpcCall on conn and blocks until the matching
// rpcResult or rpcError arrives, the context is done, or the connection
// closes. A call abandoned via ctx is deregistered so a late response is
// dropped harmlessly.
func (d *dispatcher) RunCall(ctx context.Context, conn *Connection, endpoint string, param interface{}) (json.RawMessage, error) {
	callID := uuid.New().String()

	pc := &pendingCall{
		conn:   conn,
		result: make(chan *ServerToClientMessage, 1),
		failed: make(chan error, 1),
	}
	d.mu.Lock()
	d.calls[callID] = pc
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.calls, callID)
		d.mu.Unlock()
	}()

	if err := conn.send(ctx, NewRpcCallMessage(callID, endpoint, param)); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-pc.failed:
		return nil, err
	case msg := <-pc.result:
		if msg.IsRpcError() {
			return nil, &RPCError{
				Namespace: string(conn.namespace),
				Endpoint:  endpoint,
				Message:   msg.Error.text(),
			}
		}
		return msg.Result, nil
	}
}

// RunStream sends a channelCreate on conn and returns the stream that
// subsequent channelSend messages are pushed into. The stream stays
// registered until cancelled, closed by the server, or the connection
// closes.
func (d *dispatcher) RunStream(ctx context.Context, conn *Connection, endpoint string, creationParam interface{}) (*ChannelStream, error) {
	channelID := uuid.New().String()
	stream := newChannelStream(d, conn, channelID, endpoint)

	d.mu.Lock()
	d.streams[channelID] = stream
	d.mu.Unlock()

	if err := conn.send(ctx, NewChannelCreateMessage(channelID, endpoint, creationParam)); err != nil {
		d.removeStream(channelID)
		return nil, err
	}

	return stream, nil
}

// dispatch routes one inbound message to its registered waiter. Called
// only from connection read loops. Unknown correlation ids are logged
// and dropped.
func (d *dispatcher) dispatch(msg *ServerToClientMessage) {
	switch {
	case msg.IsRpcResult(), msg.IsRpcError():
		d.mu.Lock()
		pc, ok := d.calls[msg.CallID]
		d.mu.Unlock()
		if !ok {
			d.logDropped(msg)
			return
		}
		pc.resolve(msg)

	case msg.IsChannelSend():
		stream, ok := d.lookupStream(msg.ChannelID)
		if !ok {
			d.logDropped(msg)
			return
		}
		stream.handleMessage(msg)

	case msg.IsChannelClose():
		stream, ok := d.lookupStream(msg.ChannelID)
		if !ok {
			d.logDropped(msg)
			return
		}
		d.removeStream(msg.ChannelID)
		stream.handleClose(nil)

	case msg.IsChannelError():
		stream, ok := d.lookupStream(msg.ChannelID)
		if !ok {
			d.logDropped(msg)
			return
		}
		d.removeStream(msg.ChannelID)
		stream.handleClose(&RPCError{
			Namespace: string(stream.conn.namespace),
			Endpoint:  stream.endpoint,
			Message:   msg.Error.text(),
		})

	case msg.IsCommunicationWarning():
		if d.logger != nil {
			d.logger.Warn("server communication warning",
				slog.String("message", string(msg.Message)),
			)
		}

	default:
		d.logDropped(msg)
	}
}

// connectionClosed fails every pending call and terminates every live
// stream registered on conn. Waiters on other connections are untouched.
func (d *dispatcher) connectionClosed(conn *Connection, err error) {
	d.mu.Lock()
	var calls []*pendingCall
	for id, pc := range d.calls {
		if pc.conn == conn {
			delete(d.calls, id)
			calls = append(calls, pc)
		}
	}
	var streams []*ChannelStream
	for id, stream := range d.streams {
		if stream.conn == conn {
			delete(d.streams, id)
			streams = append(streams, stream)
		}
	}
	d.mu.Unlock()

	for _, pc := range calls {
		pc.fail(err)
	}
	for _, stream := range streams {
		stream.handleClose(err)
	}
}

// cancelStream deregisters a stream so late frames are dropped, then
// releases its consumer with a cancellation error. No-op if the stream
// already finished.
func (d *dispatcher) cancelStream(channelID string) {
	stream, ok := d.lookupStream(channelID)
	if !ok {
		return
	}
	d.removeStream(channelID)
	stream.handleClose(ErrCallCancelled)
}

func (d *dispatcher) lookupStream(channelID string) (*ChannelStream, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	stream, ok := d.streams[channelID]
	return stream, ok
}

func (d *dispatcher) removeStream(channelID string) {
	d.mu.Lock()
	delete(d.streams, channelID)
	d.mu.Unlock()
}

func (d *dispatcher) logDropped(msg *ServerToClientMessage) {
	if d.logger != nil {
		d.logger.Debug("dropping message with no registered receiver",
			slog.String("type", msg.Type),
			slog.String("call_id", msg.CallID),
			slog.String("channel_id", msg.ChannelID),
		)
	}
}
