package lmwire

import (
	"context"
	"encoding/json"
	"iter"
	"sync"
)

// ChannelMessage is one server-push payload on a streaming channel. The
// payload is left as raw JSON for the caller to decode.
type ChannelMessage struct {
	Message json.RawMessage
}

// Decode unmarshals the payload into v.
func (m *ChannelMessage) Decode(v interface{}) error {
	return json.Unmarshal(m.Message, v)
}

// ChannelStream provides consuming access to a streaming channel. The
// sequence is unbounded until the server closes the channel, the caller
// cancels, or the connection closes; it cannot be restarted.
type ChannelStream struct {
	d        *dispatcher
	conn     *Connection
	id       string
	endpoint string

	mu       sync.Mutex
	messages chan *ChannelMessage
	done     chan struct{}
	err      error
	finished bool

	closeOnce sync.Once
}

func newChannelStream(d *dispatcher, conn *Connection, id, endpoint string) *ChannelStream {
	return &ChannelStream{
		d:        d,
		conn:     conn,
		id:       id,
		endpoint: endpoint,
		messages: make(chan *ChannelMessage, 100),
		done:     make(chan struct{}),
	}
}

// Next returns the next message, or nil once the channel has closed
// cleanly. Returns an error if the channel failed or was cancelled.
// The context can be used to cancel waiting for the next message.
func (s *ChannelStream) Next(ctx context.Context) (*ChannelMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg := <-s.messages:
		return msg, nil
	case <-s.done:
		// Drain any remaining messages
		select {
		case msg := <-s.messages:
			return msg, nil
		default:
		}
		return nil, s.Err()
	}
}

// Messages returns an iterator over all messages in the stream.
func (s *ChannelStream) Messages(ctx context.Context) iter.Seq2[*ChannelMessage, error] {
	return func(yield func(*ChannelMessage, error) bool) {
		for {
			msg, err := s.Next(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if msg == nil {
				return
			}
			if !yield(msg, nil) {
				return
			}
		}
	}
}

// Err returns the terminal error, or nil if the stream is still live or
// closed cleanly.
func (s *ChannelStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Send writes a client payload onto the open channel, for endpoints
// that accept mid-stream input. Fails once the stream has terminated.
func (s *ChannelStream) Send(ctx context.Context, message interface{}) error {
	select {
	case <-s.done:
		if err := s.Err(); err != nil {
			return err
		}
		return ErrConnectionClosed
	default:
	}
	return s.conn.send(ctx, NewChannelSendMessage(s.id, message))
}

// Cancel deregisters the stream so late frames are dropped and releases
// any blocked consumer with ErrCallCancelled. Safe to call more than
// once, and a no-op after the stream has finished.
func (s *ChannelStream) Cancel() {
	s.d.cancelStream(s.id)
}

// handleMessage pushes one server frame into the stream.
func (s *ChannelStream) handleMessage(msg *ServerToClientMessage) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// Block until the message is consumed (backpressure)
	select {
	case s.messages <- &ChannelMessage{Message: msg.Message}:
	case <-s.done:
		// Stream was closed
	}
}

// handleClose terminates the stream. A nil error is a clean server-side
// close; otherwise the error is surfaced to the consumer. Exactly-once.
// Only done is closed: the messages channel stays open so a producer
// blocked on backpressure can never send on a closed channel, and Next
// drains whatever is still buffered before reporting the end.
func (s *ChannelStream) handleClose(err error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.finished = true
		s.err = err
		s.mu.Unlock()

		close(s.done)
	})
}
