// file: internal/transport/in_memory_transport.go
package transport

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// InMemoryTransport implements the Transport interface using in-memory
// channels. It exists for testing, allowing two transport instances to
// communicate without actual I/O.
type InMemoryTransport struct {
	incomingMessages chan []byte
	outgoingMessages chan []byte

	closed    bool
	closeLock sync.RWMutex

	readLock  sync.Mutex
	writeLock sync.Mutex
}

// InMemoryTransportPair contains a pair of linked InMemoryTransport
// instances that communicate with each other.
type InMemoryTransportPair struct {
	ClientTransport *InMemoryTransport
	ServerTransport *InMemoryTransport
}

// NewInMemoryTransportPair creates two connected InMemoryTransport
// instances. Messages written to one can be read from the other. Useful for
// exercising server-client interactions in tests.
func NewInMemoryTransportPair() *InMemoryTransportPair {
	clientToServer := make(chan []byte, 100)
	serverToClient := make(chan []byte, 100)

	return &InMemoryTransportPair{
		ClientTransport: &InMemoryTransport{
			incomingMessages: serverToClient,
			outgoingMessages: clientToServer,
		},
		ServerTransport: &InMemoryTransport{
			incomingMessages: clientToServer,
			outgoingMessages: serverToClient,
		},
	}
}

// ReadMessage implements Transport.ReadMessage.
func (t *InMemoryTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	t.readLock.Lock()
	defer t.readLock.Unlock()

	t.closeLock.RLock()
	if t.closed {
		t.closeLock.RUnlock()
		return nil, NewClosedError("read")
	}
	t.closeLock.RUnlock()

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "context cancelled during read")
	case msg, ok := <-t.incomingMessages:
		if !ok {
			return nil, NewClosedError("read from closed channel")
		}
		if err := ValidateMessage(msg); err != nil {
			return nil, err
		}
		return msg, nil
	}
}

// WriteMessage implements Transport.WriteMessage.
func (t *InMemoryTransport) WriteMessage(ctx context.Context, message []byte) error {
	t.writeLock.Lock()
	defer t.writeLock.Unlock()

	t.closeLock.RLock()
	if t.closed {
		t.closeLock.RUnlock()
		return NewClosedError("write")
	}
	t.closeLock.RUnlock()

	if err := ValidateMessage(message); err != nil {
		return err
	}

	if len(message) > MaxMessageSize {
		return NewMessageSizeError(len(message), MaxMessageSize, message[:minInt(len(message), 100)])
	}

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "context cancelled during write")
	case t.outgoingMessages <- message:
		return nil
	}
}

// Close implements Transport.Close. The channels stay open so the paired
// transport can still drain buffered messages; subsequent operations on this
// side fail with a closed error.
func (t *InMemoryTransport) Close() error {
	t.closeLock.Lock()
	defer t.closeLock.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return nil
}

// CloseChannels explicitly closes both channels in the transport pair.
// Call only after both transports are done, typically in test cleanup.
func (p *InMemoryTransportPair) CloseChannels() {
	p.ServerTransport.closeLock.Lock()
	p.ClientTransport.closeLock.Lock()

	close(p.ServerTransport.outgoingMessages)
	close(p.ClientTransport.outgoingMessages)

	p.ClientTransport.closeLock.Unlock()
	p.ServerTransport.closeLock.Unlock()
}
