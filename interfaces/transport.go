package interfaces

import (
	"net"
	"time"

	"github.com/opd-ai/oscbridge/message"
)

// PacketHandler is called for every packet a Receiver decodes. values hold the
// decoded arguments in wire order and may contain types outside the closed
// argument set; the caller decides what to keep.
type PacketHandler func(address string, values []interface{})

// ISender is an open outbound handle to one destination.
type ISender interface {
	// Send encodes and transmits one message.
	Send(address string, args []message.Argument) error

	// RemoteAddr returns the destination address.
	RemoteAddr() net.Addr

	// Close releases the handle. Closing twice returns nil.
	Close() error
}

// IReceiver is an open inbound handle bound to a local port.
type IReceiver interface {
	// OnPacket registers the callback invoked for each decoded packet.
	// Packets arriving before a callback is registered are discarded.
	OnPacket(handler PacketHandler)

	// LocalAddr returns the bound address.
	LocalAddr() net.Addr

	// Close stops delivery and releases the port. Closing twice returns nil.
	Close() error
}

// ITransport opens sender and receiver handles.
type ITransport interface {
	// OpenSender opens an outbound handle to host:port.
	OpenSender(host string, port int) (ISender, error)

	// OpenReceiver opens an inbound handle bound to port.
	OpenReceiver(port int) (IReceiver, error)

	// IsSimulation returns true if this is an in-memory implementation
	IsSimulation() bool
}

// TransportConfig holds configuration for transport implementations
type TransportConfig struct {
	// UseSimulation determines whether to use the in-memory or UDP transport
	UseSimulation bool

	// ReadBufferSize is the receive buffer size in bytes
	ReadBufferSize int

	// ReadTimeout bounds each blocking read so receivers notice Close promptly
	ReadTimeout time.Duration
}
