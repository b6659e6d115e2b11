package testing

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/opd-ai/oscbridge/interfaces"
	"github.com/opd-ai/oscbridge/message"
	"github.com/sirupsen/logrus"
)

// ErrPortInUse is returned when opening a second simulated receiver on a port.
var ErrPortInUse = errors.New("simulated port already bound")

// ErrSenderClosed is returned when sending on a closed simulated sender.
var ErrSenderClosed = errors.New("simulated sender closed")

// SentRecord represents a message sent through a simulated sender
type SentRecord struct {
	Address   string
	Arguments []message.Argument
	Timestamp int64
}

// SimulatedTransport implements interfaces.ITransport in memory for testing.
// A message sent to a port with an open simulated receiver is delivered to it,
// regardless of host.
type SimulatedTransport struct {
	mu        sync.RWMutex
	senders   []*SimulatedSender
	receivers map[int]*SimulatedReceiver
	openErr   error
	config    *interfaces.TransportConfig
}

// NewSimulatedTransport creates a new in-memory transport for testing
func NewSimulatedTransport(config *interfaces.TransportConfig) *SimulatedTransport {
	logrus.Warn("SIMULATION FUNCTION - NOT A REAL OPERATION")
	logrus.WithFields(logrus.Fields{
		"function": "NewSimulatedTransport",
	}).Info("Creating simulated transport for testing")

	if config == nil {
		config = &interfaces.TransportConfig{UseSimulation: true}
	}
	return &SimulatedTransport{
		receivers: make(map[int]*SimulatedReceiver),
		config:    config,
	}
}

// IsSimulation returns true.
func (s *SimulatedTransport) IsSimulation() bool {
	return true
}

// FailOpen makes every subsequent OpenSender and OpenReceiver call fail with
// err until it is called again with nil.
func (s *SimulatedTransport) FailOpen(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErr = err
}

// OpenSender implements interfaces.ITransport.OpenSender.
func (s *SimulatedTransport) OpenSender(host string, port int) (interfaces.ISender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.openErr != nil {
		return nil, fmt.Errorf("simulated open sender %s:%d: %w", host, port, s.openErr)
	}

	sender := &SimulatedSender{
		transport: s,
		host:      host,
		port:      port,
	}
	s.senders = append(s.senders, sender)

	logrus.WithFields(logrus.Fields{
		"function": "SimulatedTransport.OpenSender",
		"host":     host,
		"port":     port,
		"total":    len(s.senders),
	}).Debug("Simulated sender opened")

	return sender, nil
}

// OpenReceiver implements interfaces.ITransport.OpenReceiver.
func (s *SimulatedTransport) OpenReceiver(port int) (interfaces.IReceiver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.openErr != nil {
		return nil, fmt.Errorf("simulated open receiver %d: %w", port, s.openErr)
	}
	if _, bound := s.receivers[port]; bound {
		return nil, fmt.Errorf("%w: %d", ErrPortInUse, port)
	}

	receiver := &SimulatedReceiver{transport: s, port: port}
	s.receivers[port] = receiver

	logrus.WithFields(logrus.Fields{
		"function": "SimulatedTransport.OpenReceiver",
		"port":     port,
	}).Debug("Simulated receiver opened")

	return receiver, nil
}

// Senders returns every sender opened so far, closed ones included.
func (s *SimulatedTransport) Senders() []*SimulatedSender {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*SimulatedSender(nil), s.senders...)
}

// Receiver returns the open receiver bound to port, or nil.
func (s *SimulatedTransport) Receiver(port int) *SimulatedReceiver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.receivers[port]
}

func (s *SimulatedTransport) release(port int, r *SimulatedReceiver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.receivers[port] == r {
		delete(s.receivers, port)
	}
}

// SimulatedSender records every message it sends.
type SimulatedSender struct {
	transport *SimulatedTransport
	host      string
	port      int

	mu     sync.Mutex
	sent   []SentRecord
	closed bool
}

// Send implements interfaces.ISender.Send.
func (s *SimulatedSender) Send(address string, args []message.Argument) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSenderClosed
	}
	s.sent = append(s.sent, SentRecord{
		Address:   address,
		Arguments: append([]message.Argument(nil), args...),
		Timestamp: time.Now().UnixNano(),
	})
	s.mu.Unlock()

	if r := s.transport.Receiver(s.port); r != nil {
		values := make([]interface{}, len(args))
		for i, arg := range args {
			values[i] = arg.Value()
		}
		r.Inject(address, values)
	}
	return nil
}

// RemoteAddr implements interfaces.ISender.RemoteAddr.
func (s *SimulatedSender) RemoteAddr() net.Addr {
	return &net.UDPAddr{IP: net.ParseIP(s.host), Port: s.port}
}

// Close implements interfaces.ISender.Close.
func (s *SimulatedSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Host returns the destination host.
func (s *SimulatedSender) Host() string {
	return s.host
}

// Port returns the destination port.
func (s *SimulatedSender) Port() int {
	return s.port
}

// Closed reports whether Close was called.
func (s *SimulatedSender) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Sent returns a copy of the messages sent so far.
func (s *SimulatedSender) Sent() []SentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentRecord(nil), s.sent...)
}

// SimulatedReceiver delivers injected packets to its handler synchronously.
type SimulatedReceiver struct {
	transport *SimulatedTransport
	port      int

	mu      sync.RWMutex
	handler interfaces.PacketHandler
	closed  bool
}

// OnPacket implements interfaces.IReceiver.OnPacket.
func (r *SimulatedReceiver) OnPacket(handler interfaces.PacketHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = handler
}

// LocalAddr implements interfaces.IReceiver.LocalAddr.
func (r *SimulatedReceiver) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4zero, Port: r.port}
}

// Close implements interfaces.IReceiver.Close.
func (r *SimulatedReceiver) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.transport.release(r.port, r)
	return nil
}

// Closed reports whether Close was called.
func (r *SimulatedReceiver) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Inject simulates the arrival of a decoded packet. It reports whether a
// handler received it.
func (r *SimulatedReceiver) Inject(address string, values []interface{}) bool {
	r.mu.RLock()
	handler, closed := r.handler, r.closed
	r.mu.RUnlock()

	if closed || handler == nil {
		return false
	}
	handler(address, values)
	return true
}
