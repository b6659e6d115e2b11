package endpoint

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/opd-ai/oscbridge/interfaces"
	"github.com/opd-ai/oscbridge/limits"
	"github.com/opd-ai/oscbridge/message"
	"github.com/opd-ai/oscbridge/metrics"
	"github.com/sirupsen/logrus"
)

// HandshakeAddress is the address of the liveness message sent once when a
// sender is first created.
const HandshakeAddress = "/test/alive/"

// Sink receives the converted arguments of every inbound packet and reports
// whether it accepted the packet.
type Sink func(address string, args []message.Argument) bool

// SenderName derives the stable name of the sender for host and port.
func SenderName(host string, port int) string {
	return "client-" + host + "-" + strconv.Itoa(port)
}

// ReceiverName derives the stable name of the receiver for port.
func ReceiverName(port int) string {
	return "server-" + strconv.Itoa(port)
}

type sender struct {
	name   string
	host   string
	port   int
	handle interfaces.ISender

	mu       sync.Mutex
	log      *Ring[string]
	messages *Ring[*message.Packet]
}

type receiver struct {
	name   string
	port   int
	handle interfaces.IReceiver

	mu      sync.Mutex
	log     *Ring[string]
	packets *Ring[*message.Packet]
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the clock used to timestamp log entries.
func WithClock(c Clock) Option {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogLength sets the number of entries kept per endpoint log.
func WithLogLength(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.logLength = n
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Registry) {
		r.recorder = metrics.OrNoop(rec)
	}
}

// Registry owns the named senders and receivers and their transport handles.
// It is the only component that opens or closes handles.
type Registry struct {
	transport interfaces.ITransport
	sink      Sink
	clock     Clock
	logLength int
	recorder  metrics.Recorder

	mu            sync.RWMutex
	senders       map[string]*sender
	senderOrder   []string
	receivers     map[string]*receiver
	receiverOrder []string
}

// NewRegistry creates an empty registry that opens handles on t and hands
// inbound packets to sink. A nil sink only records inbound packets.
func NewRegistry(t interfaces.ITransport, sink Sink, opts ...Option) *Registry {
	r := &Registry{
		transport: t,
		sink:      sink,
		clock:     RealClock{},
		logLength: limits.DefaultLogLength,
		recorder:  metrics.NoopRecorder{},
		senders:   make(map[string]*sender),
		receivers: make(map[string]*receiver),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureSender returns the name of the sender for host:port, opening it and
// sending the handshake message the first time. Later calls with the same
// host and port return the same name without touching the transport.
func (r *Registry) EnsureSender(host string, port int) (string, error) {
	name := SenderName(host, port)
	if err := limits.ValidatePort(port); err != nil {
		return "", newError("ensure sender", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.senders[name]; exists {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.EnsureSender",
			"endpoint": name,
		}).Debug("Duplicate sender address ignored")
		return name, nil
	}

	handle, err := r.transport.OpenSender(host, port)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.EnsureSender",
			"endpoint": name,
			"error":    err.Error(),
		}).Error("Failed to open sender")
		return "", newError("ensure sender", name, fmt.Errorf("%w: %w", ErrTransportOpen, err))
	}

	s := &sender{
		name:     name,
		host:     host,
		port:     port,
		handle:   handle,
		log:      NewRing[string](r.logLength),
		messages: NewRing[*message.Packet](r.logLength),
	}

	hello := message.NewPacket(HandshakeAddress, message.Text(host), message.Int(int32(port)), message.Text("OK"))
	if err := r.transmit(s, hello); err != nil {
		// The handshake is best effort; the endpoint stays usable.
		logrus.WithFields(logrus.Fields{
			"function": "Registry.EnsureSender",
			"endpoint": name,
			"error":    err.Error(),
		}).Warn("Handshake message failed")
	}

	r.senders[name] = s
	r.senderOrder = append(r.senderOrder, name)

	logrus.WithFields(logrus.Fields{
		"function": "Registry.EnsureSender",
		"endpoint": name,
		"senders":  len(r.senderOrder),
	}).Info("Sender created")

	return name, nil
}

// EnsureReceiver opens the receiver for port and wires its packets to the
// sink. A second request for the same port is logged and ignored.
func (r *Registry) EnsureReceiver(port int) (string, error) {
	name := ReceiverName(port)
	if err := limits.ValidatePort(port); err != nil {
		return "", newError("ensure receiver", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.receivers[name]; exists {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.EnsureReceiver",
			"port":     port,
		}).Info("Duplicate receiver port ignored")
		return name, nil
	}

	handle, err := r.transport.OpenReceiver(port)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.EnsureReceiver",
			"port":     port,
			"error":    err.Error(),
		}).Error("Failed to open receiver")
		return "", newError("ensure receiver", name, fmt.Errorf("%w: %w", ErrTransportOpen, err))
	}

	rc := &receiver{
		name:    name,
		port:    port,
		handle:  handle,
		log:     NewRing[string](r.logLength),
		packets: NewRing[*message.Packet](r.logLength),
	}
	handle.OnPacket(func(address string, values []interface{}) {
		r.receive(rc, address, values)
	})

	r.receivers[name] = rc
	r.receiverOrder = append(r.receiverOrder, name)

	logrus.WithFields(logrus.Fields{
		"function": "Registry.EnsureReceiver",
		"port":     port,
	}).Info("Receiver port opened")

	return name, nil
}

// receive converts an inbound packet, records it in the receiver history and
// passes it to the sink. Unsupported arguments are dropped individually.
func (r *Registry) receive(rc *receiver, address string, values []interface{}) {
	args, dropped := message.FromWireValues(values)
	for _, err := range dropped {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.receive",
			"endpoint": rc.name,
			"address":  address,
			"error":    err.Error(),
		}).Warn("Dropping argument with unknown data type")
		r.recorder.RecordDroppedArgument(context.Background(), "unsupported_type")
	}

	packet := &message.Packet{Address: address, Arguments: args}
	rc.mu.Lock()
	rc.packets.Push(packet)
	rc.log.Push(FormatEntry(r.clock.Now(), packet))
	rc.mu.Unlock()

	if r.sink == nil {
		return
	}
	if !r.sink(address, args) {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.receive",
			"endpoint": rc.name,
			"address":  address,
		}).Debug("Previous packet not yet consumed, skipping new packet")
	}
}

// SendTo sends one message through the named sender and records it in the
// sender's log.
func (r *Registry) SendTo(name, address string, args []message.Argument) error {
	r.mu.RLock()
	s, exists := r.senders[name]
	r.mu.RUnlock()

	if !exists {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.SendTo",
			"endpoint": name,
			"address":  address,
		}).Error("Can't send message, sender doesn't exist")
		return newError("send", name, ErrUnknownEndpoint)
	}

	if err := limits.ValidateAddress(address); err != nil {
		return newError("send", name, err)
	}

	return r.transmit(s, &message.Packet{Address: address, Arguments: args})
}

// transmit logs packet on s, evicting the oldest entry if needed, then sends it.
func (r *Registry) transmit(s *sender, packet *message.Packet) error {
	s.mu.Lock()
	s.log.Push(FormatEntry(r.clock.Now(), packet))
	s.messages.Push(packet)
	s.mu.Unlock()

	err := s.handle.Send(packet.Address, packet.Arguments)
	r.recorder.RecordSend(context.Background(), s.name, err)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Registry.transmit",
			"endpoint": s.name,
			"address":  packet.Address,
			"error":    err.Error(),
		}).Error("Transport send failed")
		return newError("send", s.name, err)
	}
	return nil
}

// SendToAll sends the message through every sender in creation order. A
// failure on one sender does not stop the others; all failures are returned.
func (r *Registry) SendToAll(address string, args []message.Argument) error {
	names := r.Senders()

	var errs []error
	for _, name := range names {
		if err := r.SendTo(name, address, args); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TeardownAll closes every sender and receiver handle and empties the
// registry. It may be called any number of times.
func (r *Registry) TeardownAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, name := range r.senderOrder {
		if err := r.senders[name].handle.Close(); err != nil {
			errs = append(errs, newError("close", name, err))
		}
	}
	for _, name := range r.receiverOrder {
		if err := r.receivers[name].handle.Close(); err != nil {
			errs = append(errs, newError("close", name, err))
		}
	}

	if len(r.senderOrder) > 0 || len(r.receiverOrder) > 0 {
		logrus.WithFields(logrus.Fields{
			"function":  "Registry.TeardownAll",
			"senders":   len(r.senderOrder),
			"receivers": len(r.receiverOrder),
			"errors":    len(errs),
		}).Info("Closed all endpoints")
	}

	r.senders = make(map[string]*sender)
	r.senderOrder = nil
	r.receivers = make(map[string]*receiver)
	r.receiverOrder = nil

	return errors.Join(errs...)
}

// Senders returns the sender names in creation order.
func (r *Registry) Senders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.senderOrder...)
}

// Receivers returns the receiver names in creation order.
func (r *Registry) Receivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.receiverOrder...)
}

func (r *Registry) lookupSender(op, name string) (*sender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.senders[name]
	if !ok {
		return nil, newError(op, name, ErrUnknownEndpoint)
	}
	return s, nil
}

func (r *Registry) lookupReceiver(op, name string) (*receiver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rc, ok := r.receivers[name]
	if !ok {
		return nil, newError(op, name, ErrUnknownEndpoint)
	}
	return rc, nil
}

// SenderLog returns the formatted log of the named sender, oldest first.
func (r *Registry) SenderLog(name string) ([]string, error) {
	s, err := r.lookupSender("sender log", name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Items(), nil
}

// SentMessages returns the messages recorded for the named sender, oldest first.
func (r *Registry) SentMessages(name string) ([]*message.Packet, error) {
	s, err := r.lookupSender("sent messages", name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages.Items(), nil
}

// ReceiverLog returns the formatted log of the named receiver, oldest first.
func (r *Registry) ReceiverLog(name string) ([]string, error) {
	rc, err := r.lookupReceiver("receiver log", name)
	if err != nil {
		return nil, err
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.log.Items(), nil
}

// ReceivedPackets returns the packets recorded for the named receiver, oldest first.
func (r *Registry) ReceivedPackets(name string) ([]*message.Packet, error) {
	rc, err := r.lookupReceiver("received packets", name)
	if err != nil {
		return nil, err
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.packets.Items(), nil
}
