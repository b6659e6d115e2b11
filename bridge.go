package oscbridge

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/opd-ai/oscbridge/config"
	"github.com/opd-ai/oscbridge/dispatch"
	"github.com/opd-ai/oscbridge/endpoint"
	"github.com/opd-ai/oscbridge/factory"
	"github.com/opd-ai/oscbridge/interfaces"
	"github.com/opd-ai/oscbridge/message"
	"github.com/opd-ai/oscbridge/metrics"
	"github.com/sirupsen/logrus"
)

// Handler is called with the arguments of every drained packet addressed to
// the address it was registered for.
type Handler = dispatch.Handler

// Option customizes a Bridge at construction.
type Option func(*bridgeSettings)

type bridgeSettings struct {
	recorder metrics.Recorder
	clock    endpoint.Clock
}

// WithRecorder reports bridge activity to rec.
func WithRecorder(rec metrics.Recorder) Option {
	return func(s *bridgeSettings) {
		s.recorder = rec
	}
}

// WithClock timestamps endpoint logs with c.
func WithClock(c endpoint.Clock) Option {
	return func(s *bridgeSettings) {
		s.clock = c
	}
}

// Bridge composes exactly one Dispatcher and one endpoint Registry. Inbound
// packets from every receiver go to the dispatcher mailbox; outbound values go
// through the registry.
type Bridge struct {
	options    *config.Options
	transport  interfaces.ITransport
	dispatcher *dispatch.Dispatcher
	registry   *endpoint.Registry

	mu        sync.Mutex
	running   bool
	receivers []int
	senders   []config.SenderOptions
}

// New creates a bridge from opts, choosing the transport through a factory
// built from the options. A nil opts selects config.DefaultOptions.
func New(opts *config.Options, options ...Option) (*Bridge, error) {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	return NewWithFactory(opts, factory.NewTransportFactory(opts.TransportConfig()), options...)
}

// NewWithFactory creates a bridge from opts on a transport made by f. The
// factory decides between UDP and simulation; opts supplies everything else.
func NewWithFactory(opts *config.Options, f *factory.TransportFactory, options ...Option) (*Bridge, error) {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	t, err := f.CreateTransport()
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}
	return NewWithTransport(opts, t, options...), nil
}

// NewWithTransport creates a bridge on an existing transport. Configured
// relays are subscribed immediately; endpoints are opened by Start.
func NewWithTransport(opts *config.Options, t interfaces.ITransport, options ...Option) *Bridge {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	settings := bridgeSettings{recorder: metrics.NoopRecorder{}, clock: endpoint.RealClock{}}
	for _, o := range options {
		o(&settings)
	}

	d := dispatch.New(
		dispatch.WithIsolation(opts.IsolateHandlers),
		dispatch.WithRecorder(settings.recorder),
	)
	b := &Bridge{
		options:    opts,
		transport:  t,
		dispatcher: d,
		registry: endpoint.NewRegistry(t, d.Deposit,
			endpoint.WithLogLength(opts.LogLength),
			endpoint.WithClock(settings.clock),
			endpoint.WithRecorder(settings.recorder),
		),
		running: true,
	}

	for _, r := range opts.Relays {
		b.Relay(r.From, r.To)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewWithTransport",
		"simulation": t.IsSimulation(),
		"isolated":   opts.IsolateHandlers,
		"relays":     len(opts.Relays),
	}).Info("Bridge created")

	return b
}

var (
	defaultOnce   sync.Once
	defaultBridge *Bridge
	defaultErr    error
)

// Default returns the process-wide bridge, creating it with default options on
// first use.
func Default() (*Bridge, error) {
	defaultOnce.Do(func() {
		defaultBridge, defaultErr = New(nil)
	})
	return defaultBridge, defaultErr
}

// Start opens the receivers and senders listed in the options. Every endpoint
// is attempted; failures are returned together.
func (b *Bridge) Start() error {
	var errs []error
	for _, port := range b.options.Receivers {
		if err := b.ReceiverPort(port); err != nil {
			errs = append(errs, err)
		}
	}
	for _, s := range b.options.Senders {
		if _, err := b.SenderAddress(s.Host, s.Port); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReceiverPort opens a receiver on port. Requesting an open port again is a
// logged no-op.
func (b *Bridge) ReceiverPort(port int) error {
	if _, err := b.registry.EnsureReceiver(port); err != nil {
		return err
	}
	b.mu.Lock()
	if !slices.Contains(b.receivers, port) {
		b.receivers = append(b.receivers, port)
	}
	b.mu.Unlock()
	return nil
}

// SenderAddress opens a sender to host:port and returns its stable name.
func (b *Bridge) SenderAddress(host string, port int) (string, error) {
	name, err := b.registry.EnsureSender(host, port)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	if !slices.Contains(b.senders, config.SenderOptions{Host: host, Port: port}) {
		b.senders = append(b.senders, config.SenderOptions{Host: host, Port: port})
	}
	b.mu.Unlock()
	return name, nil
}

// OnReceive registers handler for address. Handlers are never removed.
func (b *Bridge) OnReceive(address string, handler Handler) {
	b.dispatcher.Subscribe(address, handler)
}

// Send transmits address with values through the named sender. Values may be
// integers, floats, strings or message.Argument; anything else fails before
// transmission.
func (b *Bridge) Send(sender, address string, values ...interface{}) error {
	args, err := message.ConvertAll(values)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Bridge.Send",
			"sender":   sender,
			"address":  address,
			"error":    err.Error(),
		}).Error("Cannot convert outbound values")
		return fmt.Errorf("send %s: %w", address, err)
	}
	return b.registry.SendTo(sender, address, args)
}

// Broadcast transmits address with values through every sender in creation
// order.
func (b *Bridge) Broadcast(address string, values ...interface{}) error {
	args, err := message.ConvertAll(values)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Bridge.Broadcast",
			"address":  address,
			"error":    err.Error(),
		}).Error("Cannot convert outbound values")
		return fmt.Errorf("broadcast %s: %w", address, err)
	}
	return b.registry.SendToAll(address, args)
}

// Relay forwards every packet drained on from to all senders under to. An
// empty to keeps the inbound address.
func (b *Bridge) Relay(from, to string) {
	if to == "" {
		to = from
	}
	b.OnReceive(from, func(args []message.Argument) error {
		values := make([]interface{}, len(args))
		for i, a := range args {
			values[i] = a
		}
		return b.Broadcast(to, values...)
	})

	logrus.WithFields(logrus.Fields{
		"function": "Bridge.Relay",
		"from":     from,
		"to":       to,
	}).Debug("Relay registered")
}

// DrainOnce dispatches at most one pending packet and returns the first
// handler failure unless handlers are isolated.
func (b *Bridge) DrainOnce() error {
	return b.dispatcher.DrainOnce()
}

// Iterate runs one drain cycle and logs a failed cycle instead of returning
// it. Host loops call it every IterationInterval.
func (b *Bridge) Iterate() {
	if err := b.dispatcher.DrainOnce(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Bridge.Iterate",
			"error":    err.Error(),
		}).Warn("Drain cycle failed")
	}
}

// IterationInterval returns the recommended delay between Iterate calls.
func (b *Bridge) IterationInterval() time.Duration {
	return b.options.IterationInterval
}

// IsRunning reports whether Kill has not been called yet.
func (b *Bridge) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// TeardownAll closes every endpoint. Endpoints may be opened again afterwards.
func (b *Bridge) TeardownAll() error {
	return b.registry.TeardownAll()
}

// Reload tears every endpoint down and reopens the ones opened so far, in
// their original order. A packet still pending from before the reload is
// discarded. Handlers stay registered.
func (b *Bridge) Reload() error {
	b.mu.Lock()
	receivers := append([]int(nil), b.receivers...)
	senders := append([]config.SenderOptions(nil), b.senders...)
	b.mu.Unlock()

	var errs []error
	if err := b.registry.TeardownAll(); err != nil {
		errs = append(errs, err)
	}
	discarded := b.dispatcher.Reset()
	for _, port := range receivers {
		if _, err := b.registry.EnsureReceiver(port); err != nil {
			errs = append(errs, err)
		}
	}
	for _, s := range senders {
		if _, err := b.registry.EnsureSender(s.Host, s.Port); err != nil {
			errs = append(errs, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Bridge.Reload",
		"receivers": len(receivers),
		"senders":   len(senders),
		"discarded": discarded,
		"errors":    len(errs),
	}).Info("Endpoints reloaded")

	return errors.Join(errs...)
}

// Kill stops the bridge, closes every endpoint and discards a packet that was
// never drained. It may be called more than once.
func (b *Bridge) Kill() error {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()

	err := b.registry.TeardownAll()
	if b.dispatcher.Reset() {
		logrus.WithFields(logrus.Fields{
			"function": "Bridge.Kill",
		}).Debug("Discarded undrained packet")
	}
	return err
}

// Registry exposes the endpoint registry for log inspection.
func (b *Bridge) Registry() *endpoint.Registry {
	return b.registry
}

// Dispatcher exposes the dispatcher.
func (b *Bridge) Dispatcher() *dispatch.Dispatcher {
	return b.dispatcher
}

// Transport returns the transport the bridge opens endpoints on.
func (b *Bridge) Transport() interfaces.ITransport {
	return b.transport
}
