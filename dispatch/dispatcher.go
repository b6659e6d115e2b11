package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opd-ai/oscbridge/mailbox"
	"github.com/opd-ai/oscbridge/message"
	"github.com/opd-ai/oscbridge/metrics"
	"github.com/sirupsen/logrus"
)

// ErrHandlerPanic wraps a panic recovered from a handler.
var ErrHandlerPanic = errors.New("handler panicked")

// Handler receives the arguments of a packet delivered to its address.
// The slice is shared between all handlers of the packet and must not be modified.
type Handler func(args []message.Argument) error

// HandlerError reports which handler failed during a drain cycle.
type HandlerError struct {
	Address string
	Index   int // position of the handler in registration order
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("dispatch %s: handler %d: %v", e.Address, e.Index, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithIsolation makes handler failures log-and-continue instead of aborting
// the rest of the drain cycle.
func WithIsolation(isolate bool) Option {
	return func(d *Dispatcher) {
		d.isolate = isolate
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = metrics.OrNoop(r)
	}
}

// Dispatcher owns the mailbox and the address-to-handlers registry.
type Dispatcher struct {
	mailbox  *mailbox.Mailbox
	handlers map[string][]Handler
	mu       sync.RWMutex
	isolate  bool
	recorder metrics.Recorder
}

// New creates a Dispatcher with an empty mailbox and registry.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		mailbox:  mailbox.New(),
		handlers: make(map[string][]Handler),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Subscribe appends handler to the list for address. Registering the same
// handler twice makes it run twice per packet.
func (d *Dispatcher) Subscribe(address string, handler Handler) {
	if handler == nil {
		logrus.WithFields(logrus.Fields{
			"function": "Dispatcher.Subscribe",
			"address":  address,
		}).Warn("Ignoring nil handler")
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[address] = append(d.handlers[address], handler)

	logrus.WithFields(logrus.Fields{
		"function": "Dispatcher.Subscribe",
		"address":  address,
		"handlers": len(d.handlers[address]),
	}).Debug("Handler registered")
}

// Deposit offers a packet to the mailbox. It never blocks and reports false
// when the packet was dropped because an earlier one is still pending.
func (d *Dispatcher) Deposit(address string, args []message.Argument) bool {
	accepted := d.mailbox.Deposit(address, args)
	d.recorder.RecordDeposit(context.Background(), accepted)
	return accepted
}

// Reset discards a pending packet without dispatching it and reports whether
// there was one. Handlers stay registered.
func (d *Dispatcher) Reset() bool {
	return d.mailbox.Reset()
}

// DrainOnce takes at most one packet from the mailbox and invokes every handler
// registered for its exact address, in registration order. A packet with no
// handlers is dropped without error.
//
// By default the first handler error aborts the remaining handlers and is
// returned. With isolation enabled every handler runs and failures are only
// logged. Panics are recovered and reported as ErrHandlerPanic.
func (d *Dispatcher) DrainOnce() error {
	packet, ok := d.mailbox.Drain()
	if !ok {
		return nil
	}

	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers[packet.Address]...)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		logrus.WithFields(logrus.Fields{
			"function": "Dispatcher.DrainOnce",
			"address":  packet.Address,
		}).Debug("No handlers found for address")
		d.recorder.RecordDispatch(context.Background(), packet.Address, 0, nil)
		return nil
	}

	failed := d.invoke(packet, handlers)
	d.recorder.RecordDispatch(context.Background(), packet.Address, len(handlers), failed)
	if d.isolate {
		return nil
	}
	return failed
}

// invoke runs handlers in order and returns the first failure.
func (d *Dispatcher) invoke(packet *message.Packet, handlers []Handler) error {
	var failed error
	for i, h := range handlers {
		err := call(h, packet.Arguments)
		if err == nil {
			continue
		}

		herr := &HandlerError{Address: packet.Address, Index: i, Err: err}
		if !d.isolate {
			logrus.WithFields(logrus.Fields{
				"function": "Dispatcher.DrainOnce",
				"address":  packet.Address,
				"handler":  i,
				"skipped":  len(handlers) - i - 1,
				"error":    err.Error(),
			}).Error("Handler failed, aborting drain cycle")
			return herr
		}

		logrus.WithFields(logrus.Fields{
			"function": "Dispatcher.DrainOnce",
			"address":  packet.Address,
			"handler":  i,
			"error":    err.Error(),
		}).Warn("Handler failed, continuing with remaining handlers")
		if failed == nil {
			failed = herr
		}
	}

	return failed
}

func call(h Handler, args []message.Argument) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h(args)
}

// HandlerCount returns the number of handlers registered for address.
func (d *Dispatcher) HandlerCount(address string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[address])
}

// Addresses returns the addresses that have at least one handler.
func (d *Dispatcher) Addresses() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	addrs := make([]string, 0, len(d.handlers))
	for addr := range d.handlers {
		addrs = append(addrs, addr)
	}
	return addrs
}
