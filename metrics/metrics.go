// Package metrics records bridge activity through OpenTelemetry.
//
// Use NewRecorder for OTel metrics on the global meter provider, NewRecorderWithMeter
// for an explicit meter, or NoopRecorder{} when metrics are disabled.
package metrics

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName is the meter name used for all bridge instruments.
const InstrumentationName = "github.com/opd-ai/oscbridge"

// Recorder records bridge metrics.
type Recorder interface {
	// RecordDeposit records a mailbox deposit attempt.
	RecordDeposit(ctx context.Context, accepted bool)

	// RecordDispatch records one drained packet and how many handlers it reached.
	RecordDispatch(ctx context.Context, address string, handlers int, err error)

	// RecordSend records an outbound message on a sender endpoint.
	RecordSend(ctx context.Context, endpoint string, err error)

	// RecordDroppedArgument records an argument removed during conversion.
	RecordDroppedArgument(ctx context.Context, reason string)
}

type otelRecorder struct {
	deposits       metric.Int64Counter
	dispatches     metric.Int64Counter
	handlerCalls   metric.Int64Counter
	dispatchErrors metric.Int64Counter
	sends          metric.Int64Counter
	sendErrors     metric.Int64Counter
	droppedArgs    metric.Int64Counter
}

// NewRecorder returns a Recorder using the global OTel meter provider.
// If instrument creation fails, a no-op recorder is returned.
//
// Configure the provider before calling:
//
//	otel.SetMeterProvider(provider)
func NewRecorder() Recorder {
	return NewRecorderWithMeter(otel.Meter(InstrumentationName))
}

// NewRecorderWithMeter returns a Recorder whose instruments come from meter.
func NewRecorderWithMeter(meter metric.Meter) Recorder {
	r, err := newOtelRecorder(meter)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewRecorderWithMeter",
			"error":    err.Error(),
		}).Warn("Metrics initialization failed, using no-op recorder")
		return NoopRecorder{}
	}
	return r
}

func newOtelRecorder(meter metric.Meter) (*otelRecorder, error) {
	r := &otelRecorder{}
	var err error

	if r.deposits, err = meter.Int64Counter("oscbridge.mailbox.deposits",
		metric.WithDescription("Mailbox deposit attempts by outcome"),
	); err != nil {
		return nil, err
	}
	if r.dispatches, err = meter.Int64Counter("oscbridge.dispatch.packets",
		metric.WithDescription("Packets drained from the mailbox"),
	); err != nil {
		return nil, err
	}
	if r.handlerCalls, err = meter.Int64Counter("oscbridge.dispatch.handler_calls",
		metric.WithDescription("Handler invocations"),
	); err != nil {
		return nil, err
	}
	if r.dispatchErrors, err = meter.Int64Counter("oscbridge.dispatch.errors",
		metric.WithDescription("Drain cycles that ended with a handler error"),
	); err != nil {
		return nil, err
	}
	if r.sends, err = meter.Int64Counter("oscbridge.endpoint.sends",
		metric.WithDescription("Messages sent through sender endpoints"),
	); err != nil {
		return nil, err
	}
	if r.sendErrors, err = meter.Int64Counter("oscbridge.endpoint.send_errors",
		metric.WithDescription("Failed sends through sender endpoints"),
	); err != nil {
		return nil, err
	}
	if r.droppedArgs, err = meter.Int64Counter("oscbridge.message.dropped_arguments",
		metric.WithDescription("Arguments dropped because their type is unsupported"),
	); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *otelRecorder) RecordDeposit(ctx context.Context, accepted bool) {
	r.deposits.Add(ctx, 1, metric.WithAttributes(attribute.Bool("accepted", accepted)))
}

func (r *otelRecorder) RecordDispatch(ctx context.Context, address string, handlers int, err error) {
	attrs := metric.WithAttributes(
		attribute.String("address", address),
		attribute.Bool("matched", handlers > 0),
	)
	r.dispatches.Add(ctx, 1, attrs)
	if handlers > 0 {
		r.handlerCalls.Add(ctx, int64(handlers), metric.WithAttributes(attribute.String("address", address)))
	}
	if err != nil {
		r.dispatchErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("address", address)))
	}
}

func (r *otelRecorder) RecordSend(ctx context.Context, endpoint string, err error) {
	attrs := metric.WithAttributes(attribute.String("endpoint", endpoint))
	r.sends.Add(ctx, 1, attrs)
	if err != nil {
		r.sendErrors.Add(ctx, 1, attrs)
	}
}

func (r *otelRecorder) RecordDroppedArgument(ctx context.Context, reason string) {
	r.droppedArgs.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// NoopRecorder discards all metrics.
type NoopRecorder struct{}

func (NoopRecorder) RecordDeposit(context.Context, bool)                 {}
func (NoopRecorder) RecordDispatch(context.Context, string, int, error) {}
func (NoopRecorder) RecordSend(context.Context, string, error)          {}
func (NoopRecorder) RecordDroppedArgument(context.Context, string)      {}

// OrNoop returns r, or NoopRecorder{} when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
