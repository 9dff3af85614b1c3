package application

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/apperr"
	domoutbox "github.com/Zhima-Mochi/petstore-core/internal/domain/outbox"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"
	"github.com/Zhima-Mochi/petstore-core/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	SpanPrefix     = "UC."
	publishPeer    = "outbox"
	publishTimeout = 300 * time.Millisecond
)

// Instrumentation holds the RED metrics, tracer and base logger shared by the
// use cases of one service. Instruments are resolved once at construction.
type Instrumentation struct {
	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewInstrumentation(tel observability.Observability, service string) *Instrumentation {
	tel = observability.OrNop(tel)
	m := tel.Metrics()
	return &Instrumentation{
		log:          tel.Logger().With(observability.F("service", service)),
		tracer:       tel.Tracer(),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}
}

// Call tracks one use case execution. Begin opens it, End closes the span,
// records metrics and writes the use_case_done line.
type Call struct {
	inst       *Instrumentation
	ctx        context.Context
	useCase    string
	span       trace.Span
	logger     observability.Logger
	start      time.Time
	statusText string
	fields     []observability.Field
}

func (in *Instrumentation) Begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Call) {
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.tracer.Start(ctx, SpanPrefix+spanName, attrs...)
	ctx, logger := logctx.Enrich(ctx, in.log, observability.F("use_case", useCase))
	return ctx, &Call{
		inst:    in,
		ctx:     ctx,
		useCase: useCase,
		span:    span,
		logger:  logger,
		start:   time.Now(),
	}
}

func (c *Call) Logger() observability.Logger { return c.logger }

// Status overrides the status text reported on success or failure.
func (c *Call) Status(text string) { c.statusText = text }

// With adds fields to the use_case_done line.
func (c *Call) With(fields ...observability.Field) { c.fields = append(c.fields, fields...) }

func (c *Call) Event(name string, attrs ...attribute.KeyValue) {
	if c.span != nil {
		c.span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

func (c *Call) SetAttributes(attrs ...attribute.KeyValue) {
	if c.span != nil {
		c.span.SetAttributes(attrs...)
	}
}

func (c *Call) End(err error) {
	lat := time.Since(c.start).Seconds()
	outcome, statusText := "success", c.statusText
	if err != nil {
		outcome = "error"
		if statusText == "" {
			statusText = string(apperr.KindOf(err))
		}
	}
	if statusText == "" {
		statusText = "OK"
	}

	if c.span != nil {
		if err != nil {
			c.span.RecordError(err)
			c.span.SetStatus(codes.Error, statusText)
		} else {
			c.span.SetStatus(codes.Ok, statusText)
		}
		c.span.End()
	}

	c.inst.reqCounter.Add(1,
		observability.L("use_case", c.useCase),
		observability.L("outcome", outcome),
	)
	c.inst.durHistogram.Observe(lat,
		observability.L("use_case", c.useCase),
	)

	fields := []observability.Field{
		observability.F("outcome", outcome),
		observability.F("status", statusText),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(c.ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	fields = append(fields, c.fields...)
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}

	c.logger.Info("use_case_done", fields...)
}

// Publish hands event to pub with a short timeout and records it as an
// external call. Failures are returned for logging; callers do not fail on them.
func (in *Instrumentation) Publish(ctx context.Context, pub domoutbox.Publisher, event domoutbox.Event) error {
	if pub == nil || event == nil {
		return nil
	}

	endpoint := event.EventName()
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	err := pub.Publish(pubCtx, event)
	outcome := "success"
	if err != nil {
		outcome = "error"
		if pubCtx.Err() != nil {
			outcome = "canceled"
		}
	}

	in.extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	in.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", endpoint),
	)
	return err
}

// External records a call to a named peer other than the outbox.
func (in *Instrumentation) External(peer, endpoint string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	in.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	in.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
}
