// Package observability assembles the telemetry provider shared by the
// catalog, order and payment use cases.
package observability

import (
	"github.com/Zhima-Mochi/petstore-core/internal/observability"
)

// Options carries the backends a Provider is built from. Nil members fall back to no-ops.
type Options struct {
	Tracer     observability.Tracer
	Logger     observability.Logger
	Counters   map[observability.MetricKey]observability.Counter
	Histograms map[observability.MetricKey]observability.Histogram
}

// Provider implements observability.Observability over fixed instrument maps.
// Metric keys missing from the maps resolve to no-op instruments.
type Provider struct {
	tracer     observability.Tracer
	logger     observability.Logger
	counters   map[observability.MetricKey]observability.Counter
	histograms map[observability.MetricKey]observability.Histogram
}

var _ observability.Observability = (*Provider)(nil)

func New(opts Options) *Provider {
	p := &Provider{
		tracer:     opts.Tracer,
		logger:     opts.Logger,
		counters:   make(map[observability.MetricKey]observability.Counter, len(opts.Counters)),
		histograms: make(map[observability.MetricKey]observability.Histogram, len(opts.Histograms)),
	}
	if p.tracer == nil {
		p.tracer = observability.NopTracer()
	}
	if p.logger == nil {
		p.logger = observability.NopLogger()
	}
	for k, v := range opts.Counters {
		if v != nil {
			p.counters[k] = v
		}
	}
	for k, v := range opts.Histograms {
		if v != nil {
			p.histograms[k] = v
		}
	}
	return p
}

func (p *Provider) Tracer() observability.Tracer   { return p.tracer }
func (p *Provider) Logger() observability.Logger   { return p.logger }
func (p *Provider) Metrics() observability.Metrics { return p }

func (p *Provider) Counter(name observability.MetricKey) observability.Counter {
	if c, ok := p.counters[name]; ok {
		return c
	}
	return observability.NopCounter()
}

func (p *Provider) Histogram(name observability.MetricKey) observability.Histogram {
	if h, ok := p.histograms[name]; ok {
		return h
	}
	return observability.NopHistogram()
}

// Sync flushes the logger when it buffers entries. Called once on shutdown.
func (p *Provider) Sync() error {
	if s, ok := p.logger.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}
