// Package prom adapts package metrics's Provider seam to Prometheus, so a
// deployment can export pool gauges without the core depending on
// Prometheus directly.
package prom

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ygrebnov/taskpool/metrics"
)

// Provider implements metrics.Provider on top of a prometheus.Registerer.
// Instruments are created on demand by name and registered once; requesting
// the same name twice returns the previously registered instrument.
type Provider struct {
	reg prometheus.Registerer

	mu         sync.RWMutex
	counters   map[string]*prometheus.CounterVec
	updowns    map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewProvider constructs a Provider that registers instruments with reg.
func NewProvider(reg prometheus.Registerer) *Provider {
	return &Provider{
		reg:        reg,
		counters:   make(map[string]*prometheus.CounterVec),
		updowns:    make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func labelNames(attrs map[string]string) (names []string) {
	for k := range attrs {
		names = append(names, k)
	}
	return
}

func (p *Provider) Counter(name string, opts ...metrics.InstrumentOption) metrics.Counter {
	p.mu.RLock()
	c, ok := p.counters[name]
	p.mu.RUnlock()
	cfg := applyOptions(opts)
	if ok {
		return counterHandle{c, cfg.Attributes}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.counters[name]; ok {
		return counterHandle{c, cfg.Attributes}
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: cfg.Description,
	}, labelNames(cfg.Attributes))
	p.reg.MustRegister(cv)
	p.counters[name] = cv
	return counterHandle{cv, cfg.Attributes}
}

func (p *Provider) UpDownCounter(name string, opts ...metrics.InstrumentOption) metrics.UpDownCounter {
	p.mu.RLock()
	g, ok := p.updowns[name]
	p.mu.RUnlock()
	cfg := applyOptions(opts)
	if ok {
		return gaugeHandle{g, cfg.Attributes}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.updowns[name]; ok {
		return gaugeHandle{g, cfg.Attributes}
	}
	gv := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: name,
		Help: cfg.Description,
	}, labelNames(cfg.Attributes))
	p.reg.MustRegister(gv)
	p.updowns[name] = gv
	return gaugeHandle{gv, cfg.Attributes}
}

func (p *Provider) Histogram(name string, opts ...metrics.InstrumentOption) metrics.Histogram {
	p.mu.RLock()
	h, ok := p.histograms[name]
	p.mu.RUnlock()
	cfg := applyOptions(opts)
	if ok {
		return histogramHandle{h, cfg.Attributes}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.histograms[name]; ok {
		return histogramHandle{h, cfg.Attributes}
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: name,
		Help: cfg.Description,
	}, labelNames(cfg.Attributes))
	p.reg.MustRegister(hv)
	p.histograms[name] = hv
	return histogramHandle{hv, cfg.Attributes}
}

func applyOptions(opts []metrics.InstrumentOption) metrics.InstrumentConfig {
	var cfg metrics.InstrumentConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}

type counterHandle struct {
	v     *prometheus.CounterVec
	attrs map[string]string
}

func (c counterHandle) Add(n int64) { c.v.With(prometheus.Labels(c.attrs)).Add(float64(n)) }

type gaugeHandle struct {
	v     *prometheus.GaugeVec
	attrs map[string]string
}

func (g gaugeHandle) Add(n int64) { g.v.With(prometheus.Labels(g.attrs)).Add(float64(n)) }

type histogramHandle struct {
	v     *prometheus.HistogramVec
	attrs map[string]string
}

func (h histogramHandle) Record(v float64) { h.v.With(prometheus.Labels(h.attrs)).Observe(v) }
