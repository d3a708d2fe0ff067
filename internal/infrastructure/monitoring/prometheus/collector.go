package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/dockrmsd/pkg/errors"
)

// DefaultNamespace prefixes every metric name when Options.Namespace is empty.
const DefaultNamespace = "dockrmsd"

// Options configures NewScoringMetrics.
type Options struct {
	Namespace string
	// RuntimeMetrics adds the process and Go runtime collectors.
	RuntimeMetrics bool
}

// registry is a private prometheus.Registry that namespaces every vector it
// creates. The first registration failure sticks in err.
type registry struct {
	reg       *prometheus.Registry
	namespace string
	err       error
}

func newRegistry(opts Options) *registry {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	r := &registry{reg: prometheus.NewRegistry(), namespace: opts.Namespace}
	if opts.RuntimeMetrics {
		r.register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: opts.Namespace}))
		r.register(collectors.NewGoCollector())
	}
	return r
}

func (r *registry) register(c prometheus.Collector) {
	if err := r.reg.Register(c); err != nil && r.err == nil {
		r.err = errors.Wrap(err, errors.ErrCodeValidation, "invalid metric").
			WithDetail("namespace=" + r.namespace)
	}
}

func (r *registry) counter(name, help string, labels ...string) *prometheus.CounterVec {
	v := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: r.namespace, Name: name, Help: help}, labels)
	r.register(v)
	return v
}

func (r *registry) gauge(name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: r.namespace, Name: name, Help: help})
	r.register(g)
	return g
}

func (r *registry) histogram(name, help string, buckets []float64) prometheus.Histogram {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: r.namespace, Name: name, Help: help, Buckets: buckets})
	r.register(h)
	return h
}

func (r *registry) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	v := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: r.namespace, Name: name, Help: help, Buckets: buckets}, labels)
	r.register(v)
	return v
}

func (r *registry) handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

//Personal.AI order the ending
