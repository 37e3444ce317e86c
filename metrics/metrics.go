// Package metrics exports shutdown coordination metrics to Prometheus.
//
// A Collector hooks into a shutdown.Config through its callbacks:
//
//	reg := prometheus.NewRegistry()
//	mc := metrics.New("myapp")
//	if err := mc.Register(reg); err != nil {
//	    return err
//	}
//	coord, err := shutdown.NewCoordinator(mc.Instrument(cfg))
//
// Metrics (prefixed by the namespace):
//
//	workers_registered_total       counter
//	worker_exits_total{outcome}    counter, outcome is "ok" or "failed"
//	worker_shutdown_seconds        histogram, stop broadcast to outcome
//	shutdown_timeouts_total        counter
//	shutdown_stragglers            gauge
//	shutdown_duration_seconds      histogram
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	kiterrors "github.com/vinayprograms/gracekit/errors"
	"github.com/vinayprograms/gracekit/shutdown"
)

// Outcome label values for worker_exits_total.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Collector records shutdown metrics.
type Collector struct {
	registered    prometheus.Counter
	exits         *prometheus.CounterVec
	workerSeconds prometheus.Histogram
	timeouts      prometheus.Counter
	stragglers    prometheus.Gauge
	duration      prometheus.Histogram
}

// New creates a collector whose metric names are prefixed by namespace.
func New(namespace string) *Collector {
	return &Collector{
		registered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workers_registered_total",
			Help:      "Workers registered with the shutdown coordinator.",
		}),
		exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_exits_total",
			Help:      "Worker outcomes collected during shutdown.",
		}, []string{"outcome"}),
		workerSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "worker_shutdown_seconds",
			Help:      "Time from stop broadcast to a worker reporting its outcome.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shutdown_timeouts_total",
			Help:      "Shutdown cycles that hit the timeout.",
		}),
		stragglers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "shutdown_stragglers",
			Help:      "Workers that had not reported when the last shutdown timed out.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shutdown_duration_seconds",
			Help:      "Duration of the whole shutdown cycle.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// Register adds every metric to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{
		c.registered, c.exits, c.workerSeconds, c.timeouts, c.stragglers, c.duration,
	} {
		if err := reg.Register(m); err != nil {
			return kiterrors.Wrap(err, "register shutdown metrics")
		}
	}
	return nil
}

// Instrument returns cfg with the collector chained in front of any
// callbacks already set.
func (c *Collector) Instrument(cfg shutdown.Config) shutdown.Config {
	onRegister, onProgress, onComplete := cfg.OnRegister, cfg.OnProgress, cfg.OnComplete

	cfg.OnRegister = func(id string) {
		c.ObserveRegister(id)
		if onRegister != nil {
			onRegister(id)
		}
	}
	cfg.OnProgress = func(r shutdown.WorkerResult) {
		c.ObserveWorker(r)
		if onProgress != nil {
			onProgress(r)
		}
	}
	cfg.OnComplete = func(r *shutdown.ShutdownResult) {
		c.ObserveComplete(r)
		if onComplete != nil {
			onComplete(r)
		}
	}
	return cfg
}

// ObserveRegister counts a registration.
func (c *Collector) ObserveRegister(string) {
	c.registered.Inc()
}

// ObserveWorker records one worker outcome.
func (c *Collector) ObserveWorker(r shutdown.WorkerResult) {
	outcome := OutcomeOK
	if r.Err != nil {
		outcome = OutcomeFailed
	}
	c.exits.WithLabelValues(outcome).Inc()
	c.workerSeconds.Observe(r.Duration.Seconds())
}

// ObserveComplete records the end of a shutdown cycle.
func (c *Collector) ObserveComplete(r *shutdown.ShutdownResult) {
	if r == nil {
		return
	}
	c.duration.Observe(r.TotalDuration.Seconds())
	c.stragglers.Set(float64(r.Stragglers))
	if r.Stragglers > 0 {
		c.timeouts.Inc()
	}
}

// Handler serves the metrics in g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
