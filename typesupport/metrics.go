package typesupport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/rmw-cdr/errors"
)

// Operation labels.
const (
	OpSerialize   = "serialize"
	OpDeserialize = "deserialize"
)

// Metrics collects per-type codec counters. A nil *Metrics records nothing.
type Metrics struct {
	messagesTotal *prometheus.CounterVec
	bytesTotal    *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	maxSize       *prometheus.GaugeVec
}

// NewMetrics creates the codec metrics and registers them on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		messagesTotal: createCounterVec("rmw_cdr_messages_total", "Messages processed by the CDR codec", []string{"type", "op"}),
		bytesTotal:    createCounterVec("rmw_cdr_bytes_total", "CDR payload bytes produced or consumed", []string{"type", "op"}),
		errorsTotal:   createCounterVec("rmw_cdr_errors_total", "Failed codec operations by error kind", []string{"type", "op", "kind"}),
		duration: createHistogramVec("rmw_cdr_duration_seconds", "Duration of codec operations in seconds", []string{"type", "op"},
			prometheus.ExponentialBuckets(1e-6, 4, 10)),
		maxSize: createGaugeVec("rmw_cdr_max_serialized_bytes", "Worst-case serialized size of a registered type", []string{"type"}),
	}

	for _, c := range []prometheus.Collector{m.messagesTotal, m.bytesTotal, m.errorsTotal, m.duration, m.maxSize} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(errors.PhaseRegistry, errors.KindDuplicate, err, "metrics registration failed")
		}
	}
	return m, nil
}

// RecordSuccess counts one completed operation of n bytes.
func (m *Metrics) RecordSuccess(typeName, op string, n int, start time.Time) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(typeName, op).Inc()
	m.bytesTotal.WithLabelValues(typeName, op).Add(float64(n))
	m.duration.WithLabelValues(typeName, op).Observe(time.Since(start).Seconds())
}

// RecordError counts one failed operation labelled with the error kind.
func (m *Metrics) RecordError(typeName, op string, err error) {
	if m == nil {
		return
	}
	kind := string(errors.KindOf(err))
	if kind == "" {
		kind = "unknown"
	}
	m.errorsTotal.WithLabelValues(typeName, op, kind).Inc()
}

// ObserveMaxSize publishes the worst-case serialized size of a type.
func (m *Metrics) ObserveMaxSize(typeName string, size uint64) {
	if m == nil {
		return
	}
	m.maxSize.WithLabelValues(typeName).Set(float64(size))
}

// Messages returns the success counter of one type and operation. The
// accessors below return detached collectors on a nil *Metrics, so callers
// can read them without checking.
func (m *Metrics) Messages(typeName, op string) prometheus.Counter {
	if m == nil {
		return detachedCounter()
	}
	return m.messagesTotal.WithLabelValues(typeName, op)
}

func (m *Metrics) Bytes(typeName, op string) prometheus.Counter {
	if m == nil {
		return detachedCounter()
	}
	return m.bytesTotal.WithLabelValues(typeName, op)
}

func (m *Metrics) Errors(typeName, op string, kind errors.Kind) prometheus.Counter {
	if m == nil {
		return detachedCounter()
	}
	return m.errorsTotal.WithLabelValues(typeName, op, string(kind))
}

func (m *Metrics) MaxSize(typeName string) prometheus.Gauge {
	if m == nil {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: "rmw_cdr_disabled"})
	}
	return m.maxSize.WithLabelValues(typeName)
}

// detachedCounter is never registered and never incremented.
func detachedCounter() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Name: "rmw_cdr_disabled"})
}

func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

func createGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}
