// Package metrics exposes Prometheus counters for the alarm pipeline.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "plc_alarm_"

// Sample processing results.
const (
	ResultProcessed = "processed"
	ResultSkipped   = "skipped"
	ResultError     = "error"
)

var (
	registerOnce sync.Once

	samplesTotal     *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	messagesTotal    *prometheus.CounterVec
)

// Init registers the pipeline metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		samplesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "samples_total",
				Help: "Point value samples by processing result",
			},
			[]string{"result"},
		)
		transitionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "transitions_total",
				Help: "Alarm state transitions by action",
			},
			[]string{"action"},
		)
		messagesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "messages_total",
				Help: "Consumed point value messages by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(samplesTotal, transitionsTotal, messagesTotal)
	})
}

// ObserveSample records one sample processing outcome.
func ObserveSample(result string) {
	if samplesTotal != nil {
		samplesTotal.WithLabelValues(result).Inc()
	}
}

// ObserveTransition records an alarm open or close.
func ObserveTransition(action string) {
	if transitionsTotal != nil {
		transitionsTotal.WithLabelValues(action).Inc()
	}
}

// ObserveMessage records one consumed message outcome.
func ObserveMessage(result string) {
	if messagesTotal != nil {
		messagesTotal.WithLabelValues(result).Inc()
	}
}
