// Package metrics exposes the worker's counters to Prometheus when it runs as
// a long-lived HTTP process.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements the notification observer on Prometheus counters.
type Collector struct {
	emailsSent  prometheus.Counter
	failures    *prometheus.CounterVec
	snsMessages *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		emailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "verification_mailer_emails_sent_total",
			Help: "Verification emails sent and recorded.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_mailer_failures_total",
			Help: "Failed verification runs by failure kind.",
		}, []string{"kind"}),
		snsMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_mailer_sns_messages_total",
			Help: "SNS HTTP deliveries by message type.",
		}, []string{"type"}),
	}
	reg.MustRegister(c.emailsSent, c.failures, c.snsMessages)
	return c
}

func (c *Collector) EmailSent(context.Context) {
	c.emailsSent.Inc()
}

func (c *Collector) Failure(_ context.Context, kind string) {
	c.failures.WithLabelValues(kind).Inc()
}

// RecordSNSMessage counts an inbound SNS delivery by its Type field.
func (c *Collector) RecordSNSMessage(msgType string) {
	c.snsMessages.WithLabelValues(msgType).Inc()
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
