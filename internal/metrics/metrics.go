package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus counters exported by the scheduler process.
type Metrics struct {
	CampaignsCompletedTotal prometheus.Counter
	CampaignsFailedTotal    prometheus.Counter
	MessagesSentTotal       prometheus.Counter
	MessagesFailedTotal     prometheus.Counter
	ConnectionEventsTotal   *prometheus.CounterVec
	WebhookDeliveriesTotal  *prometheus.CounterVec
	RetentionRowsDeleted    prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		CampaignsCompletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zapflow_campaigns_completed_total",
			Help: "Total number of campaigns finalized as completed",
		}),
		CampaignsFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zapflow_campaigns_failed_total",
			Help: "Total number of campaigns finalized as failed",
		}),
		MessagesSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zapflow_messages_sent_total",
			Help: "Total number of template messages accepted by a gateway",
		}),
		MessagesFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zapflow_messages_failed_total",
			Help: "Total number of template messages rejected by a gateway",
		}),
		ConnectionEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zapflow_connection_events_total",
			Help: "Connection state transitions detected, by event",
		}, []string{"event"}),
		WebhookDeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zapflow_webhook_deliveries_total",
			Help: "Webhook delivery attempts, by result",
		}, []string{"result"}),
		RetentionRowsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zapflow_retention_rows_deleted_total",
			Help: "Message history rows removed by the retention sweeper",
		}),
		registry: reg,
	}

	reg.MustRegister(
		m.CampaignsCompletedTotal,
		m.CampaignsFailedTotal,
		m.MessagesSentTotal,
		m.MessagesFailedTotal,
		m.ConnectionEventsTotal,
		m.WebhookDeliveriesTotal,
		m.RetentionRowsDeleted,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
