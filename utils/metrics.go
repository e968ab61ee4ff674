package utils

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	DonationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donations_total",
			Help: "Total number of donation attempts by outcome",
		},
		[]string{"outcome"}, // completed, payment_failed, rejected
	)

	CampaignTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_status_transitions_total",
			Help: "Total number of campaign status transitions",
		},
		[]string{"to"},
	)

	PaymentGatewayLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_gateway_latency_seconds",
			Help:    "Payment gateway call latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)
)

// RecordHTTPRequestDuration records one served request on the duration histogram.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementDonationOutcome counts one donation attempt by its outcome.
func IncrementDonationOutcome(outcome string) {
	DonationOutcomes.WithLabelValues(outcome).Inc()
}

// IncrementCampaignTransition counts one lifecycle transition by target status.
func IncrementCampaignTransition(to string) {
	CampaignTransitions.WithLabelValues(to).Inc()
}
