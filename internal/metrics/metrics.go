package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Request volume per route and status class.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fitcoach_requests_total",
		Help: "Total number of API requests received.",
	}, []string{"method", "path", "status"})

	// Concurrency (in flight)
	ActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fitcoach_active_requests",
		Help: "Current number of in-flight requests.",
	})

	// Request latency (handler duration)
	RequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fitcoach_request_duration_seconds",
		Help:    "End-to-end handler duration for API requests.",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method", "path"})

	// Gamification throughput
	PointsAwardedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fitcoach_points_awarded_total",
		Help: "Total streak points awarded, by source.",
	}, []string{"source"})

	// Plan generation volume
	PlansGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fitcoach_plans_generated_total",
		Help: "Total plans generated, by kind.",
	}, []string{"kind"})

	// Coach chat volume
	ChatMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fitcoach_chat_messages_total",
		Help: "Total AI coach messages handled.",
	})
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		RequestsTotal,
		ActiveRequests,
		RequestDurationSeconds,
		PointsAwardedTotal,
		PlansGeneratedTotal,
		ChatMessagesTotal,
	)
}
