package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devmatch_connection_requests_total",
			Help: "Connection requests created, by initial status",
		},
		[]string{"status"},
	)

	reviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devmatch_connection_reviews_total",
			Help: "Connection requests reviewed, by decision",
		},
		[]string{"decision"},
	)

	feedPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devmatch_feed_pages_total",
			Help: "Feed pages served",
		},
	)

	feedPageSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "devmatch_feed_page_users",
			Help:    "Users returned per feed page",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devmatch_notifications_total",
			Help: "Notification deliveries, by kind and result",
		},
		[]string{"kind", "result"},
	)

	chatMessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devmatch_chat_messages_total",
			Help: "Chat messages persisted",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devmatch_http_requests_total",
			Help: "HTTP requests, by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devmatch_http_request_duration_seconds",
			Help:    "HTTP request latency, by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	wsConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "devmatch_ws_connections",
			Help: "Open websocket connections",
		},
	)
)

func RecordConnectionRequest(status string) {
	connectionRequestsTotal.WithLabelValues(status).Inc()
}

func RecordReview(decision string) {
	reviewsTotal.WithLabelValues(decision).Inc()
}

func RecordFeedPage(users int) {
	feedPagesTotal.Inc()
	feedPageSize.Observe(float64(users))
}

// RecordNotification counts a delivery; result is "sent", "failed" or "dropped".
func RecordNotification(kind, result string) {
	notificationsTotal.WithLabelValues(kind, result).Inc()
}

func RecordChatMessage() {
	chatMessagesTotal.Inc()
}

func WSConnected() {
	wsConnections.Inc()
}

func WSDisconnected() {
	wsConnections.Dec()
}

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
