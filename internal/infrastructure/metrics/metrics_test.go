package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordConnectionRequest(t *testing.T) {
	before := testutil.ToFloat64(connectionRequestsTotal.WithLabelValues("interested"))
	RecordConnectionRequest("interested")
	assert.Equal(t, before+1, testutil.ToFloat64(connectionRequestsTotal.WithLabelValues("interested")))
}

func TestRecordNotification(t *testing.T) {
	before := testutil.ToFloat64(notificationsTotal.WithLabelValues("request_sent", "failed"))
	RecordNotification("request_sent", "failed")
	assert.Equal(t, before+1, testutil.ToFloat64(notificationsTotal.WithLabelValues("request_sent", "failed")))
}

func TestWSGauge(t *testing.T) {
	before := testutil.ToFloat64(wsConnections)
	WSConnected()
	WSConnected()
	WSDisconnected()
	assert.Equal(t, before+1, testutil.ToFloat64(wsConnections))
}

func TestObserveHTTPRequest(t *testing.T) {
	counter := httpRequestsTotal.WithLabelValues("GET", "/api/v1/user/feed", "200")
	before := testutil.ToFloat64(counter)
	ObserveHTTPRequest("GET", "/api/v1/user/feed", 200, 15*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
