package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetrics(t *testing.T) {
	m := New()

	m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
	m.RequestFinished("POST", "POST /scan-handover", 400, 20*time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "POST /scan-handover", "400")))
}

func TestDomainMetrics(t *testing.T) {
	m := New()

	m.ModelCall("audit", nil, time.Second)
	m.ModelCall("audit", errors.New("boom"), time.Second)
	m.HandoverScan("invalid_code")
	m.ImageUpload(true)
	m.ImageUpload(false)
	m.CodesCleared(3)
	m.RateLimited("POST /chat-ai")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelCalls.WithLabelValues("audit", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelCalls.WithLabelValues("audit", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handoverScans.WithLabelValues("invalid_code")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imageUploads.WithLabelValues("error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.codesCleared))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited.WithLabelValues("POST /chat-ai")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.HandoverScan("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `pharmagrid_handover_scans_total{result="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
