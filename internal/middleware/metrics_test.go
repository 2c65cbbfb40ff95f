package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/project-directory/directory/internal/telemetry"
)

// counterValue returns the current value of the series selected by labels.
func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var m dto.Metric
	if err := cv.WithLabelValues(labels...).Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

// histogramCount returns the sample count of the series selected by labels.
func histogramCount(t *testing.T, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	obs, err := hv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues: %v", err)
	}
	var m dto.Metric
	if err := obs.(prometheus.Metric).Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func serveMetrics(status int, target string) {
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/metrics-test/:id", func(c *gin.Context) { c.Status(status) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
}

// ---------------------------------------------------------------------------
// MetricsMiddleware tests
// ---------------------------------------------------------------------------

func TestMetricsMiddleware_CountsByRouteTemplate(t *testing.T) {
	before := counterValue(t, telemetry.HTTPRequestsTotal, "GET", "/metrics-test/:id", "200")

	serveMetrics(http.StatusOK, "/metrics-test/42")

	if got := counterValue(t, telemetry.HTTPRequestsTotal, "GET", "/metrics-test/:id", "200") - before; got != 1 {
		t.Errorf("http_requests_total delta = %v, want 1", got)
	}
	raw := counterValue(t, telemetry.HTTPRequestsTotal, "GET", "/metrics-test/42", "200")
	if raw != 0 {
		t.Errorf("raw URL used as path label (%v samples)", raw)
	}
}

func TestMetricsMiddleware_RecordsDuration(t *testing.T) {
	before := histogramCount(t, telemetry.HTTPRequestDuration, "GET", "/metrics-test/:id")

	serveMetrics(http.StatusOK, "/metrics-test/99")

	if after := histogramCount(t, telemetry.HTTPRequestDuration, "GET", "/metrics-test/:id"); after != before+1 {
		t.Errorf("sample count = %d, want %d", after, before+1)
	}
}

func TestMetricsMiddleware_ErrorStatus(t *testing.T) {
	before := counterValue(t, telemetry.HTTPRequestsTotal, "GET", "/metrics-test/:id", "502")

	serveMetrics(http.StatusBadGateway, "/metrics-test/err")

	if got := counterValue(t, telemetry.HTTPRequestsTotal, "GET", "/metrics-test/:id", "502") - before; got != 1 {
		t.Errorf("http_requests_total{status=502} delta = %v, want 1", got)
	}
}

func TestMetricsMiddleware_NoRouteLabel(t *testing.T) {
	before := counterValue(t, telemetry.HTTPRequestsTotal, "GET", noRouteLabel, "404")

	serveMetrics(http.StatusOK, "/does-not-exist")

	if got := counterValue(t, telemetry.HTTPRequestsTotal, "GET", noRouteLabel, "404") - before; got != 1 {
		t.Errorf("http_requests_total{path=<no-route>} delta = %v, want 1", got)
	}
}
