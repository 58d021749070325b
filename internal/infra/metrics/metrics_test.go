package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveExportCountsByStatus(t *testing.T) {
	c := NewCollector("test")

	c.ObserveExport("ok", 3, 5120, 20*time.Millisecond)
	c.ObserveExport("ok", 1, 4096, 10*time.Millisecond)
	c.ObserveExport("empty_input", 0, 0, time.Millisecond)

	if got := testutil.ToFloat64(c.exportsTotal.WithLabelValues("ok")); got != 2 {
		t.Fatalf("unexpected ok exports: %v", got)
	}
	if got := testutil.ToFloat64(c.exportsTotal.WithLabelValues("empty_input")); got != 1 {
		t.Fatalf("unexpected empty_input exports: %v", got)
	}
	if got := testutil.CollectAndCount(c.exportSize); got != 1 {
		t.Fatalf("unexpected size histogram series: %d", got)
	}
}

func TestObserveDelivery(t *testing.T) {
	c := NewCollector("")

	c.ObserveDelivery("file", true)
	c.ObserveDelivery("file", false)
	c.ObserveDelivery("file", false)

	if got := testutil.ToFloat64(c.deliveries.WithLabelValues("file", "error")); got != 2 {
		t.Fatalf("unexpected failed deliveries: %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector("test")
	c.ObserveExport("ok", 2, 8192, 5*time.Millisecond)

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `test_exports_total{status="ok"} 1`) {
		t.Fatalf("exports counter missing from exposition:\n%s", rr.Body.String())
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveExport("ok", 1, 1, time.Millisecond)
	c.ObserveDelivery("memory", true)
}
