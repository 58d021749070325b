package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/config"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()

	cfg := config.Default()
	cfg.Spool.Backend = config.SpoolBackendMemory
	cfg.Spool.CleanupSchedule = ""
	if mutate != nil {
		mutate(&cfg)
	}

	app, err := New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

func TestRoutesServeInfoHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, nil)

	for _, path := range []string{"/", "/healthz", "/metrics"} {
		rr := httptest.NewRecorder()
		app.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s: got %d want %d", path, rr.Code, http.StatusOK)
		}
	}
}

func TestMetricsRouteDisabled(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) { cfg.Metrics.Enabled = false })

	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}
}

func TestExportRoutesRequireTokenWhenSecretSet(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) { cfg.Auth.JWTSecret = "route-secret" })

	for _, path := range []string{"/convert-to-excel", "/v1/export"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"data":[{"a":1}]}`))
		app.Handler().ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("POST %s: got %d want %d", path, rr.Code, http.StatusUnauthorized)
		}
	}
}

func TestConvertRouteUsesConfiguredColumns(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Export.PreferredColumns = []string{"b", "a"}
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/export", strings.NewReader(`{"data":[{"a":1,"b":2}]}`))
	app.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Body.Len() == 0 {
		t.Fatalf("expected workbook bytes")
	}
}
