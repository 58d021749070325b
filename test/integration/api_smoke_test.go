package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/app/apiapp"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/config"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/auth"
)

func startServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.HTTP.Addr = ":0"
	cfg.Spool.Dir = t.TempDir()
	if mutate != nil {
		mutate(&cfg)
	}

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}

	ts := httptest.NewServer(app.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = app.Shutdown(context.Background())
	})
	return ts
}

func postJSON(t *testing.T, url, body string, header http.Header) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	ts := startServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.OK {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestConvertToExcelRoundTrip(t *testing.T) {
	spoolDir := t.TempDir()
	ts := startServer(t, func(cfg *config.Config) { cfg.Spool.Dir = spoolDir })

	resp := postJSON(t, ts.URL+"/convert-to-excel",
		`{"data":[{"Brand":"A","Category":"X","Foo":1},{"Category":"Y","Foo":2.5,"Note":null}]}`, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status: got %d body=%s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `filename="export_`) {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Data Export")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	wantHeader := []string{"Category", "Brand", "Foo", "Note"}
	if strings.Join(rows[0], "|") != strings.Join(wantHeader, "|") {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "X" || rows[1][1] != "A" || rows[1][2] != "1" {
		t.Fatalf("unexpected first data row %v", rows[1])
	}
	if rows[2][0] != "Y" || rows[2][2] != "2.5" {
		t.Fatalf("unexpected second data row %v", rows[2])
	}

	entries, err := os.ReadDir(spoolDir)
	if err != nil {
		t.Fatalf("read spool dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("spool artifact not released: %d files left", len(entries))
	}
}

func TestConvertToExcelRejectsEmptyData(t *testing.T) {
	ts := startServer(t, nil)

	resp := postJSON(t, ts.URL+"/convert-to-excel", `{"data":[]}`, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if apiErr.Code != "EMPTY_INPUT" {
		t.Fatalf("unexpected error code %q", apiErr.Code)
	}
}

func TestConvertToExcelRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	ts := startServer(t, func(cfg *config.Config) {
		cfg.Redis.Addr = mr.Addr()
		cfg.Rate.PerMinute = 10
		cfg.Rate.Per10Sec = 1
	})

	first := postJSON(t, ts.URL+"/convert-to-excel", `{"data":[{"a":1}]}`, nil)
	_, _ = io.Copy(io.Discard, first.Body)
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first request: got %d want %d", first.StatusCode, http.StatusOK)
	}

	second := postJSON(t, ts.URL+"/convert-to-excel", `{"data":[{"a":1}]}`, nil)
	defer second.Body.Close()
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d want %d", second.StatusCode, http.StatusTooManyRequests)
	}

	var rateErr struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.NewDecoder(second.Body).Decode(&rateErr); err != nil {
		t.Fatalf("decode rate limit error: %v", err)
	}
	if rateErr.Code != "TOO_MANY_REQUESTS" || rateErr.RetryAfterSec <= 0 {
		t.Fatalf("unexpected rate limit body %+v", rateErr)
	}
}

func TestExportWithBearerToken(t *testing.T) {
	const secret = "integration-secret"
	ts := startServer(t, func(cfg *config.Config) { cfg.Auth.JWTSecret = secret })

	token, _, err := auth.NewJWTManager(secret, 0).Generate("integration")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	resp := postJSON(t, ts.URL+"/v1/export", `{"data":[{"a":1}]}`, http.Header{
		"Authorization": []string{"Bearer " + token},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}
}
