package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/transport/http/dto"
)

func TestInfoHandlerResponseShape(t *testing.T) {
	h := NewInfoHandler("1.2.3")

	rr := httptest.NewRecorder()
	h.Get(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var resp dto.InfoResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Version != "1.2.3" || resp.Message == "" {
		t.Fatalf("unexpected info response: %+v", resp)
	}
	if _, ok := resp.Endpoints["POST /convert-to-excel"]; !ok {
		t.Fatalf("convert endpoint missing from info: %+v", resp.Endpoints)
	}
}

func TestHealthHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler().Get(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "{\"ok\":true}\n" {
		t.Fatalf("unexpected health response: %d %q", rr.Code, rr.Body.String())
	}
}
