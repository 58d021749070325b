package handlers

import (
	"net/http"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/transport/http/dto"
	httperrors "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/transport/http/errors"
)

type InfoHandler struct {
	version string
}

func NewInfoHandler(version string) *InfoHandler {
	if version == "" {
		version = "dev"
	}
	return &InfoHandler{version: version}
}

func (h *InfoHandler) Get(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, dto.InfoResponse{
		Message: "JSON to Excel Converter API",
		Version: h.version,
		Endpoints: map[string]string{
			"POST /convert-to-excel": "convert JSON records into an Excel file",
			"POST /v1/export":        "same as POST /convert-to-excel",
			"GET /healthz":           "liveness probe",
			"GET /":                  "API information",
		},
	})
}
