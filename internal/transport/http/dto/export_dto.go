package dto

import "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"

// ExportRequest is the body of POST /convert-to-excel. Data is a pointer
// slice so a missing field can be told apart from an empty list.
type ExportRequest struct {
	Data *[]model.Record `json:"data"`
}

type InfoResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}
