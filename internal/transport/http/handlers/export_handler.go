package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	exportsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/export"
	spoolsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/spool"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/transport/http/dto"
)

const ExportIDHeader = "X-Export-ID"

type DeliveryObserver interface {
	ObserveDelivery(backend string, ok bool)
}

type ExportHandler struct {
	service      *exportsvc.Service
	spool        spoolsvc.Spool
	maxBodyBytes int64
	observer     DeliveryObserver
	logger       *zap.Logger
}

func NewExportHandler(service *exportsvc.Service, spool spoolsvc.Spool, maxBodyBytes int64, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{
		service:      service,
		spool:        spool,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

func (h *ExportHandler) AttachObserver(observer DeliveryObserver) {
	h.observer = observer
}

func (h *ExportHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if h.service == nil || h.spool == nil {
		writeInternal(w, "EXPORT_SERVICE_UNAVAILABLE", "export service is unavailable")
		return
	}

	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	var req dto.ExportRequest
	if err := decodeJSON(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeTooLarge(w, "PAYLOAD_TOO_LARGE", fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeBadRequest(w, "VALIDATION_ERROR", "body must be {\"data\": [ {record}, ... ]}")
		return
	}
	if req.Data == nil {
		writeBadRequest(w, "VALIDATION_ERROR", "data field is required")
		return
	}

	ctx := exportsvc.WithClient(r.Context(), ClientKey(r))
	doc, err := h.service.Export(ctx, *req.Data)
	if err != nil {
		switch {
		case errors.Is(err, exportsvc.ErrEmptyInput):
			writeBadRequest(w, "EMPTY_INPUT", "data must not be empty")
		case errors.Is(err, exportsvc.ErrTooManyRecords):
			writeTooLarge(w, "TOO_MANY_RECORDS", err.Error())
		default:
			writeInternal(w, "SERIALIZATION_FAILED", "failed to build excel file")
		}
		return
	}

	artifact, err := h.spool.Stage(r.Context(), doc)
	if err != nil {
		h.observeDelivery(false)
		h.logger.Error("stage export artifact failed",
			zap.String("export_id", doc.ID),
			zap.String("backend", h.spool.Backend()),
			zap.Error(err),
		)
		writeInternal(w, "DELIVERY_FAILED", "failed to deliver excel file")
		return
	}
	defer func() {
		if err := artifact.Close(); err != nil {
			h.logger.Warn("release export artifact failed", zap.String("export_id", doc.ID), zap.Error(err))
		}
	}()

	header := w.Header()
	header.Set("Content-Type", doc.MimeType)
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	header.Set("Content-Length", strconv.FormatInt(artifact.Size(), 10))
	header.Set(ExportIDHeader, doc.ID)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, artifact); err != nil {
		h.observeDelivery(false)
		h.logger.Warn("stream export artifact failed", zap.String("export_id", doc.ID), zap.Error(err))
		return
	}
	h.observeDelivery(true)
}

func (h *ExportHandler) observeDelivery(ok bool) {
	if h.observer != nil {
		h.observer.ObserveDelivery(h.spool.Backend(), ok)
	}
}
