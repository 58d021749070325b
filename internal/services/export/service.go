package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/rules"
	pgrepo "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/repo/postgres"
)

const (
	defaultSheetName = "Data Export"
	fileNameLayout   = "20060102_150405"

	StatusOK             = "ok"
	StatusEmptyInput     = "empty_input"
	StatusTooManyRecords = "too_many_records"
	StatusFailed         = "serialization_failed"
)

type Config struct {
	SheetName  string
	MaxRecords int
}

// Observer receives the outcome of every export call.
type Observer interface {
	ObserveExport(status string, rows int, size int64, duration time.Duration)
}

type Journal interface {
	Insert(ctx context.Context, entry pgrepo.ExportJournalRecord) error
}

type Service struct {
	order    rules.ColumnOrder
	cfg      Config
	logger   *zap.Logger
	observer Observer
	journal  Journal
	now      func() time.Time
	newID    func() string
}

func NewService(order rules.ColumnOrder, cfg Config, logger *zap.Logger) *Service {
	if strings.TrimSpace(cfg.SheetName) == "" {
		cfg.SheetName = defaultSheetName
	}
	if cfg.MaxRecords < 0 {
		cfg.MaxRecords = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		order:  order,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *Service) AttachObserver(observer Observer) {
	s.observer = observer
}

func (s *Service) AttachJournal(journal Journal) {
	s.journal = journal
}

// Table resolves columns for records without rendering anything.
func (s *Service) Table(records []model.Record) (model.Table, error) {
	if len(records) == 0 {
		return model.Table{}, ErrEmptyInput
	}
	return model.Table{
		Columns: s.order.Resolve(records),
		Records: records,
	}, nil
}

// Grid returns the projected cell grid that Export would serialize.
func (s *Service) Grid(records []model.Record) (Grid, error) {
	table, err := s.Table(records)
	if err != nil {
		return Grid{}, err
	}
	return buildGrid(s.cfg.SheetName, table), nil
}

// Export renders records into an xlsx document. It fails with ErrEmptyInput
// when records is empty and with ErrSerialization when the workbook cannot
// be encoded; no document is returned on failure.
func (s *Service) Export(ctx context.Context, records []model.Record) (model.Document, error) {
	start := s.now()
	id := s.newID()

	doc, err := s.export(id, start, records)
	duration := s.now().Sub(start)
	status := statusOf(err)

	if s.observer != nil {
		s.observer.ObserveExport(status, len(records), doc.Size(), duration)
	}
	s.record(ctx, id, doc, records, status, duration)

	if err != nil {
		s.logger.Warn("export failed",
			zap.String("export_id", id),
			zap.Int("records", len(records)),
			zap.String("status", status),
			zap.Error(err),
		)
		return model.Document{}, err
	}

	s.logger.Info("export completed",
		zap.String("export_id", id),
		zap.String("file_name", doc.FileName),
		zap.Int("rows", doc.Rows),
		zap.Int("columns", len(doc.Columns)),
		zap.Int64("bytes", doc.Size()),
		zap.Duration("duration", duration),
	)
	return doc, nil
}

func (s *Service) export(id string, start time.Time, records []model.Record) (model.Document, error) {
	if len(records) == 0 {
		return model.Document{}, ErrEmptyInput
	}
	if s.cfg.MaxRecords > 0 && len(records) > s.cfg.MaxRecords {
		return model.Document{}, fmt.Errorf("%w: %d > %d", ErrTooManyRecords, len(records), s.cfg.MaxRecords)
	}

	table, err := s.Table(records)
	if err != nil {
		return model.Document{}, err
	}

	grid := buildGrid(s.cfg.SheetName, table)
	for _, tc := range grid.Truncated {
		s.logger.Warn("export cell text truncated",
			zap.String("export_id", id),
			zap.String("column", tc.Column),
			zap.Int("cells", tc.Cells),
			zap.Int("first_row", tc.FirstRow),
			zap.Int("max_chars", excelize.TotalCellChars),
		)
	}

	payload, err := encode(grid)
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	return model.Document{
		ID:        id,
		Bytes:     payload,
		FileName:  FileName(start),
		MimeType:  model.SpreadsheetMimeType,
		Columns:   table.Columns,
		Rows:      len(table.Records),
		CreatedAt: start.UTC(),
	}, nil
}

func (s *Service) record(ctx context.Context, id string, doc model.Document, records []model.Record, status string, duration time.Duration) {
	if s.journal == nil {
		return
	}

	entry := pgrepo.ExportJournalRecord{
		ID:         id,
		FileName:   doc.FileName,
		Rows:       len(records),
		Columns:    []string(doc.Columns),
		SizeBytes:  doc.Size(),
		Duration:   duration,
		Status:     status,
		Client:     ClientFromContext(ctx),
		OccurredAt: s.now().UTC(),
	}
	if err := s.journal.Insert(ctx, entry); err != nil {
		s.logger.Warn("export journal insert failed", zap.String("export_id", id), zap.Error(err))
	}
}

// FileName is the suggested download name for an export started at ts.
func FileName(ts time.Time) string {
	return "export_" + ts.Format(fileNameLayout) + ".xlsx"
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrEmptyInput):
		return StatusEmptyInput
	case errors.Is(err, ErrTooManyRecords):
		return StatusTooManyRecords
	default:
		return StatusFailed
	}
}
