package rules

import (
	"strings"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
)

var defaultPreferredColumns = [...]string{
	"Category",
	"Brand",
	"Model",
	"Color",
	"DDP (RUB)",
	"Valid Until",
	"Markup Serb",
	"Markup RU",
	"Exchange Rate",
	"Qty Offered",
	"Date Offered",
	"Qty Ordered",
	"Date Ordered",
}

// ColumnOrder resolves the column layout of an export. Names listed in the
// preferred order come first; everything else follows in first-seen order.
// A ColumnOrder is never modified after construction.
type ColumnOrder struct {
	preferred []string
}

func DefaultColumnOrder() ColumnOrder {
	return NewColumnOrder(defaultPreferredColumns[:]...)
}

// NewColumnOrder copies names, dropping blanks and duplicates.
func NewColumnOrder(names ...string) ColumnOrder {
	seen := make(map[string]struct{}, len(names))
	preferred := make([]string, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		preferred = append(preferred, name)
	}
	return ColumnOrder{preferred: preferred}
}

func (o ColumnOrder) Preferred() []string {
	out := make([]string, len(o.preferred))
	copy(out, o.preferred)
	return out
}

// Resolve returns every field name found in records exactly once. It
// returns nil for an empty input.
func (o ColumnOrder) Resolve(records []model.Record) model.ColumnSpec {
	if len(records) == 0 {
		return nil
	}

	columns := make(model.ColumnSpec, 0, len(o.preferred))
	seen := make(map[string]struct{}, len(o.preferred))

	for _, name := range o.preferred {
		for _, rec := range records {
			if rec.Has(name) {
				columns = append(columns, name)
				seen[name] = struct{}{}
				break
			}
		}
	}

	for _, rec := range records {
		for _, key := range rec.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}

	return columns
}
