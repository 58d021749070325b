// Package spool holds a generated document between export and delivery.
// Every staged Artifact owns its transient storage and releases it on Close,
// whether delivery succeeded or not.
package spool

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
)

const artifactExt = ".xlsx"

var ErrInvalidDocument = errors.New("document has no id or payload")

type Artifact interface {
	io.ReadCloser
	Size() int64
}

type Spool interface {
	Backend() string
	Stage(ctx context.Context, doc model.Document) (Artifact, error)
}

// Sweeper removes artifacts left behind by crashed deliveries.
type Sweeper interface {
	SweepOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

func validate(doc model.Document) error {
	if doc.ID == "" || len(doc.Bytes) == 0 {
		return ErrInvalidDocument
	}
	return nil
}

// isArtifactName reports whether name looks like "<prefix><uuid>...xlsx".
func isArtifactName(name, prefix string) bool {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, artifactExt) {
		return false
	}
	rest := strings.TrimPrefix(name, prefix)
	if len(rest) < 36 {
		return false
	}
	_, err := uuid.Parse(rest[:36])
	return err == nil
}
