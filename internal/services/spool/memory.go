package spool

import (
	"bytes"
	"context"
	"time"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
)

type MemorySpool struct{}

func NewMemorySpool() *MemorySpool {
	return &MemorySpool{}
}

func (s *MemorySpool) Backend() string {
	return "memory"
}

func (s *MemorySpool) Stage(_ context.Context, doc model.Document) (Artifact, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}
	return &memoryArtifact{Reader: bytes.NewReader(doc.Bytes), size: doc.Size()}, nil
}

func (s *MemorySpool) SweepOlderThan(context.Context, time.Time) (int, error) {
	return 0, nil
}

type memoryArtifact struct {
	*bytes.Reader
	size int64
}

func (a *memoryArtifact) Size() int64 {
	return a.size
}

func (a *memoryArtifact) Close() error {
	return nil
}
