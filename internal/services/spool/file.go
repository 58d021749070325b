package spool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
)

// FileSpool stages documents as temporary files in dir.
type FileSpool struct {
	dir    string
	prefix string
}

func NewFileSpool(dir, prefix string) (*FileSpool, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create spool dir %q: %w", dir, err)
	}
	return &FileSpool{dir: dir, prefix: prefix}, nil
}

func (s *FileSpool) Backend() string {
	return "file"
}

func (s *FileSpool) Stage(_ context.Context, doc model.Document) (Artifact, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, s.prefix+doc.ID+artifactExt)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}

	artifact := &fileArtifact{file: f, size: doc.Size()}
	if _, err := f.Write(doc.Bytes); err != nil {
		_ = artifact.Close()
		return nil, fmt.Errorf("write spool file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = artifact.Close()
		return nil, fmt.Errorf("rewind spool file: %w", err)
	}

	return artifact, nil
}

func (s *FileSpool) SweepOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read spool dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || !isArtifactName(entry.Name(), s.prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("remove stale spool file %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

type fileArtifact struct {
	file *os.File
	size int64

	closeOnce sync.Once
	closeErr  error
}

func (a *fileArtifact) Read(p []byte) (int, error) {
	return a.file.Read(p)
}

func (a *fileArtifact) Size() int64 {
	return a.size
}

// Close closes and deletes the temporary file. It is safe to call twice.
func (a *fileArtifact) Close() error {
	a.closeOnce.Do(func() {
		closeErr := a.file.Close()
		removeErr := os.Remove(a.file.Name())
		if errors.Is(removeErr, os.ErrNotExist) {
			removeErr = nil
		}
		a.closeErr = errors.Join(closeErr, removeErr)
	})
	return a.closeErr
}
