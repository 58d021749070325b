package spool

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
)

const testID = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

func testDocument() model.Document {
	return model.Document{
		ID:       testID,
		Bytes:    []byte("PK\x03\x04 workbook bytes"),
		FileName: "export_20251008_143005.xlsx",
		MimeType: model.SpreadsheetMimeType,
	}
}

func TestFileSpoolStageAndRelease(t *testing.T) {
	dir := t.TempDir()
	sp, err := NewFileSpool(dir, "export-")
	if err != nil {
		t.Fatalf("new file spool: %v", err)
	}

	doc := testDocument()
	artifact, err := sp.Stage(context.Background(), doc)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if artifact.Size() != doc.Size() {
		t.Fatalf("unexpected size: got %d want %d", artifact.Size(), doc.Size())
	}

	path := filepath.Join(dir, "export-"+testID+".xlsx")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected staged file at %s: %v", path, err)
	}

	got, err := io.ReadAll(artifact)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.Equal(got, doc.Bytes) {
		t.Fatalf("artifact payload mismatch: %q", got)
	}

	if err := artifact.Close(); err != nil {
		t.Fatalf("close artifact: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected staged file to be removed, stat err=%v", err)
	}
	if err := artifact.Close(); err != nil {
		t.Fatalf("second close must be a no-op, got %v", err)
	}
}

func TestFileSpoolReleasesUnreadArtifact(t *testing.T) {
	dir := t.TempDir()
	sp, err := NewFileSpool(dir, "export-")
	if err != nil {
		t.Fatalf("new file spool: %v", err)
	}

	artifact, err := sp.Stage(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := artifact.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty spool dir, got %d entries", len(entries))
	}
}

func TestFileSpoolRejectsEmptyDocument(t *testing.T) {
	sp, err := NewFileSpool(t.TempDir(), "export-")
	if err != nil {
		t.Fatalf("new file spool: %v", err)
	}
	if _, err := sp.Stage(context.Background(), model.Document{ID: testID}); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

func TestFileSpoolSweepOlderThan(t *testing.T) {
	dir := t.TempDir()
	sp, err := NewFileSpool(dir, "export-")
	if err != nil {
		t.Fatalf("new file spool: %v", err)
	}

	stale := filepath.Join(dir, "export-"+testID+".xlsx")
	fresh := filepath.Join(dir, "export-6ba7b810-9dad-11d1-80b4-00c04fd430c8.xlsx")
	foreign := filepath.Join(dir, "export-report.xlsx")
	for _, path := range []string{stale, fresh, foreign} {
		if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	old := time.Now().Add(-2 * time.Hour)
	for _, path := range []string{stale, foreign} {
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}

	removed, err := sp.SweepOlderThan(context.Background(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed artifact, got %d", removed)
	}
	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stale artifact still present")
	}
	for _, path := range []string{fresh, foreign} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to survive sweep: %v", path, err)
		}
	}
}

func TestMemorySpool(t *testing.T) {
	sp := NewMemorySpool()
	doc := testDocument()

	artifact, err := sp.Stage(context.Background(), doc)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	defer func() { _ = artifact.Close() }()

	got, err := io.ReadAll(artifact)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, doc.Bytes) || artifact.Size() != doc.Size() {
		t.Fatalf("unexpected memory artifact: size=%d payload=%q", artifact.Size(), got)
	}
}

func TestIsArtifactName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"export-" + testID + ".xlsx", true},
		{"export-" + testID + ".csv", false},
		{"other-" + testID + ".xlsx", false},
		{"export-short.xlsx", false},
		{"export-zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz.xlsx", false},
	}
	for _, tc := range cases {
		if got := isArtifactName(tc.name, "export-"); got != tc.want {
			t.Fatalf("isArtifactName(%q)=%v want %v", tc.name, got, tc.want)
		}
	}
}
