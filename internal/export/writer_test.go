package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agallego-css/GraphTools/internal/pipeline"
)

func TestWriterProducesOneRowPerItem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	start := time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC)
	items := []pipeline.Item{
		{
			ID:        "id-1",
			Subject:   "Team Meeting",
			Organizer: "boss@example.com",
			Attendees: []string{"a@example.com", "b@example.com"},
			Location:  "Room 4",
			Start:     start,
			End:       start.Add(time.Hour),
			Type:      "singleInstance",
		},
		{
			ID:      "id-2",
			Subject: "Follow-up",
		},
	}

	ctx := context.Background()
	for _, it := range items {
		if err := w.Execute(ctx, it); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}
	if w.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", w.Rows())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("report has %d rows, want header + 2 items", len(records))
	}
	for i, rec := range records {
		if len(rec) != 8 {
			t.Errorf("row %d has %d columns, want 8", i, len(rec))
		}
	}

	first := records[1]
	if first[0] != "Team Meeting" {
		t.Errorf("Subject column = %q", first[0])
	}
	if first[2] != "a@example.com; b@example.com" {
		t.Errorf("Attendees column = %q, want semicolon-space join", first[2])
	}
	if first[4] != "2026-01-15T13:00:00Z" {
		t.Errorf("Start Time column = %q", first[4])
	}

	// Missing fields are N/A, and encounter order is preserved.
	second := records[2]
	if second[0] != "Follow-up" || second[1] != "N/A" || second[4] != "N/A" {
		t.Errorf("second row = %v, want N/A for missing fields", second)
	}
}

func TestWriterCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "report.csv")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("report file missing: %v", err)
	}
}

func TestDefaultPathUsesActionAndDate(t *testing.T) {
	path := DefaultPath("exportcal")
	base := filepath.Base(path)
	wantPrefix := "_graphtools_exportcal_"
	if len(base) <= len(wantPrefix) || base[:len(wantPrefix)] != wantPrefix {
		t.Errorf("DefaultPath() base = %q, want prefix %q", base, wantPrefix)
	}
}
