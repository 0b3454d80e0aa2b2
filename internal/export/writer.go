// Package export writes matched items to a CSV report.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agallego-css/GraphTools/internal/pipeline"
)

// header defines the report columns, one row per item in encounter order.
var header = []string{
	"Subject", "Organizer", "Attendees", "Location",
	"Start Time", "End Time", "Type", "Item Id",
}

// Writer writes the CSV report. It implements pipeline.Executor, so an
// export run is just a pipeline run whose action is "append a row".
// Export never touches remote state.
type Writer struct {
	file *os.File
	csv  *csv.Writer
	rows int
}

// NewWriter creates the report file at path and writes the header row.
// Parent directories are created as needed.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not create report directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create report file: %w", err)
	}

	w := &Writer{file: file, csv: csv.NewWriter(file)}
	if err := w.csv.Write(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}
	return w, nil
}

// DefaultPath builds the default report location in the temp directory,
// named after the action and the current date.
func DefaultPath(action string) string {
	fileName := fmt.Sprintf("_graphtools_%s_%s.csv", action, time.Now().Format("2006-01-02"))
	return filepath.Join(os.TempDir(), fileName)
}

// Execute implements pipeline.Executor by appending one row for the item.
func (w *Writer) Execute(_ context.Context, item pipeline.Item) error {
	row := []string{
		orNA(item.Subject),
		orNA(item.Organizer),
		orNA(strings.Join(item.Attendees, "; ")),
		orNA(item.Location),
		formatTime(item.Start),
		formatTime(item.End),
		orNA(item.Type),
		orNA(item.ID),
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("failed to write report row: %w", err)
	}
	w.rows++
	return nil
}

// Rows returns the number of item rows written so far.
func (w *Writer) Rows() int {
	return w.rows
}

// Path returns the report file location.
func (w *Writer) Path() string {
	return w.file.Name()
}

// Close flushes and closes the report file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("error flushing report: %w", err)
	}
	return w.file.Close()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format(time.RFC3339)
}
