package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Transcript captures the diagnostic log stream of a single run to a file
// in the system temp directory, alongside the CSV audit files.
// Filename pattern: %TEMP%\_{toolName}_{action}_{date}.log
type Transcript struct {
	file *os.File
}

// StartTranscript opens the run log file for the given tool and action.
// The file is appended to so multiple runs on the same day share one log.
func StartTranscript(toolName, action string) (*Transcript, error) {
	tempDir := os.TempDir()
	dateStr := time.Now().Format("2006-01-02")
	fileName := fmt.Sprintf("_%s_%s_%s.log", toolName, action, dateStr)
	filePath := filepath.Join(tempDir, fileName)

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not create run log file: %w", err)
	}

	// Run separator so consecutive runs are distinguishable in the shared file
	fmt.Fprintf(file, "---- run started %s ----\n", time.Now().Format(time.RFC3339))

	fmt.Printf("Transcript started, output file is %s\n", filePath)
	return &Transcript{file: file}, nil
}

// Path returns the run log file path.
func (t *Transcript) Path() string {
	return t.file.Name()
}

// Writer returns an io.Writer that tees log output to both stderr and the
// run log file. Pass it to the slog handler.
func (t *Transcript) Writer() io.Writer {
	return io.MultiWriter(os.Stderr, t.file)
}

// Close ends the run log.
func (t *Transcript) Close() error {
	fmt.Fprintf(t.file, "---- run ended %s ----\n", time.Now().Format(time.RFC3339))
	return t.file.Close()
}
