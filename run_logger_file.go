package graphflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileRunLogger is an implementation of RunLogger that logs to a file.
// A file is created per run. The file is formatted as newline-delimited JSON.
type FileRunLogger struct {
	directory string
}

func NewFileRunLogger(directory string) *FileRunLogger {
	return &FileRunLogger{directory: directory}
}

func (l *FileRunLogger) runLogPath(runID string) string {
	return filepath.Join(l.directory, fmt.Sprintf("%s.jsonl", runID))
}

func (l *FileRunLogger) GetRunHistory(ctx context.Context, runID string) ([]*LogEntry, error) {
	data, err := os.ReadFile(l.runLogPath(runID))
	if err != nil {
		return nil, err
	}
	var entries []*LogEntry
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (l *FileRunLogger) LogEntry(ctx context.Context, runID string, entry *LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	filePath := l.runLogPath(runID)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}
