package graphflow

import "context"

// NullRunLogger is a no-op implementation of RunLogger.
type NullRunLogger struct{}

func NewNullRunLogger() *NullRunLogger {
	return &NullRunLogger{}
}

func (l *NullRunLogger) LogEntry(ctx context.Context, runID string, entry *LogEntry) error {
	return nil
}

func (l *NullRunLogger) GetRunHistory(ctx context.Context, runID string) ([]*LogEntry, error) {
	return nil, nil
}
