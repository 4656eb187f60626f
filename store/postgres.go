package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/gridline-ai/graphflow"
	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS graphflow_graphs (
	graph_id   TEXT PRIMARY KEY,
	definition JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS graphflow_runs (
	run_id     TEXT PRIMARY KEY,
	graph_id   TEXT NOT NULL,
	status     TEXT NOT NULL,
	record     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS graphflow_runs_graph_id_idx ON graphflow_runs (graph_id);
`

// PostgresStore persists graphs and runs as JSONB rows.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	store := &PostgresStore{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveGraph(ctx context.Context, graph *graphflow.Graph) error {
	definition, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO graphflow_graphs (graph_id, definition)
		VALUES ($1, $2)
		ON CONFLICT (graph_id) DO UPDATE SET definition = EXCLUDED.definition`,
		graph.GraphID, definition)
	if err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetGraph(ctx context.Context, graphID string) (*graphflow.Graph, error) {
	var definition []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT definition FROM graphflow_graphs WHERE graph_id = $1`,
		graphID).Scan(&definition)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get graph: %w", err)
	}
	var graph graphflow.Graph
	if err := json.Unmarshal(definition, &graph); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	return &graph, nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *graphflow.Run) error {
	record, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO graphflow_runs (run_id, graph_id, status, record)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id) DO UPDATE SET status = EXCLUDED.status, record = EXCLUDED.record`,
		run.RunID, run.GraphID, string(run.Status), record)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*graphflow.Run, error) {
	var record []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM graphflow_runs WHERE run_id = $1`,
		runID).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	var run graphflow.Run
	if err := json.Unmarshal(record, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
