package store

import (
	"context"
	"sync"

	"github.com/gridline-ai/graphflow"
)

// MemoryStore keeps graphs and runs in process memory. Suitable for
// tests and single-process deployments.
type MemoryStore struct {
	mutex  sync.RWMutex
	graphs map[string]*graphflow.Graph
	runs   map[string]*graphflow.Run
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		graphs: map[string]*graphflow.Graph{},
		runs:   map[string]*graphflow.Run{},
	}
}

func (s *MemoryStore) SaveGraph(ctx context.Context, graph *graphflow.Graph) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.graphs[graph.GraphID] = graph
	return nil
}

func (s *MemoryStore) GetGraph(ctx context.Context, graphID string) (*graphflow.Graph, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	graph, ok := s.graphs[graphID]
	if !ok {
		return nil, ErrNotFound
	}
	return graph, nil
}

func (s *MemoryStore) SaveRun(ctx context.Context, run *graphflow.Run) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.runs[run.RunID] = run
	return nil
}

func (s *MemoryStore) GetRun(ctx context.Context, runID string) (*graphflow.Run, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return run, nil
}
