// Package server exposes the graph execution engine over HTTP: graph
// creation, run execution, and run state lookup.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridline-ai/graphflow"
	"github.com/gridline-ai/graphflow/store"
)

// Options configures a Server.
type Options struct {
	Engine  *graphflow.Engine
	Store   store.Store
	Tools   *graphflow.ToolRegistry
	Logger  *slog.Logger
	Metrics *Metrics
}

// Server handles graph and run requests. Graphs are validated at the door
// so the engine only ever sees structurally sound definitions.
type Server struct {
	engine  *graphflow.Engine
	store   store.Store
	tools   *graphflow.ToolRegistry
	logger  *slog.Logger
	metrics *Metrics
}

// NewServer creates a new Server.
func NewServer(opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Tools == nil {
		opts.Tools = graphflow.NewToolRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		engine:  opts.Engine,
		store:   opts.Store,
		tools:   opts.Tools,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/graph/create", s.createGraph)
	r.Post("/graph/run", s.runGraph)
	r.Get("/graph/state/{runID}", s.getRunState)
	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) createGraph(w http.ResponseWriter, r *http.Request) {
	var graph graphflow.Graph
	if err := json.NewDecoder(r.Body).Decode(&graph); err != nil {
		s.error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := graphflow.ValidateGraph(&graph); err != nil {
		s.error(w, http.StatusBadRequest, fmt.Sprintf("invalid graph: %v", err))
		return
	}

	// The server owns graph identity; whatever the client sent is replaced.
	graph.GraphID = graphflow.NewGraphID()

	if err := s.store.SaveGraph(r.Context(), &graph); err != nil {
		s.logger.Error("failed to save graph", "error", err)
		s.error(w, http.StatusInternalServerError, "failed to save graph")
		return
	}
	s.logger.Info("graph created", "graph_id", graph.GraphID, "nodes", len(graph.Nodes))
	s.respond(w, http.StatusOK, map[string]string{"graph_id": graph.GraphID})
}

type runRequest struct {
	GraphID string           `json:"graph_id"`
	State   *graphflow.State `json:"state"`
}

type runResponse struct {
	RunID      string                `json:"run_id"`
	FinalState *graphflow.State      `json:"final_state"`
	Logs       []*graphflow.LogEntry `json:"logs"`
	Status     graphflow.RunStatus   `json:"status"`
}

func (s *Server) runGraph(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GraphID == "" {
		s.error(w, http.StatusBadRequest, "graph_id is required")
		return
	}
	if req.State == nil {
		s.error(w, http.StatusBadRequest, "state is required")
		return
	}
	if req.State.Data == nil {
		req.State.Data = map[string]any{}
	}

	graph, err := s.store.GetGraph(r.Context(), req.GraphID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.error(w, http.StatusNotFound, "graph not found")
			return
		}
		s.logger.Error("failed to load graph", "graph_id", req.GraphID, "error", err)
		s.error(w, http.StatusInternalServerError, "failed to load graph")
		return
	}

	run := graphflow.NewRun(graphflow.NewRunID(), graph.GraphID)
	run, err = s.engine.Execute(r.Context(), graph, req.State, s.tools, run)
	if err != nil {
		s.logger.Error("failed to execute run", "graph_id", req.GraphID, "error", err)
		s.error(w, http.StatusInternalServerError, "failed to execute run")
		return
	}
	s.metrics.ObserveRun(run)

	if err := s.store.SaveRun(r.Context(), run); err != nil {
		s.logger.Error("failed to save run", "run_id", run.RunID, "error", err)
		s.error(w, http.StatusInternalServerError, "failed to save run")
		return
	}

	s.respond(w, http.StatusOK, runResponse{
		RunID:      run.RunID,
		FinalState: run.FinalState,
		Logs:       run.Log,
		Status:     run.Status,
	})
}

type runStateResponse struct {
	RunID       string                `json:"run_id"`
	GraphID     string                `json:"graph_id"`
	CurrentNode string                `json:"current_node,omitempty"`
	Iteration   int                   `json:"iteration"`
	Logs        []*graphflow.LogEntry `json:"logs"`
	Status      graphflow.RunStatus   `json:"status"`
}

func (s *Server) getRunState(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.error(w, http.StatusNotFound, "run not found")
			return
		}
		s.logger.Error("failed to load run", "run_id", runID, "error", err)
		s.error(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	s.respond(w, http.StatusOK, runStateResponse{
		RunID:       run.RunID,
		GraphID:     run.GraphID,
		CurrentNode: run.CurrentNode,
		Iteration:   run.Iteration,
		Logs:        run.Log,
		Status:      run.Status,
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "graphflow",
	})
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) error(w http.ResponseWriter, status int, detail string) {
	s.respond(w, status, map[string]string{"detail": detail})
}

// NewDefaultMetrics registers run metrics on the default prometheus
// registerer.
func NewDefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}
