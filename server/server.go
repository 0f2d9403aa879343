// Package server exposes the planner over HTTP. It is a thin driver: it
// validates the initial state, hands it to the orchestrator, and returns
// the terminal state plus the evaluation report.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	planner "tripflow/core"
	"tripflow/evaluation"
	"tripflow/tools"
)

// Config holds server configuration
type Config struct {
	Port int    `json:"port" yaml:"port"`
	Host string `json:"host" yaml:"host"`
}

// Server represents the tripflow HTTP server
type Server struct {
	config       Config
	orchestrator *planner.Orchestrator
	evaluator    *evaluation.Evaluator
	router       *mux.Router
	httpServer   *http.Server
}

// New creates a server wired to the orchestrator and evaluator.
func New(config Config, orchestrator *planner.Orchestrator, evaluator *evaluation.Evaluator) *Server {
	s := &Server{
		config:       config,
		orchestrator: orchestrator,
		evaluator:    evaluator,
		router:       mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/plans", s.createPlan).Methods("POST")
	api.HandleFunc("/report", s.getReport).Methods("GET")
	s.router.HandleFunc("/healthz", s.health).Methods("GET")
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // a run may wait on provider timeouts
	}
	log.Printf("[SERVER] listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// PlanRequest is the wire form of an initial run state.
type PlanRequest struct {
	Request     string   `json:"request"`
	Origin      string   `json:"origin,omitempty"`
	Destination string   `json:"destination,omitempty"`
	DepartDate  string   `json:"depart_date,omitempty"`
	ReturnDate  string   `json:"return_date,omitempty"`
	CheckIn     string   `json:"check_in,omitempty"`
	CheckOut    string   `json:"check_out,omitempty"`
	Interests   []string `json:"interests,omitempty"`
	Duration    int      `json:"duration,omitempty"`
}

// PlanResponse carries the terminal state and its evaluation.
type PlanResponse struct {
	State   *planner.RunState            `json:"state"`
	Metrics *evaluation.ExecutionMetrics `json:"metrics"`
	Quality *qualityPayload              `json:"quality"`
}

type qualityPayload struct {
	*evaluation.QualityScore
	OverallScore float64 `json:"overall_score"`
}

func (s *Server) createPlan(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	// Malformed initial state is rejected here, before the orchestrator is
	// ever invoked; the run itself never fails.
	if strings.TrimSpace(req.Request) == "" {
		s.writeError(w, http.StatusBadRequest, "request text is required")
		return
	}
	for _, date := range []string{req.DepartDate, req.ReturnDate, req.CheckIn, req.CheckOut} {
		if date != "" && !tools.ValidDate(date) {
			s.writeError(w, http.StatusBadRequest, "invalid date %q, want YYYY-MM-DD", date)
			return
		}
	}

	state := &planner.RunState{
		Request:     req.Request,
		Origin:      req.Origin,
		Destination: req.Destination,
		DepartDate:  req.DepartDate,
		ReturnDate:  req.ReturnDate,
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		Interests:   req.Interests,
		Duration:    req.Duration,
	}

	// A run, once started, runs to completion even if the client goes away.
	start := time.Now()
	final := s.orchestrator.Run(context.WithoutCancel(r.Context()), state)
	metrics := s.evaluator.EvaluateExecution(final, time.Since(start))
	quality := s.evaluator.EvaluateQuality(final)
	s.evaluator.Record(final.RunID, metrics, quality)

	json.NewEncoder(w).Encode(PlanResponse{
		State:   final,
		Metrics: metrics,
		Quality: &qualityPayload{QualityScore: quality, OverallScore: quality.Overall()},
	})
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.evaluator.BuildReport())
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, status int, format string, v ...any) {
	log.Printf("[SERVER] request error: "+format, v...)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": fmt.Sprintf(format, v...)})
}
