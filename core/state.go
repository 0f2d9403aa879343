// Package planner owns the run state and the stage orchestrator for one
// trip planning request. A run is a fixed sequence of stages over a shared
// mutable state; every stage degrades-and-continues on failure, so a run
// always terminates with best-effort output.
package planner

import (
	"fmt"
	"time"

	"tripflow/tools"
)

// Stage names, in the fixed execution order.
const (
	StageEnhance   = "enhance"
	StagePlan      = "plan"
	StageResearch  = "research"
	StageLogistics = "logistics"
)

// Stages returns the canonical stage sequence.
func Stages() []string {
	return []string{StageEnhance, StagePlan, StageResearch, StageLogistics}
}

// ErrorKind classifies a recorded run error. None of these are fatal; total
// failure surfaces as a run with every stage degraded, never as a raised
// error.
type ErrorKind string

const (
	ErrKindProviderUnavailable ErrorKind = "provider_unavailable"
	ErrKindProviderFailure     ErrorKind = "provider_failure"
	ErrKindDegradedStage       ErrorKind = "degraded_stage"
)

// StageError is one entry of the run's append-only error log.
type StageError struct {
	Stage   string    `json:"stage" yaml:"stage"`
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
}

func (e StageError) String() string {
	return fmt.Sprintf("%s/%s: %s", e.Stage, e.Kind, e.Message)
}

// RunState is the mutable record threading through all stages of one
// planning request. The orchestrator is its single owner for the run's
// lifetime; the evaluator receives it read-only afterwards.
type RunState struct {
	RunID string `json:"run_id" yaml:"runId"`

	// User input
	Request     string   `json:"request" yaml:"request"`
	Origin      string   `json:"origin,omitempty" yaml:"origin,omitempty"`
	Destination string   `json:"destination,omitempty" yaml:"destination,omitempty"`
	DepartDate  string   `json:"depart_date,omitempty" yaml:"departDate,omitempty"`
	ReturnDate  string   `json:"return_date,omitempty" yaml:"returnDate,omitempty"`
	CheckIn     string   `json:"check_in,omitempty" yaml:"checkIn,omitempty"`
	CheckOut    string   `json:"check_out,omitempty" yaml:"checkOut,omitempty"`
	Interests   []string `json:"interests,omitempty" yaml:"interests,omitempty"`
	Duration    int      `json:"duration,omitempty" yaml:"duration,omitempty"`

	// Stage outputs
	EnhancedRequest string `json:"enhanced_request,omitempty" yaml:"enhancedRequest,omitempty"`
	DraftPlan       string `json:"draft_plan,omitempty" yaml:"draftPlan,omitempty"`
	Plan            string `json:"plan,omitempty" yaml:"plan,omitempty"`

	// Tool execution state; each capability key is written at most once.
	ToolResults map[string]*tools.Result `json:"tool_results,omitempty" yaml:"toolResults,omitempty"`

	// Execution record
	Errors   []StageError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Trace    []string     `json:"agent_trace" yaml:"agentTrace"`
	Notes    []string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	LLMCalls int          `json:"llm_calls" yaml:"llmCalls"`

	StartedAt  time.Time `json:"started_at" yaml:"startedAt"`
	FinishedAt time.Time `json:"finished_at" yaml:"finishedAt"`
}

// AddError appends to the run's error log. The log is append-only and never
// cleared within a run.
func (s *RunState) AddError(stage string, kind ErrorKind, format string, v ...any) {
	s.Errors = append(s.Errors, StageError{
		Stage:   stage,
		Kind:    kind,
		Message: fmt.Sprintf(format, v...),
	})
}

// AddNote appends a free-form execution note.
func (s *RunState) AddNote(format string, v ...any) {
	s.Notes = append(s.Notes, fmt.Sprintf(format, v...))
}

// StageDegraded reports whether any error was recorded for the stage.
func (s *RunState) StageDegraded(stage string) bool {
	for _, e := range s.Errors {
		if e.Stage == stage {
			return true
		}
	}
	return false
}

// HasTripDate reports whether any travel date is present.
func (s *RunState) HasTripDate() bool {
	return s.DepartDate != "" || s.ReturnDate != "" || s.CheckIn != "" || s.CheckOut != ""
}

// StayWindow returns the hotel stay dates, falling back to the flight dates
// when explicit check-in/check-out are absent.
func (s *RunState) StayWindow() (checkIn, checkOut string) {
	checkIn, checkOut = s.CheckIn, s.CheckOut
	if checkIn == "" {
		checkIn = s.DepartDate
	}
	if checkOut == "" {
		checkOut = s.ReturnDate
	}
	return checkIn, checkOut
}

// mergeToolResult stores a capability's result exactly once.
func (s *RunState) mergeToolResult(capability string, result *tools.Result) {
	if s.ToolResults == nil {
		s.ToolResults = make(map[string]*tools.Result)
	}
	if _, exists := s.ToolResults[capability]; exists {
		return
	}
	s.ToolResults[capability] = result
}
