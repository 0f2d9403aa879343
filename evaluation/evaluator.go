package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	planner "tripflow/core"
	"tripflow/tools"
)

// Evaluator computes metrics for completed runs and accumulates a history
// for aggregated reporting.
type Evaluator struct {
	mu      sync.Mutex
	history []HistoryEntry
}

// HistoryEntry pairs one run's metrics with its quality score.
type HistoryEntry struct {
	RunID     string            `json:"run_id" yaml:"runId"`
	Metrics   *ExecutionMetrics `json:"metrics" yaml:"metrics"`
	Quality   *QualityScore     `json:"quality,omitempty" yaml:"quality,omitempty"`
	Timestamp string            `json:"timestamp" yaml:"timestamp"`
}

// NewEvaluator creates an empty evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// EvaluateExecution derives execution metrics from the terminal run state.
// A stage succeeds iff it was entered and no error was recorded against it;
// a tool call succeeds iff its result came from a live provider.
func (e *Evaluator) EvaluateExecution(state *planner.RunState, duration time.Duration) *ExecutionMetrics {
	degradedStages := make(map[string]bool)
	errorsByStage := make(map[string][]string)
	for _, stageErr := range state.Errors {
		degradedStages[stageErr.Stage] = true
		errorsByStage[stageErr.Stage] = append(errorsByStage[stageErr.Stage], string(stageErr.Kind)+": "+stageErr.Message)
	}

	succeeded := 0
	for _, stage := range state.Trace {
		if !degradedStages[stage] {
			succeeded++
		}
	}

	toolStats := make(map[string]ToolStat)
	for capability, result := range state.ToolResults {
		stat := toolStats[capability]
		stat.Attempted++
		if result.Provider == tools.ProviderLive {
			stat.Live++
		} else {
			stat.Mock++
		}
		toolStats[capability] = stat
	}

	metrics := &ExecutionMetrics{
		Timestamp:            time.Now().UTC().Format(time.RFC3339),
		StagesAttempted:      len(state.Trace),
		StagesSucceeded:      succeeded,
		StagesDegraded:       len(state.Trace) - succeeded,
		Tools:                toolStats,
		LLMCalls:             state.LLMCalls,
		TotalDurationSeconds: duration.Seconds(),
		PlanLength:           len(state.Plan),
		NotesCount:           len(state.Notes),
		ErrorsByStage:        errorsByStage,
	}

	planner.InfoLog("[EVAL] run %s: success rate %.0f%%, tool success %.0f%%",
		state.RunID, metrics.SuccessRate()*100, metrics.ToolSuccessRate()*100)
	return metrics
}

var dayHeadingRe = regexp.MustCompile(`(?i)\bday\s+(\d+)`)
var clockTimeRe = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)

// stopWords are excluded from relevance overlap so request boilerplate
// ("plan my trip to ...") doesn't score against itself.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "for": true, "in": true, "my": true,
	"of": true, "plan": true, "the": true, "to": true, "trip": true,
	"vacation": true, "with": true, "i": true, "we": true, "want": true,
}

// EvaluateQuality scores the produced plan against the request. All five
// heuristics are pure functions of their inputs, so re-evaluating the same
// state yields identical sub-scores.
func (e *Evaluator) EvaluateQuality(state *planner.RunState) *QualityScore {
	plan := state.Plan
	planLower := strings.ToLower(plan)

	score := &QualityScore{
		Completeness: scoreCompleteness(state, planLower),
		Relevance:    scoreRelevance(state, planLower),
		Coherence:    scoreCoherence(plan),
		Practicality: scorePracticality(state, plan, planLower),
		DetailLevel:  scoreDetail(plan),
	}
	planner.InfoLog("[EVAL] run %s: overall quality %.1f/100", state.RunID, score.Overall())
	return score
}

// scoreCompleteness measures the fraction of requested facets (origin,
// destination, dates, interests, duration) reflected in the plan text.
func scoreCompleteness(state *planner.RunState, planLower string) float64 {
	type facet struct {
		requested bool
		reflected bool
	}
	facets := []facet{
		{state.Origin != "", containsFold(planLower, state.Origin)},
		{state.Destination != "", containsFold(planLower, state.Destination) ||
			containsFold(planLower, tools.NormalizeLocation(state.Destination).City)},
		{state.HasTripDate(), anyContained(planLower, state.DepartDate, state.ReturnDate, state.CheckIn, state.CheckOut)},
		{len(state.Interests) > 0, anyContained(planLower, state.Interests...)},
		{state.Duration > 0, strings.Contains(planLower, fmt.Sprintf("%d day", state.Duration)) ||
			strings.Contains(planLower, fmt.Sprintf("day %d", state.Duration))},
	}

	requested, reflected := 0, 0
	for _, f := range facets {
		if !f.requested {
			continue
		}
		requested++
		if f.reflected {
			reflected++
		}
	}
	if requested == 0 {
		// Nothing structured was requested, so nothing can be missing.
		return 100
	}
	return float64(reflected) / float64(requested) * 100
}

// scoreRelevance measures keyword overlap between request+interests and the
// plan.
func scoreRelevance(state *planner.RunState, planLower string) float64 {
	keywords := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(state.Request)) {
		word = strings.Trim(word, ".,!?\"'()")
		if len(word) > 1 && !stopWords[word] {
			keywords[word] = true
		}
	}
	for _, interest := range state.Interests {
		for _, word := range strings.Fields(strings.ToLower(interest)) {
			keywords[word] = true
		}
	}
	if len(keywords) == 0 {
		return 0
	}
	matched := 0
	for word := range keywords {
		if strings.Contains(planLower, word) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords)) * 100
}

// scoreCoherence checks day-by-day structure, non-empty sections and
// minimum length: 60 points for section count, 25 for day structure, 15 for
// length.
func scoreCoherence(plan string) float64 {
	sections := 0
	for _, line := range strings.Split(plan, "\n") {
		if strings.TrimSpace(line) != "" {
			sections++
		}
	}
	score := float64(sections) * 6
	if score > 60 {
		score = 60
	}
	if dayHeadingRe.MatchString(plan) {
		score += 25
	}
	if len(plan) >= 200 {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

// scorePracticality starts at 100 and subtracts 25 per detected issue:
// empty plan, more itinerary days than the trip duration, and no
// time-of-day anchors.
func scorePracticality(state *planner.RunState, plan, planLower string) float64 {
	score := 100.0
	if strings.TrimSpace(plan) == "" {
		return 0
	}

	if state.Duration > 0 {
		maxDay := 0
		for _, match := range dayHeadingRe.FindAllStringSubmatch(plan, -1) {
			day := 0
			fmt.Sscanf(match[1], "%d", &day)
			if day > maxDay {
				maxDay = day
			}
		}
		if maxDay > state.Duration {
			score -= 25
		}
	}

	hasAnchor := clockTimeRe.MatchString(plan) ||
		anyContained(planLower, "morning", "afternoon", "evening")
	if !hasAnchor {
		score -= 25
	}

	if len(plan) < 80 {
		score -= 25
	}
	if score < 0 {
		score = 0
	}
	return score
}

// scoreDetail follows the original length curve, with a bonus for concrete
// times and prices capped at 100.
func scoreDetail(plan string) float64 {
	var score float64
	if len(plan) > 500 {
		score = float64(len(plan)) / 2000 * 100
		if score > 100 {
			score = 100
		}
	} else {
		score = float64(len(plan)) / 500 * 100
	}
	if clockTimeRe.MatchString(plan) {
		score += 10
	}
	if strings.Contains(plan, "$") {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Record appends an evaluated run to the history.
func (e *Evaluator) Record(runID string, metrics *ExecutionMetrics, quality *QualityScore) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, HistoryEntry{
		RunID:     runID,
		Metrics:   metrics,
		Quality:   quality,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Report aggregates the recorded history.
type Report struct {
	TotalEvaluations     int            `json:"total_evaluations" yaml:"totalEvaluations"`
	AverageSuccessRate   float64        `json:"average_success_rate" yaml:"averageSuccessRate"`
	AverageDurationSecs  float64        `json:"average_execution_time_seconds" yaml:"averageExecutionTimeSeconds"`
	TotalErrorsRecorded  int            `json:"total_errors_recorded" yaml:"totalErrorsRecorded"`
	History              []HistoryEntry `json:"evaluation_history" yaml:"evaluationHistory"`
	ReportGeneratedAt    string         `json:"report_generated" yaml:"reportGenerated"`
}

// BuildReport summarizes all recorded evaluations.
func (e *Evaluator) BuildReport() *Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := &Report{
		TotalEvaluations:  len(e.history),
		History:           append([]HistoryEntry(nil), e.history...),
		ReportGeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if len(e.history) == 0 {
		return report
	}

	var successSum, durationSum float64
	for _, entry := range e.history {
		successSum += entry.Metrics.SuccessRate()
		durationSum += entry.Metrics.TotalDurationSeconds
		for _, msgs := range entry.Metrics.ErrorsByStage {
			report.TotalErrorsRecorded += len(msgs)
		}
	}
	report.AverageSuccessRate = successSum / float64(len(e.history))
	report.AverageDurationSecs = durationSum / float64(len(e.history))
	return report
}

// SaveReport writes the aggregated report to path. A .yaml/.yml extension
// selects YAML; anything else gets indented JSON.
func (e *Evaluator) SaveReport(path string) error {
	report := e.BuildReport()

	var data []byte
	var err error
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(report)
	default:
		data, err = json.MarshalIndent(report, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	planner.InfoLog("[EVAL] report saved to %s", path)
	return nil
}

func containsFold(haystackLower, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(haystackLower, strings.ToLower(needle))
}

func anyContained(haystackLower string, needles ...string) bool {
	for _, needle := range needles {
		if containsFold(haystackLower, needle) {
			return true
		}
	}
	return false
}
