// Package evaluation converts a completed run into quantitative execution
// and quality metrics. Both result records are immutable once created;
// persisting a report is the caller's concern.
package evaluation

// ToolStat tracks one capability's invocation outcome. A mock result counts
// as attempted-but-degraded, not a hard failure: fallback is intended
// behavior, and the report keeps the distinction.
type ToolStat struct {
	Attempted int `json:"attempted" yaml:"attempted"`
	Live      int `json:"live" yaml:"live"`
	Mock      int `json:"mock" yaml:"mock"`
}

// ExecutionMetrics quantifies how a run executed.
type ExecutionMetrics struct {
	Timestamp            string              `json:"timestamp" yaml:"timestamp"`
	StagesAttempted      int                 `json:"stages_attempted" yaml:"stagesAttempted"`
	StagesSucceeded      int                 `json:"stages_succeeded" yaml:"stagesSucceeded"`
	StagesDegraded       int                 `json:"stages_degraded" yaml:"stagesDegraded"`
	Tools                map[string]ToolStat `json:"tools" yaml:"tools"`
	LLMCalls             int                 `json:"llm_calls" yaml:"llmCalls"`
	TotalDurationSeconds float64             `json:"total_duration_seconds" yaml:"totalDurationSeconds"`
	PlanLength           int                 `json:"plan_length" yaml:"planLength"`
	NotesCount           int                 `json:"notes_count" yaml:"notesCount"`
	ErrorsByStage        map[string][]string `json:"errors_by_stage" yaml:"errorsByStage"`
}

// SuccessRate is the fraction of attempted stages that produced a
// non-degraded output.
func (m *ExecutionMetrics) SuccessRate() float64 {
	if m.StagesAttempted == 0 {
		return 0
	}
	return float64(m.StagesSucceeded) / float64(m.StagesAttempted)
}

// ToolSuccessRate counts live results as successes across all attempted
// tool invocations.
func (m *ExecutionMetrics) ToolSuccessRate() float64 {
	attempted, live := 0, 0
	for _, stat := range m.Tools {
		attempted += stat.Attempted
		live += stat.Live
	}
	if attempted == 0 {
		return 0
	}
	return float64(live) / float64(attempted)
}

// Quality score weighting. Policy constants, not derived per run.
const (
	weightCompleteness = 0.25
	weightRelevance    = 0.25
	weightCoherence    = 0.20
	weightPracticality = 0.20
	weightDetail       = 0.10
)

// QualityScore holds the five sub-scores, each in [0,100].
type QualityScore struct {
	Completeness float64 `json:"completeness" yaml:"completeness"`
	Relevance    float64 `json:"relevance" yaml:"relevance"`
	Coherence    float64 `json:"coherence" yaml:"coherence"`
	Practicality float64 `json:"practicality" yaml:"practicality"`
	DetailLevel  float64 `json:"detail_level" yaml:"detailLevel"`
}

// Overall is the fixed weighted sum of the five sub-scores.
func (q *QualityScore) Overall() float64 {
	return q.Completeness*weightCompleteness +
		q.Relevance*weightRelevance +
		q.Coherence*weightCoherence +
		q.Practicality*weightPracticality +
		q.DetailLevel*weightDetail
}
