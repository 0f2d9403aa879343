package evaluation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"tripflow/agents"
	planner "tripflow/core"
	"tripflow/tools"
)

func completedRun(t *testing.T) *planner.RunState {
	t.Helper()
	orch := planner.NewOrchestrator(agents.MockGenerator{}, tools.NewToolkit(tools.Config{}))
	return orch.Run(context.Background(), &planner.RunState{
		Request:     "Plan my 5-day trip to Paris with museums and food",
		Origin:      "london",
		Destination: "paris",
		DepartDate:  "2026-09-15",
		ReturnDate:  "2026-09-20",
		Interests:   []string{"museums", "food"},
		Duration:    5,
	})
}

func TestEvaluateExecutionOfflineRun(t *testing.T) {
	state := completedRun(t)
	metrics := NewEvaluator().EvaluateExecution(state, 1500*time.Millisecond)

	if metrics.StagesAttempted != 4 {
		t.Errorf("stages attempted = %d, want 4", metrics.StagesAttempted)
	}
	// Research degrades offline; the other three stages succeed.
	if metrics.StagesSucceeded != 3 || metrics.StagesDegraded != 1 {
		t.Errorf("succeeded/degraded = %d/%d, want 3/1", metrics.StagesSucceeded, metrics.StagesDegraded)
	}
	if got := metrics.SuccessRate(); got != 0.75 {
		t.Errorf("success rate = %v, want 0.75", got)
	}

	if len(metrics.Tools) != 4 {
		t.Fatalf("tool stats = %v, want 4 capabilities", metrics.Tools)
	}
	for capability, stat := range metrics.Tools {
		if stat.Attempted != 1 || stat.Mock != 1 || stat.Live != 0 {
			t.Errorf("%s stat = %+v, want attempted=mock=1", capability, stat)
		}
	}
	if got := metrics.ToolSuccessRate(); got != 0 {
		t.Errorf("tool success rate = %v, want 0 for all-mock run", got)
	}

	if metrics.LLMCalls != 3 {
		t.Errorf("llm calls = %d, want 3 (enhance, plan, refine)", metrics.LLMCalls)
	}
	if metrics.TotalDurationSeconds != 1.5 {
		t.Errorf("duration = %v, want 1.5", metrics.TotalDurationSeconds)
	}
	if len(metrics.ErrorsByStage[planner.StageResearch]) != 4 {
		t.Errorf("errors by stage = %v, want 4 research entries", metrics.ErrorsByStage)
	}
}

func TestEvaluateQualityIdempotent(t *testing.T) {
	state := completedRun(t)
	evaluator := NewEvaluator()

	first := evaluator.EvaluateQuality(state)
	second := evaluator.EvaluateQuality(state)
	if *first != *second {
		t.Errorf("re-evaluating the same state must yield identical scores: %+v vs %+v", first, second)
	}
}

func TestEvaluateQualityScores(t *testing.T) {
	state := completedRun(t)
	score := NewEvaluator().EvaluateQuality(state)

	check := func(name string, v float64) {
		if v < 0 || v > 100 {
			t.Errorf("%s = %v, want [0,100]", name, v)
		}
	}
	check("completeness", score.Completeness)
	check("relevance", score.Relevance)
	check("coherence", score.Coherence)
	check("practicality", score.Practicality)
	check("detail", score.DetailLevel)
	check("overall", score.Overall())

	// The offline plan names the destination, interests and research data,
	// so a healthy run should not bottom out.
	if score.Overall() < 40 {
		t.Errorf("overall = %v, expected a reasonable score for a complete run", score.Overall())
	}
}

func TestOverallWeighting(t *testing.T) {
	score := &QualityScore{Completeness: 100, Relevance: 100, Coherence: 100, Practicality: 100, DetailLevel: 100}
	if got := score.Overall(); got != 100 {
		t.Errorf("all-100 overall = %v, want 100", got)
	}

	score = &QualityScore{Completeness: 100}
	if got := score.Overall(); got != 25 {
		t.Errorf("completeness-only overall = %v, want 25", got)
	}
	score = &QualityScore{DetailLevel: 100}
	if got := score.Overall(); got != 10 {
		t.Errorf("detail-only overall = %v, want 10", got)
	}
}

func TestQualityEmptyPlan(t *testing.T) {
	state := &planner.RunState{Request: "Plan my trip", Plan: ""}
	score := NewEvaluator().EvaluateQuality(state)
	if score.Practicality != 0 {
		t.Errorf("empty plan practicality = %v, want 0", score.Practicality)
	}
	if score.Coherence != 0 {
		t.Errorf("empty plan coherence = %v, want 0", score.Coherence)
	}
}

func TestPracticalityOverlongItinerary(t *testing.T) {
	plan := strings.Repeat("morning activities and sights to see around town\n", 4) +
		"Day 1: arrive\nDay 2: explore\nDay 3: extra\n"
	state := &planner.RunState{Request: "trip", Duration: 2, Plan: plan}
	score := NewEvaluator().EvaluateQuality(state)
	// One issue: the itinerary runs past the trip duration.
	if score.Practicality != 75 {
		t.Errorf("practicality = %v, want 75", score.Practicality)
	}
}

func TestMetricsRoundTrip(t *testing.T) {
	metrics := &ExecutionMetrics{
		Timestamp:            "2026-08-29T00:00:00Z",
		StagesAttempted:      4,
		StagesSucceeded:      3,
		StagesDegraded:       1,
		Tools:                map[string]ToolStat{"flights": {Attempted: 1, Mock: 1}, "weather": {Attempted: 1, Live: 1}},
		LLMCalls:             3,
		TotalDurationSeconds: 1.5,
		PlanLength:           420,
		NotesCount:           7,
		ErrorsByStage:        map[string][]string{"research": {"provider_unavailable: flights"}},
	}

	jsonData, err := json.Marshal(metrics)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	var fromJSON ExecutionMetrics
	if err := json.Unmarshal(jsonData, &fromJSON); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	if !reflect.DeepEqual(&fromJSON, metrics) {
		t.Errorf("json round-trip changed the record:\ngot  %+v\nwant %+v", &fromJSON, metrics)
	}

	yamlData, err := yaml.Marshal(metrics)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	var fromYAML ExecutionMetrics
	if err := yaml.Unmarshal(yamlData, &fromYAML); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	if !reflect.DeepEqual(&fromYAML, metrics) {
		t.Errorf("yaml round-trip changed the record:\ngot  %+v\nwant %+v", &fromYAML, metrics)
	}
}

func TestQualityScoreRoundTrip(t *testing.T) {
	score := &QualityScore{Completeness: 60, Relevance: 75, Coherence: 100, Practicality: 100, DetailLevel: 62.5}

	data, err := json.Marshal(score)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	var fromJSON QualityScore
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	if fromJSON != *score {
		t.Errorf("json round-trip changed the record: got %+v, want %+v", fromJSON, *score)
	}

	data, err = yaml.Marshal(score)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	var fromYAML QualityScore
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	if fromYAML != *score {
		t.Errorf("yaml round-trip changed the record: got %+v, want %+v", fromYAML, *score)
	}
	if fromYAML.Overall() != score.Overall() {
		t.Errorf("overall = %v, want %v", fromYAML.Overall(), score.Overall())
	}
}

func TestBuildReportAggregates(t *testing.T) {
	evaluator := NewEvaluator()
	state := completedRun(t)

	for i := 0; i < 2; i++ {
		metrics := evaluator.EvaluateExecution(state, time.Duration(i+1)*time.Second)
		quality := evaluator.EvaluateQuality(state)
		evaluator.Record(state.RunID, metrics, quality)
	}

	report := evaluator.BuildReport()
	if report.TotalEvaluations != 2 {
		t.Errorf("total evaluations = %d, want 2", report.TotalEvaluations)
	}
	if report.AverageSuccessRate != 0.75 {
		t.Errorf("average success rate = %v, want 0.75", report.AverageSuccessRate)
	}
	if report.AverageDurationSecs != 1.5 {
		t.Errorf("average duration = %v, want 1.5", report.AverageDurationSecs)
	}
	if report.TotalErrorsRecorded != 8 {
		t.Errorf("total errors = %d, want 8", report.TotalErrorsRecorded)
	}
}

func TestSaveReportYAMLAndJSON(t *testing.T) {
	evaluator := NewEvaluator()
	state := completedRun(t)
	metrics := evaluator.EvaluateExecution(state, time.Second)
	evaluator.Record(state.RunID, metrics, evaluator.EvaluateQuality(state))

	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "report.yaml")
	if err := evaluator.SaveReport(yamlPath); err != nil {
		t.Fatalf("save yaml: %v", err)
	}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatalf("read yaml: %v", err)
	}
	var fromYAML Report
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	if fromYAML.TotalEvaluations != 1 {
		t.Errorf("yaml round-trip total = %d, want 1", fromYAML.TotalEvaluations)
	}

	jsonPath := filepath.Join(dir, "report.json")
	if err := evaluator.SaveReport(jsonPath); err != nil {
		t.Fatalf("save json: %v", err)
	}
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if !strings.Contains(string(raw), "\"total_evaluations\": 1") {
		t.Errorf("json report missing expected field: %s", raw)
	}
}
