package planner

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"tripflow/agents"
	"tripflow/logistics"
	"tripflow/observability"
	"tripflow/tools"
)

// DeliveryConfig gates the optional logistics collaborators. AutoDeliver
// stays false unless explicitly enabled, matching the approval gate of the
// delivery tools.
type DeliveryConfig struct {
	Recipient   string `yaml:"recipient" json:"recipient"`
	AutoDeliver bool   `yaml:"autoDeliver" json:"auto_deliver"`
}

// Orchestrator executes the fixed stage sequence over a RunState. It always
// advances to the next stage regardless of the current stage's outcome; the
// only per-stage decision is degrade-and-continue vs proceed-with-result.
type Orchestrator struct {
	generator agents.Generator
	toolkit   *tools.Toolkit
	renderer  logistics.PDFRenderer
	mailer    logistics.EmailSender
	bus       *observability.Bus
	delivery  DeliveryConfig
}

// NewOrchestrator wires the orchestrator against its collaborators.
func NewOrchestrator(generator agents.Generator, toolkit *tools.Toolkit) *Orchestrator {
	return &Orchestrator{
		generator: generator,
		toolkit:   toolkit,
	}
}

// SetBus attaches the observability event bus. The orchestrator functions
// identically without one.
func (o *Orchestrator) SetBus(bus *observability.Bus) {
	o.bus = bus
}

// SetDelivery attaches the optional PDF/email collaborators.
func (o *Orchestrator) SetDelivery(renderer logistics.PDFRenderer, mailer logistics.EmailSender, cfg DeliveryConfig) {
	o.renderer = renderer
	o.mailer = mailer
	o.delivery = cfg
}

// Run drives the state machine to its terminal state. The returned state is
// the same pointer, complete and best-effort: a run never aborts, and every
// entered stage is recorded in Trace in execution order.
func (o *Orchestrator) Run(ctx context.Context, state *RunState) *RunState {
	if state.RunID == "" {
		state.RunID = uuid.NewString()
	}
	state.StartedAt = time.Now()
	tracer := otel.Tracer(observability.TracerName)

	stages := []struct {
		name string
		fn   func(context.Context, *RunState)
	}{
		{StageEnhance, o.runEnhance},
		{StagePlan, o.runPlan},
		{StageResearch, o.runResearch},
		{StageLogistics, o.runLogistics},
	}

	for _, stage := range stages {
		state.Trace = append(state.Trace, stage.name)
		o.publishStage(state, stage.name, "enter", false)

		stageCtx, span := tracer.Start(ctx, "stage."+stage.name,
			trace.WithAttributes(attribute.String("run_id", state.RunID)))
		errsBefore := len(state.Errors)
		stage.fn(stageCtx, state)
		degraded := len(state.Errors) > errsBefore
		span.SetAttributes(attribute.Bool("degraded", degraded))
		span.End()

		o.publishStage(state, stage.name, "exit", degraded)
		if degraded {
			ErrorLog("[RUN %s] stage %s degraded", state.RunID, stage.name)
		} else {
			InfoLog("[RUN %s] stage %s done", state.RunID, stage.name)
		}
	}

	state.FinishedAt = time.Now()
	return state
}

// runEnhance clarifies the raw request. On LLM failure the original request
// text is substituted so downstream stages always have input.
func (o *Orchestrator) runEnhance(ctx context.Context, state *RunState) {
	state.LLMCalls++
	text, err := o.generator.Generate(ctx, agents.EnhancePrompt(state.Request))
	if err != nil || strings.TrimSpace(text) == "" {
		state.EnhancedRequest = state.Request
		state.AddError(StageEnhance, ErrKindDegradedStage, "enhancement failed, using original request: %v", err)
		state.AddNote("request enhancement degraded")
		return
	}
	state.EnhancedRequest = text
	state.AddNote("request enhanced")
}

// runPlan drafts the day-by-day itinerary. On failure the prior-stage text
// carries forward, padded with the deterministic outline, as a degraded
// plan.
func (o *Orchestrator) runPlan(ctx context.Context, state *RunState) {
	duration := state.Duration
	if duration < 1 {
		duration = 3
	}
	state.LLMCalls++
	prompt := agents.PlanPrompt(state.EnhancedRequest, state.Destination, state.DepartDate, state.ReturnDate, duration)
	text, err := o.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		state.DraftPlan = agents.OutlinePlan(duration)
		state.Plan = strings.TrimSpace(state.EnhancedRequest + "\n\n" + state.DraftPlan)
		state.AddError(StagePlan, ErrKindDegradedStage, "draft plan failed, carrying forward prior text: %v", err)
		state.AddNote("draft plan degraded")
		return
	}
	state.DraftPlan = text
	state.Plan = text
	state.AddNote("draft %d-day plan created", duration)
}

type toolOutcome struct {
	capability string
	result     *tools.Result
	callErr    *tools.CallError
}

// runResearch fans out the eligible tool invocations concurrently. Each
// call carries its own timeout budget inside the resolver, writes to its own
// outcome slot, and cannot block or fail the others; the single join point
// below merges whatever completed.
func (o *Orchestrator) runResearch(ctx context.Context, state *RunState) {
	flightsOK := state.Origin != "" && state.Destination != "" && state.HasTripDate()
	hotelsOK := flightsOK
	weatherOK := state.Destination != "" && state.HasTripDate()
	attractionsOK := state.Destination != ""

	var outcomes [4]*toolOutcome
	g, gctx := errgroup.WithContext(ctx)

	if flightsOK {
		g.Go(func() error {
			result, callErr := o.toolkit.SearchFlights(gctx, state.Origin, state.Destination, state.DepartDate, state.ReturnDate)
			outcomes[0] = &toolOutcome{string(tools.CapabilityFlights), result, callErr}
			return nil
		})
	} else {
		state.AddNote("flights: skipped (missing origin/destination/date)")
	}

	if hotelsOK {
		checkIn, checkOut := state.StayWindow()
		g.Go(func() error {
			result, callErr := o.toolkit.SearchHotels(gctx, state.Destination, checkIn, checkOut)
			outcomes[1] = &toolOutcome{string(tools.CapabilityHotels), result, callErr}
			return nil
		})
	} else {
		state.AddNote("hotels: skipped (missing origin/destination/date)")
	}

	if weatherOK {
		g.Go(func() error {
			result, callErr := o.toolkit.GetWeather(gctx, state.Destination, state.DepartDate)
			outcomes[2] = &toolOutcome{string(tools.CapabilityWeather), result, callErr}
			return nil
		})
	} else {
		state.AddNote("weather: skipped (missing destination/date)")
	}

	if attractionsOK {
		g.Go(func() error {
			result, callErr := o.toolkit.GetAttractions(gctx, state.Destination, state.Interests)
			outcomes[3] = &toolOutcome{string(tools.CapabilityAttractions), result, callErr}
			return nil
		})
	} else {
		state.AddNote("attractions: skipped (missing destination)")
	}

	_ = g.Wait()

	invoked := 0
	for _, outcome := range outcomes {
		if outcome == nil {
			continue
		}
		invoked++
		state.mergeToolResult(outcome.capability, outcome.result)
		o.publishTool(state, outcome.capability, outcome.result)
		if outcome.callErr != nil {
			kind := ErrKindProviderFailure
			if outcome.callErr.Kind == tools.ErrProviderUnavailable {
				kind = ErrKindProviderUnavailable
			}
			state.AddError(StageResearch, kind, "%s: %s", outcome.capability, outcome.callErr.Message)
			state.AddNote("%s: mock data", outcome.capability)
		} else {
			state.AddNote("%s: live data", outcome.capability)
		}
	}
	if invoked == 0 {
		state.AddNote("research: no tools eligible")
	}
}

var capabilityOrder = []string{
	string(tools.CapabilityFlights),
	string(tools.CapabilityHotels),
	string(tools.CapabilityAttractions),
	string(tools.CapabilityWeather),
}

// runLogistics folds the research data into the final plan, then hands the
// artifact to the optional delivery collaborators. Nothing here rolls back
// earlier stages.
func (o *Orchestrator) runLogistics(ctx context.Context, state *RunState) {
	if len(state.ToolResults) > 0 {
		sections := make([]string, 0, len(state.ToolResults))
		for _, capability := range capabilityOrder {
			if result, ok := state.ToolResults[capability]; ok {
				sections = append(sections, strings.ToUpper(capability)+":\n"+result.Summary())
			}
		}
		state.LLMCalls++
		text, err := o.generator.Generate(ctx, agents.RefinePrompt(state.Plan, sections))
		if err != nil || strings.TrimSpace(text) == "" {
			state.Plan = state.Plan + "\n\nResearch results:\n" + strings.Join(sections, "\n\n")
			state.AddError(StageLogistics, ErrKindDegradedStage, "plan refinement failed, appending raw data: %v", err)
		} else {
			state.Plan = text + "\n\nResearch data:\n" + strings.Join(sections, "\n\n")
			state.AddNote("plan refined with tool data")
		}
	}

	if !o.delivery.AutoDeliver || o.renderer == nil {
		state.AddNote("delivery skipped (approval gate closed)")
		return
	}

	doc, err := o.renderer.Render(state.Plan)
	if err != nil {
		state.AddError(StageLogistics, ErrKindDegradedStage, "document render failed: %v", err)
		return
	}
	state.AddNote("itinerary document rendered (%d bytes)", len(doc))

	if o.mailer != nil && o.delivery.Recipient != "" {
		if err := o.mailer.Send(o.delivery.Recipient, "Your trip itinerary", state.Plan, doc); err != nil {
			state.AddError(StageLogistics, ErrKindDegradedStage, "email delivery failed: %v", err)
			return
		}
		state.AddNote("itinerary emailed to %s", o.delivery.Recipient)
	}
}

func (o *Orchestrator) publishStage(state *RunState, stage, phase string, degraded bool) {
	if o.bus == nil {
		return
	}
	o.bus.PublishStage(observability.StageEvent{
		RunID:     state.RunID,
		Stage:     stage,
		Phase:     phase,
		Degraded:  degraded,
		Timestamp: time.Now(),
	})
}

func (o *Orchestrator) publishTool(state *RunState, capability string, result *tools.Result) {
	if o.bus == nil {
		return
	}
	o.bus.PublishTool(observability.ToolEvent{
		RunID:      state.RunID,
		Capability: capability,
		Provider:   string(result.Provider),
		LatencyMS:  result.LatencyMS,
		Timestamp:  time.Now(),
	})
}
