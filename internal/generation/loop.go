// Package generation drives one request from planning through streamed markup units.
package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/uistream/internal/binding"
	"github.com/temirov/uistream/internal/catalog"
	"github.com/temirov/uistream/internal/datasource"
	"github.com/temirov/uistream/internal/inspect"
	"github.com/temirov/uistream/internal/llm"
	"github.com/temirov/uistream/internal/prompts"
	"github.com/temirov/uistream/internal/segment"
	"github.com/temirov/uistream/internal/tokenizer"
)

// State is the lifecycle position of a Loop.
type State string

const (
	StateIdle      State = "idle"
	StatePlanning  State = "planning"
	StateStreaming State = "streaming"
	StateDone      State = "done"
	StateError     State = "error"
)

const (
	loadGraphErrorFormat   = "load data graph: %w"
	planErrorFormat        = "plan data: %w"
	promptErrorFormat      = "build prompt: %w"
	openStreamErrorFormat  = "open token stream: %w"
	readStreamErrorFormat  = "read token stream: %w"
	unresolvedSourceFormat = "unresolved data source %s"
	warningLevel           = "warning"
)

var (
	// ErrLoopReused is returned by every Run after the first.
	ErrLoopReused = errors.New("generation: loop already ran")
	// ErrNilChannel is returned when Run has nowhere to send events.
	ErrNilChannel = errors.New("generation: event channel is nil")
	// ErrNoPlanner is reported when a request without references reaches a loop without a planner.
	ErrNoPlanner = errors.New("no planner configured and no references supplied")
	// ErrNoGenerator is reported when the loop has no token source.
	ErrNoGenerator = errors.New("no generator configured")
)

// Request is one generation query. When References is empty the planner picks them.
type Request struct {
	Query      string   `json:"query"`
	References []string `json:"references,omitempty"`
}

// Dependencies are the collaborators of a Loop. Inspector and Counter are optional.
type Dependencies struct {
	Planner    llm.Planner
	Generator  llm.Generator
	Data       datasource.Provider
	Catalog    catalog.Catalog
	Inspector  inspect.Inspector
	Counter    tokenizer.Counter
	TokenModel string
	Logger     *zap.Logger
	RequestID  string
}

// Loop runs a single request. It is not reusable.
type Loop struct {
	deps    Dependencies
	started atomic.Bool

	stateMutex sync.RWMutex
	state      State
}

// NewLoop fills defaults for missing optional dependencies.
func NewLoop(deps Dependencies) *Loop {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Data == nil {
		deps.Data = datasource.StaticProvider{Data: datasource.Sample()}
	}
	if deps.Catalog.Components == nil && deps.Catalog.SelfClosingTags == nil {
		deps.Catalog = catalog.Default()
	}
	if strings.TrimSpace(deps.RequestID) == "" {
		deps.RequestID = uuid.NewString()
	}
	return &Loop{deps: deps, state: StateIdle}
}

// RequestID identifies the run in events and logs.
func (loop *Loop) RequestID() string {
	return loop.deps.RequestID
}

// State returns the current lifecycle state.
func (loop *Loop) State() State {
	loop.stateMutex.RLock()
	defer loop.stateMutex.RUnlock()
	return loop.state
}

func (loop *Loop) setState(state State) {
	loop.stateMutex.Lock()
	loop.state = state
	loop.stateMutex.Unlock()
	loop.deps.Logger.Debug("generation state changed",
		zap.String("request_id", loop.deps.RequestID),
		zap.String("state", string(state)),
	)
}

// Run executes the request and sends its events to out. A non-cancelled run ends with
// exactly one done or error event. When ctx is cancelled the token stream is closed,
// nothing is flushed, no terminal event is sent and ctx.Err() is returned.
func (loop *Loop) Run(ctx context.Context, request Request, out chan<- Event) error {
	if out == nil {
		return ErrNilChannel
	}
	if !loop.started.CompareAndSwap(false, true) {
		return ErrLoopReused
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := loop.deps.Logger.With(zap.String("request_id", loop.deps.RequestID))
	emitter := newEmitter(ctx, out, loop.deps.RequestID)
	startedAt := time.Now()

	runErr := loop.run(ctx, request, emitter, logger)
	if runErr == nil {
		logger.Info("generation completed", zap.Duration("elapsed", time.Since(startedAt)))
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Info("generation cancelled", zap.Error(ctxErr))
		return ctxErr
	}
	loop.setState(StateError)
	logger.Warn("generation failed", zap.Error(runErr))
	if sendErr := emitter.send(Event{Kind: EventKindError, Err: &ErrorEvent{Message: runErr.Error()}}); sendErr != nil {
		return sendErr
	}
	return runErr
}

func (loop *Loop) run(ctx context.Context, request Request, emitter *emitter, logger *zap.Logger) error {
	loop.setState(StatePlanning)
	graph, err := loop.deps.Data.Graph(ctx)
	if err != nil {
		return fmt.Errorf(loadGraphErrorFormat, err)
	}

	plan, planned, err := loop.plan(ctx, request, graph)
	if err != nil {
		return err
	}
	if err := emitter.send(Event{Kind: EventKindPlan, Plan: &PlanEvent{
		Query:    request.Query,
		Sources:  plan.Sources,
		Intent:   plan.Intent,
		Approach: plan.Approach,
		Planned:  planned,
	}}); err != nil {
		return err
	}

	resolved := binding.Bind(plan.Sources, graph)
	if err := emitter.send(Event{Kind: EventKindContext, Context: &ContextEvent{Data: resolved}}); err != nil {
		return err
	}
	logger.Info("generation planned",
		zap.Strings("sources", plan.Sources),
		zap.Strings("namespaces", resolved.Namespaces()),
		zap.Bool("planned", planned),
	)

	loop.setState(StateStreaming)
	if loop.deps.Generator == nil {
		return ErrNoGenerator
	}
	prompt, err := loop.prompt(request, plan, resolved)
	if err != nil {
		return err
	}
	tokens, err := loop.deps.Generator.Stream(ctx, prompt)
	if err != nil {
		return fmt.Errorf(openStreamErrorFormat, err)
	}
	defer func() {
		if closeErr := tokens.Close(); closeErr != nil {
			logger.Debug("token stream close failed", zap.Error(closeErr))
		}
	}()

	tracker := &unitTracker{}
	unitSink := func(content string, flushed bool) error {
		return loop.emitUnit(emitter, tracker, resolved, content, flushed)
	}
	segmenter := segment.NewSegmenter(segment.NewExtractor(loop.deps.Catalog.SelfClosingTags))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		delta, nextErr := tokens.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			return fmt.Errorf(readStreamErrorFormat, nextErr)
		}
		for _, unit := range segmenter.Write(delta) {
			if err := unitSink(unit, false); err != nil {
				return err
			}
		}
	}
	if remainder := segmenter.Flush(); remainder != "" {
		if err := unitSink(remainder, true); err != nil {
			return err
		}
	}

	if err := emitter.send(Event{Kind: EventKindSummary, Summary: loop.summarize(tracker, logger)}); err != nil {
		return err
	}
	loop.setState(StateDone)
	return emitter.send(Event{Kind: EventKindDone})
}

func (loop *Loop) plan(ctx context.Context, request Request, graph binding.Graph) (llm.Plan, bool, error) {
	if len(request.References) > 0 {
		return llm.Plan{Sources: append([]string(nil), request.References...)}, false, nil
	}
	if loop.deps.Planner == nil {
		return llm.Plan{}, false, ErrNoPlanner
	}
	plan, err := loop.deps.Planner.Plan(ctx, request.Query, graph.Sources())
	if err != nil {
		return llm.Plan{}, false, fmt.Errorf(planErrorFormat, err)
	}
	if plan.Sources == nil {
		plan.Sources = []string{}
	}
	return plan, true, nil
}

func (loop *Loop) prompt(request Request, plan llm.Plan, resolved binding.Context) (llm.Prompt, error) {
	system, err := prompts.UISystem(plan.Intent, plan.Approach, loop.deps.Catalog)
	if err != nil {
		return llm.Prompt{}, fmt.Errorf(promptErrorFormat, err)
	}
	user, err := prompts.User(request.Query, resolved)
	if err != nil {
		return llm.Prompt{}, fmt.Errorf(promptErrorFormat, err)
	}
	return llm.Prompt{System: system, User: user}, nil
}

func (loop *Loop) emitUnit(emitter *emitter, tracker *unitTracker, resolved binding.Context, content string, flushed bool) error {
	if err := emitter.send(Event{Kind: EventKindUnit, Unit: &UnitEvent{
		Index:   tracker.units,
		Content: content,
		Flushed: flushed,
	}}); err != nil {
		return err
	}
	tracker.add(content)
	if loop.deps.Inspector == nil {
		return nil
	}
	available := resolved.Graph()
	for _, source := range inspect.Sources(loop.deps.Inspector, content) {
		if _, found := binding.Resolve(source, available); found {
			continue
		}
		tracker.warnings++
		if err := emitter.send(Event{Kind: EventKindWarning, Message: &LogEvent{
			Level:   warningLevel,
			Message: fmt.Sprintf(unresolvedSourceFormat, source),
			Source:  source,
		}}); err != nil {
			return err
		}
	}
	return nil
}

func (loop *Loop) summarize(tracker *unitTracker, logger *zap.Logger) *SummaryEvent {
	summary := &SummaryEvent{Units: tracker.units, Bytes: tracker.bytes, Warnings: tracker.warnings}
	if loop.deps.Counter == nil {
		return summary
	}
	result, err := tokenizer.CountText(loop.deps.Counter, tracker.markup.String())
	if err != nil {
		logger.Warn("token count failed", zap.Error(err))
		return summary
	}
	if result.Counted {
		summary.Tokens = result.Tokens
		summary.Model = loop.deps.TokenModel
		if summary.Model == "" {
			summary.Model = loop.deps.Counter.Name()
		}
	}
	return summary
}
