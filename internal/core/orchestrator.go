package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dotcommander/bedtime/internal/domain/story"
	"github.com/dotcommander/bedtime/internal/metrics"
)

// Stages bundles the stage implementations a Pipeline is built from.
type Stages struct {
	Analyzer  RequestAnalyzer
	Planner   ArcPlanner
	Drafter   Drafter
	Evaluator Evaluator
	Refiner   Refiner
	Feedback  FeedbackApplier
}

func (s Stages) validate() error {
	missing := []string{}
	if s.Analyzer == nil {
		missing = append(missing, "analyzer")
	}
	if s.Planner == nil {
		missing = append(missing, "planner")
	}
	if s.Drafter == nil {
		missing = append(missing, "drafter")
	}
	if s.Evaluator == nil {
		missing = append(missing, "evaluator")
	}
	if s.Refiner == nil {
		missing = append(missing, "refiner")
	}
	if s.Feedback == nil {
		missing = append(missing, "feedback applier")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrNilStage, strings.Join(missing, ", "))
	}
	return nil
}

// Result is everything one Generate call produced.
type Result struct {
	SessionID   string
	Request     story.Request
	Arc         story.Arc
	Story       string
	Evaluation  story.Evaluation
	Outcome     State
	Evaluations int
	Refinements int
	History     []story.Evaluation
}

// Pipeline runs analysis, planning, drafting and the refinement loop in
// order, and exposes the single-pass revise and re-evaluate operations used
// by the interactive loop.
type Pipeline struct {
	stages     Stages
	refinement *RefinementOrchestrator
	config     RefinementConfig
	observer   Observer
	metrics    *metrics.Recorder
	logger     *slog.Logger
	newID      func() string
}

type Option func(*Pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(p *Pipeline) {
		p.metrics = r
	}
}

func WithProgress(observer Observer) Option {
	return func(p *Pipeline) {
		p.observer = observer
	}
}

func WithSessionIDs(newID func() string) Option {
	return func(p *Pipeline) {
		p.newID = newID
	}
}

func New(stages Stages, config RefinementConfig, opts ...Option) (*Pipeline, error) {
	if err := stages.validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		stages: stages,
		config: config,
		logger: slog.Default(),
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}

	p.refinement = NewRefinementOrchestrator(stages.Evaluator, stages.Refiner, config,
		WithObserver(p.observer),
		WithRefinementMetrics(p.metrics),
		WithRefinementLogger(p.logger))

	return p, nil
}

// Config returns the refinement bounds in use.
func (p *Pipeline) Config() RefinementConfig {
	return p.refinement.Config()
}

// Generate turns a free-text request into an evaluated story. A loop that
// runs out of refinements still returns a story; only stage failures are
// errors.
func (p *Pipeline) Generate(ctx context.Context, userInput string) (Result, error) {
	if strings.TrimSpace(userInput) == "" {
		return Result{}, fmt.Errorf("%w: empty request", ErrInvalidInput)
	}

	sessionID := p.newID()
	logger := p.logger.With("session_id", sessionID)
	logger.Info("generating story", "request_length", len(userInput))

	req, err := p.stages.Analyzer.Analyze(ctx, userInput)
	if err != nil {
		return Result{}, fmt.Errorf("analyzing request: %w", err)
	}
	logger.Info("request analyzed", "category", req.Category, "themes", req.Themes)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	arc, err := p.stages.Planner.Plan(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("planning arc: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	draft, err := p.stages.Drafter.Draft(ctx, req, arc)
	if err != nil {
		return Result{}, fmt.Errorf("drafting story: %w", err)
	}
	logger.Info("draft written", "length", len(draft))

	outcome, err := p.refinement.Run(ctx, draft)
	if err != nil {
		return Result{}, err
	}

	return Result{
		SessionID:   sessionID,
		Request:     req,
		Arc:         arc,
		Story:       outcome.Story,
		Evaluation:  outcome.Evaluation,
		Outcome:     outcome.State,
		Evaluations: outcome.Evaluations,
		Refinements: outcome.Refinements,
		History:     outcome.History,
	}, nil
}

// Revise applies one reader change request. It never loops.
func (p *Pipeline) Revise(ctx context.Context, text, change string, category story.Category) (string, error) {
	if strings.TrimSpace(change) == "" {
		return "", fmt.Errorf("%w: empty change request", ErrInvalidInput)
	}
	revised, err := p.stages.Feedback.Apply(ctx, text, change, category)
	if err != nil {
		return "", fmt.Errorf("applying feedback: %w", err)
	}
	return revised, nil
}

// Evaluate scores a story once, outside the refinement loop.
func (p *Pipeline) Evaluate(ctx context.Context, text string) (story.Evaluation, error) {
	eval, err := p.stages.Evaluator.Evaluate(ctx, text)
	if err != nil {
		return story.Evaluation{}, fmt.Errorf("evaluating story: %w", err)
	}
	return eval, nil
}
