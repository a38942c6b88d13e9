package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dotcommander/bedtime/internal/domain/story"
	"github.com/dotcommander/bedtime/internal/metrics"
)

// State is a position in the evaluate/refine state machine.
type State string

const (
	StateDrafted   State = "drafted"
	StateEvaluated State = "evaluated"
	StateRefined   State = "refined"
	StateApproved  State = "approved"
	StateExhausted State = "exhausted"
)

// Terminal reports whether s ends the loop.
func (s State) Terminal() bool {
	return s == StateApproved || s == StateExhausted
}

// RefinementConfig bounds the loop.
type RefinementConfig struct {
	MaxIterations int
	Threshold     float64
}

// DefaultRefinementConfig returns the default budget and quality bar.
func DefaultRefinementConfig() RefinementConfig {
	return RefinementConfig{
		MaxIterations: 2,
		Threshold:     7.0,
	}
}

// Transition is reported to an Observer on every state change.
type Transition struct {
	State      State
	Iteration  int
	Evaluation story.Evaluation
	Feedback   string
}

// Observer receives loop transitions, e.g. for progress output.
type Observer func(Transition)

// RefinementResult is the terminal outcome of one loop. Evaluation always
// belongs to Story.
type RefinementResult struct {
	Story       string
	Evaluation  story.Evaluation
	State       State
	Evaluations int
	Refinements int
	History     []story.Evaluation
}

// Approved reports whether the loop ended by meeting the threshold.
func (r RefinementResult) Approved() bool {
	return r.State == StateApproved
}

// RefinementOrchestrator runs the bounded evaluate→refine loop.
type RefinementOrchestrator struct {
	evaluator Evaluator
	refiner   Refiner
	config    RefinementConfig
	observer  Observer
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

type RefinementOption func(*RefinementOrchestrator)

func WithObserver(observer Observer) RefinementOption {
	return func(o *RefinementOrchestrator) {
		o.observer = observer
	}
}

func WithRefinementMetrics(r *metrics.Recorder) RefinementOption {
	return func(o *RefinementOrchestrator) {
		o.metrics = r
	}
}

func WithRefinementLogger(logger *slog.Logger) RefinementOption {
	return func(o *RefinementOrchestrator) {
		o.logger = logger.With("component", "refinement")
	}
}

func NewRefinementOrchestrator(evaluator Evaluator, refiner Refiner, config RefinementConfig, opts ...RefinementOption) *RefinementOrchestrator {
	if config.MaxIterations < 0 {
		config.MaxIterations = 0
	}

	o := &RefinementOrchestrator{
		evaluator: evaluator,
		refiner:   refiner,
		config:    config,
		logger:    slog.Default().With("component", "refinement"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Config returns the loop bounds in use.
func (o *RefinementOrchestrator) Config() RefinementConfig {
	return o.config
}

// Run evaluates draft and refines it until an evaluation meets the threshold
// or MaxIterations refinements have been spent. Failing to reach the
// threshold is reported as StateExhausted, not as an error. It performs at
// most MaxIterations+1 evaluations and never refines an unscored draft.
func (o *RefinementOrchestrator) Run(ctx context.Context, draft string) (RefinementResult, error) {
	result := RefinementResult{Story: draft}
	o.notify(Transition{State: StateDrafted})

	for iteration := 0; ; iteration++ {
		if err := ctx.Err(); err != nil {
			return RefinementResult{}, err
		}

		eval, err := o.evaluator.Evaluate(ctx, result.Story)
		if err != nil {
			return RefinementResult{}, fmt.Errorf("evaluating draft (iteration %d): %w", iteration, err)
		}
		result.Evaluation = eval
		result.Evaluations++
		result.History = append(result.History, eval)
		o.notify(Transition{State: StateEvaluated, Iteration: iteration, Evaluation: eval})

		o.logger.Info("draft evaluated",
			"iteration", iteration,
			"overall_score", eval.OverallScore,
			"threshold", o.config.Threshold)

		if eval.Approved(o.config.Threshold) {
			return o.finish(result, StateApproved, iteration), nil
		}
		if iteration >= o.config.MaxIterations {
			return o.finish(result, StateExhausted, iteration), nil
		}

		if err := ctx.Err(); err != nil {
			return RefinementResult{}, err
		}

		o.logger.Info("refining draft",
			"iteration", iteration,
			"feedback", eval.Feedback)

		refined, err := o.refiner.Refine(ctx, result.Story, eval.Feedback)
		if err != nil {
			return RefinementResult{}, fmt.Errorf("refining draft (iteration %d): %w", iteration, err)
		}
		result.Story = refined
		result.Refinements++
		o.notify(Transition{State: StateRefined, Iteration: iteration, Evaluation: eval, Feedback: eval.Feedback})
	}
}

func (o *RefinementOrchestrator) finish(result RefinementResult, state State, iteration int) RefinementResult {
	result.State = state
	o.notify(Transition{State: state, Iteration: iteration, Evaluation: result.Evaluation})
	o.metrics.ObserveRefinement(string(state), result.Refinements, result.Evaluation.OverallScore)

	o.logger.Info("refinement finished",
		"state", state,
		"evaluations", result.Evaluations,
		"refinements", result.Refinements,
		"overall_score", result.Evaluation.OverallScore)

	return result
}

func (o *RefinementOrchestrator) notify(t Transition) {
	if o.observer != nil {
		o.observer(t)
	}
}
