package core

import (
	"context"

	"github.com/dotcommander/bedtime/internal/domain/story"
)

// RequestAnalyzer classifies a free-text request.
type RequestAnalyzer interface {
	Analyze(ctx context.Context, userInput string) (story.Request, error)
}

// ArcPlanner expands a request into a five-part arc.
type ArcPlanner interface {
	Plan(ctx context.Context, req story.Request) (story.Arc, error)
}

// Drafter renders the first full story text.
type Drafter interface {
	Draft(ctx context.Context, req story.Request, arc story.Arc) (string, error)
}

// Evaluator scores one story text.
type Evaluator interface {
	Evaluate(ctx context.Context, text string) (story.Evaluation, error)
}

// Refiner rewrites a story from evaluator feedback.
type Refiner interface {
	Refine(ctx context.Context, text, feedback string) (string, error)
}

// FeedbackApplier applies a reader's change request in a single pass.
type FeedbackApplier interface {
	Apply(ctx context.Context, text, change string, category story.Category) (string, error)
}
