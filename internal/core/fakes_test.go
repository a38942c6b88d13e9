package core_test

import (
	"context"
	"fmt"

	"github.com/dotcommander/bedtime/internal/domain/story"
)

type scriptedEvaluator struct {
	scores []float64
	err    error
	seen   []string
}

func (e *scriptedEvaluator) Evaluate(ctx context.Context, text string) (story.Evaluation, error) {
	if e.err != nil {
		return story.Evaluation{}, e.err
	}
	i := len(e.seen)
	e.seen = append(e.seen, text)
	if i >= len(e.scores) {
		return story.Evaluation{}, fmt.Errorf("unexpected evaluation %d", i+1)
	}
	return story.Evaluation{
		OverallScore: e.scores[i],
		Feedback:     fmt.Sprintf("feedback %d", i+1),
	}, nil
}

type countingRefiner struct {
	err       error
	feedbacks []string
}

func (r *countingRefiner) Refine(ctx context.Context, text, feedback string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.feedbacks = append(r.feedbacks, feedback)
	return fmt.Sprintf("draft %d", len(r.feedbacks)+1), nil
}

type stubAnalyzer struct {
	req   story.Request
	err   error
	calls int
}

func (a *stubAnalyzer) Analyze(ctx context.Context, userInput string) (story.Request, error) {
	a.calls++
	if a.err != nil {
		return story.Request{}, a.err
	}
	req := a.req
	req.UserInput = userInput
	return req, nil
}

type stubPlanner struct {
	arc   story.Arc
	err   error
	calls int
}

func (p *stubPlanner) Plan(ctx context.Context, req story.Request) (story.Arc, error) {
	p.calls++
	return p.arc, p.err
}

type stubDrafter struct {
	text  string
	err   error
	calls int
}

func (d *stubDrafter) Draft(ctx context.Context, req story.Request, arc story.Arc) (string, error) {
	d.calls++
	return d.text, d.err
}

type stubApplier struct {
	err      error
	category story.Category
	calls    int
}

func (a *stubApplier) Apply(ctx context.Context, text, change string, category story.Category) (string, error) {
	a.calls++
	a.category = category
	if a.err != nil {
		return "", a.err
	}
	return text + " [" + change + "]", nil
}
