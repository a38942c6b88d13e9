package bedtime

import (
	"context"

	"github.com/dotcommander/bedtime/internal/agent"
)

type refineData struct {
	Story    string
	Feedback string
}

// Refiner rewrites a story from evaluator feedback. It never sees the
// original request or arc.
type Refiner struct {
	basePhase
}

func NewRefiner(gateway *agent.Gateway, prompts *Prompts, params Params) *Refiner {
	return &Refiner{basePhase: newBasePhase(StageRefine, gateway, prompts, params)}
}

func (r *Refiner) Refine(ctx context.Context, text, feedback string) (string, error) {
	revised, err := r.complete(ctx, refineData{Story: text, Feedback: feedback})
	if err != nil {
		return "", err
	}
	r.logger.Info("story refined", "length", len(revised))
	return revised, nil
}
