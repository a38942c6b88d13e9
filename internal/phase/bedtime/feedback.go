package bedtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotcommander/bedtime/internal/agent"
	"github.com/dotcommander/bedtime/internal/core"
	"github.com/dotcommander/bedtime/internal/domain/story"
)

type reviseData struct {
	Story  string
	Change string
}

// FeedbackApplier applies a reader's change request to a finished story in a
// single pass. It keeps no state between calls.
type FeedbackApplier struct {
	basePhase
}

func NewFeedbackApplier(gateway *agent.Gateway, prompts *Prompts, params Params) *FeedbackApplier {
	return &FeedbackApplier{basePhase: newBasePhase(StageRevise, gateway, prompts, params)}
}

// Apply returns the updated story. category is only logged.
func (f *FeedbackApplier) Apply(ctx context.Context, text, change string, category story.Category) (string, error) {
	if strings.TrimSpace(change) == "" {
		return "", fmt.Errorf("%w: empty change request", core.ErrInvalidInput)
	}

	updated, err := f.complete(ctx, reviseData{Story: text, Change: change})
	if err != nil {
		return "", err
	}
	f.logger.Info("user feedback applied", "category", category, "length", len(updated))
	return updated, nil
}
