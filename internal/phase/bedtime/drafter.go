package bedtime

import (
	"context"

	"github.com/dotcommander/bedtime/internal/agent"
	"github.com/dotcommander/bedtime/internal/domain/story"
)

type draftData struct {
	Request  story.Request
	Arc      story.Arc
	Guidance string
}

// Drafter writes the first full draft from a request and its arc.
type Drafter struct {
	basePhase
}

func NewDrafter(gateway *agent.Gateway, prompts *Prompts, params Params) *Drafter {
	return &Drafter{basePhase: newBasePhase(StageDraft, gateway, prompts, params)}
}

// Draft returns the model's story text verbatim.
func (d *Drafter) Draft(ctx context.Context, req story.Request, arc story.Arc) (string, error) {
	text, err := d.complete(ctx, draftData{
		Request:  req,
		Arc:      arc,
		Guidance: story.GuidanceFor(req.Category),
	})
	if err != nil {
		return "", err
	}

	d.logger.Info("draft written", "category", req.Category, "length", len(text))
	return text, nil
}
