package bedtime

import (
	"context"
	"math"

	"github.com/dotcommander/bedtime/internal/agent"
	"github.com/dotcommander/bedtime/internal/domain/story"
)

const (
	minScore = 0
	maxScore = 10
)

// DefaultEvaluation is the mapping substituted when the evaluation response
// cannot be decoded.
func DefaultEvaluation() map[string]any {
	return map[string]any{
		"age_appropriateness": 7,
		"story_structure":     7,
		"engagement":          7,
		"educational_value":   7,
		"overall_score":       7.0,
		"feedback":            "Acceptable.",
	}
}

// scores arrive as JSON numbers which may be fractional
type evaluationFields struct {
	AgeAppropriateness float64 `json:"age_appropriateness"`
	StoryStructure     float64 `json:"story_structure"`
	Engagement         float64 `json:"engagement"`
	EducationalValue   float64 `json:"educational_value"`
	OverallScore       float64 `json:"overall_score"`
	Feedback           string  `json:"feedback"`
}

type evaluateData struct {
	Story string
}

// Evaluator scores a draft against the four rubric dimensions.
type Evaluator struct {
	basePhase
}

func NewEvaluator(gateway *agent.Gateway, prompts *Prompts, params Params) *Evaluator {
	return &Evaluator{basePhase: newBasePhase(StageEvaluate, gateway, prompts, params)}
}

// Evaluate scores text. Sub-scores are rounded and clamped to [0,10]. A
// reported overall score is kept (clamped); when the model leaves it out the
// mean of the sub-scores is used.
func (e *Evaluator) Evaluate(ctx context.Context, text string) (story.Evaluation, error) {
	response, err := e.complete(ctx, evaluateData{Story: text})
	if err != nil {
		return story.Evaluation{}, err
	}

	decoded := e.gateway.Decode(e.name, response, DefaultEvaluation())
	fields, _, wholesale := decodeAs[evaluationFields](decoded, DefaultEvaluation())

	clamped := false
	score := func(v float64) int {
		r := math.Round(v)
		if r < minScore || r > maxScore {
			clamped = true
		}
		return int(clampFloat(r))
	}

	eval := story.Evaluation{
		AgeAppropriateness: score(fields.AgeAppropriateness),
		StoryStructure:     score(fields.StoryStructure),
		Engagement:         score(fields.Engagement),
		EducationalValue:   score(fields.EducationalValue),
		Feedback:           fields.Feedback,
	}

	reported := wholesale || decoded.Defaulted || decoded.Fields["overall_score"] != nil
	if reported {
		if fields.OverallScore < minScore || fields.OverallScore > maxScore {
			clamped = true
		}
		eval.OverallScore = clampFloat(fields.OverallScore)
	} else {
		eval.OverallScore = eval.Mean()
	}

	if clamped {
		e.logger.Warn("evaluation scores outside 0-10 were clamped",
			"raw_overall", fields.OverallScore)
	}

	e.logger.Info("story evaluated",
		"overall_score", eval.OverallScore,
		"overall_reported", reported,
		"defaulted", decoded.Defaulted || wholesale)

	return eval, nil
}

func clampFloat(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}
