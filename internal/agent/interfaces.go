package agent

import "context"

// GenerationRequest is one prompt plus its sampling parameters.
type GenerationRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Generator is the single operation the language-model service has to offer.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}
