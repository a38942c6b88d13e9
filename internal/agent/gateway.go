package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/dotcommander/bedtime/internal/core"
	"github.com/dotcommander/bedtime/internal/metrics"
	"github.com/dotcommander/bedtime/pkg/utils"
)

// Decoded is the outcome of decoding a structured response. When Defaulted is
// true, Fields is the caller's fallback mapping and the response was discarded.
type Decoded struct {
	Fields    map[string]any
	Defaulted bool
}

// Gateway is the only path from the pipeline stages to the generation service.
type Gateway struct {
	generator Generator
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

type GatewayOption func(*Gateway)

// WithMetrics records call and fallback metrics on r.
func WithMetrics(r *metrics.Recorder) GatewayOption {
	return func(g *Gateway) {
		g.metrics = r
	}
}

// WithGatewayLogger sets a custom logger for the gateway
func WithGatewayLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger.With("component", "gateway")
	}
}

func NewGateway(generator Generator, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		generator: generator,
		logger:    slog.Default().With("component", "gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Call sends prompt to the generation service and returns its raw text.
// A failed exchange is returned as a *core.TransportError.
func (g *Gateway) Call(ctx context.Context, stage, prompt string, maxTokens int, temperature float64) (string, error) {
	start := time.Now()
	text, err := g.generator.Generate(ctx, GenerationRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	elapsed := time.Since(start)
	g.metrics.ObserveCall(stage, elapsed, err)

	if err != nil {
		return "", core.NewTransportError(stage, err)
	}

	g.logger.Debug("generation call completed",
		"stage", stage,
		"duration_ms", elapsed.Milliseconds(),
		"response_length", len(text))

	return text, nil
}

// Decode extracts a JSON object from text. It never fails: anything that does
// not parse yields fallback unchanged.
func (g *Gateway) Decode(stage, text string, fallback map[string]any) Decoded {
	fields, err := utils.ParseJSONObject(text)
	if err != nil {
		g.metrics.ObserveFallback(stage)
		g.logger.Debug("structured response unparsable, using default",
			"stage", stage,
			"response_length", len(text))
		return Decoded{Fields: fallback, Defaulted: true}
	}
	return Decoded{Fields: fields}
}
