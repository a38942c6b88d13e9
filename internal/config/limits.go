package config

// GenerationConfig tunes every model call and the refinement loop.
type GenerationConfig struct {
	QualityThreshold float64           `yaml:"quality_threshold" validate:"min=0,max=10"`
	MaxRefinements   int               `yaml:"max_refinements" validate:"min=0,max=10"`
	Temperatures     StageTemperatures `yaml:"temperatures" validate:"required"`
	MaxTokens        StageTokens       `yaml:"max_tokens" validate:"required"`
}

type StageTemperatures struct {
	Analysis   float64 `yaml:"analysis" validate:"min=0,max=2"`
	Planning   float64 `yaml:"planning" validate:"min=0,max=2"`
	Drafting   float64 `yaml:"drafting" validate:"min=0,max=2"`
	Evaluation float64 `yaml:"evaluation" validate:"min=0,max=2"`
	Refinement float64 `yaml:"refinement" validate:"min=0,max=2"`
}

type StageTokens struct {
	Analysis   int `yaml:"analysis" validate:"required,min=1,max=32000"`
	Planning   int `yaml:"planning" validate:"required,min=1,max=32000"`
	Drafting   int `yaml:"drafting" validate:"required,min=1,max=32000"`
	Evaluation int `yaml:"evaluation" validate:"required,min=1,max=32000"`
	Refinement int `yaml:"refinement" validate:"required,min=1,max=32000"`
}

type Limits struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" validate:"required"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"required,min=1,max=1000"`
	BurstSize         int `yaml:"burst_size" validate:"required,min=1,max=100"`
}

func DefaultGeneration() GenerationConfig {
	return GenerationConfig{
		QualityThreshold: 7.0,
		MaxRefinements:   2,
		Temperatures: StageTemperatures{
			Analysis:   0.3,
			Planning:   0.5,
			Drafting:   0.8,
			Evaluation: 0.2,
			Refinement: 0.7,
		},
		MaxTokens: StageTokens{
			Analysis:   300,
			Planning:   500,
			Drafting:   900,
			Evaluation: 500,
			Refinement: 900,
		},
	}
}

func DefaultLimits() Limits {
	return Limits{
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         5,
		},
	}
}
