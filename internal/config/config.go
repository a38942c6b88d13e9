package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/bedtime/internal/core"
)

const (
	DefaultModel   = "gpt-3.5-turbo"
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultTimeout = 60

	apiKeyPlaceholder = "${OPENAI_API_KEY}"
)

type Config struct {
	AI         AIConfig         `yaml:"ai" validate:"required"`
	Generation GenerationConfig `yaml:"generation" validate:"required"`
	Limits     Limits           `yaml:"limits" validate:"required"`
	Paths      PathsConfig      `yaml:"paths"`
	Logging    LoggingConfig    `yaml:"logging" validate:"required"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type AIConfig struct {
	APIKey  string `yaml:"api_key" validate:"required,min=20"`
	Model   string `yaml:"model" validate:"required"`
	BaseURL string `yaml:"base_url" validate:"required,url"`
	Timeout int    `yaml:"timeout" validate:"required,min=5,max=600"`
}

type PathsConfig struct {
	// PromptsDir holds optional <stage>.tmpl overrides.
	PromptsDir string `yaml:"prompts_dir" validate:"omitempty,dirpath"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// LoadOptions controls where configuration comes from.
type LoadOptions struct {
	// Path overrides the config file lookup.
	Path string
	// Offline skips the credential requirement.
	Offline bool
}

// Default returns a complete configuration without credentials.
func Default() Config {
	return Config{
		AI: AIConfig{
			Model:   DefaultModel,
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Generation: DefaultGeneration(),
		Limits:     DefaultLimits(),
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the YAML file (if any) over the defaults, applies environment
// overrides and validates the result. A missing file is not an error.
func Load(opts LoadOptions) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	configPath := opts.Path
	if configPath == "" {
		configPath = getConfigPath()
	}
	configPath = expandTilde(configPath)

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist) && opts.Path == "":
		// defaults only
	case err != nil:
		return nil, core.NewConfigError("path", fmt.Errorf("reading config file: %w", err))
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, core.NewConfigError("path", fmt.Errorf("parsing config file %s: %w", configPath, err))
		}
	}

	cfg.applyEnv()

	if cfg.AI.APIKey == "" && !opts.Offline {
		return nil, core.NewConfigError("ai.api_key", core.ErrNoAPIKey)
	}

	if err := cfg.validate(opts.Offline); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.AI.APIKey == "" || c.AI.APIKey == apiKeyPlaceholder {
		c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		c.AI.Model = model
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		c.AI.BaseURL = baseURL
	}
}

func getConfigPath() string {
	// 1. Explicit config path via environment variable
	if path := os.Getenv("BEDTIME_CONFIG"); path != "" {
		return path
	}

	// 2. XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "bedtime", "config.yaml")
	}

	// 3. ~/.config/bedtime/config.yaml
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bedtime", "config.yaml")
}

// expandTilde expands a leading ~/ to the user's home directory.
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func (c *Config) validate(offline bool) error {
	if c.Paths.PromptsDir != "" {
		c.Paths.PromptsDir = expandTilde(c.Paths.PromptsDir)
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)

	validate := validator.New()

	// Prompt overrides are optional per file; the directory is checked when loaded.
	validate.RegisterValidation("dirpath", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	var err error
	if offline {
		err = validate.StructExcept(c, "AI.APIKey")
	} else {
		err = validate.Struct(c)
	}
	if err == nil {
		return nil
	}

	field := ""
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field = verrs[0].Namespace()
	}
	return core.NewConfigError(field, fmt.Errorf("config validation failed: %w", err))
}
