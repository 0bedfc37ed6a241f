// Package config loads process-level settings from environment variables.
// Components receive their settings via functional options; this package only
// centralizes how a deployment maps the environment onto those options.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/naruu-io/naruu/pipeline"
)

// Config holds the deployment settings of the platform core.
type Config struct {
	// AnthropicAPIKey enables AI routing and the script stage.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	// OpenAIAPIKey enables the optional image stage.
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	// Model used for routing and script generation.
	Model string `env:"NARUU_AI_MODEL" envDefault:"claude-sonnet-4-5-20250929"`

	// MaxTokens bounds script generation output.
	MaxTokens int `env:"NARUU_AI_MAX_TOKENS" envDefault:"2048"`

	// Temperature for script generation.
	Temperature float64 `env:"NARUU_AI_SCRIPT_TEMPERATURE" envDefault:"0.7"`

	// DatabasePath selects the SQLite store; empty keeps records in memory.
	DatabasePath string `env:"NARUU_DATABASE_PATH"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"NARUU_LOG_LEVEL" envDefault:"info"`

	// LogFormat is json or text.
	LogFormat string `env:"NARUU_LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// StageConfig converts the deployment settings into the per-advance config
// consumed by stage handlers.
func (c Config) StageConfig() pipeline.Config {
	return pipeline.Config{
		pipeline.ConfigAnthropicAPIKey: c.AnthropicAPIKey,
		pipeline.ConfigOpenAIAPIKey:    c.OpenAIAPIKey,
		pipeline.ConfigModel:           c.Model,
		pipeline.ConfigMaxTokens:       c.MaxTokens,
		pipeline.ConfigTemperature:     c.Temperature,
	}
}
