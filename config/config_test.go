package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naruu-io/naruu/pipeline"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("NARUU_AI_MODEL", "")
	t.Setenv("NARUU_AI_MAX_TOKENS", "")
	t.Setenv("NARUU_AI_SCRIPT_TEMPERATURE", "")
	t.Setenv("NARUU_DATABASE_PATH", "")
	t.Setenv("NARUU_LOG_LEVEL", "")
	t.Setenv("NARUU_LOG_FORMAT", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Empty(t, cfg.AnthropicAPIKey)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Model)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Empty(t, cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "sk-oai-test")
	t.Setenv("NARUU_AI_MODEL", "claude-haiku-test")
	t.Setenv("NARUU_AI_MAX_TOKENS", "512")
	t.Setenv("NARUU_AI_SCRIPT_TEMPERATURE", "0.2")
	t.Setenv("NARUU_DATABASE_PATH", "/tmp/naruu.db")
	t.Setenv("NARUU_LOG_LEVEL", "debug")
	t.Setenv("NARUU_LOG_FORMAT", "text")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "sk-ant-test", cfg.AnthropicAPIKey)
	assert.Equal(t, "sk-oai-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "claude-haiku-test", cfg.Model)
	assert.Equal(t, 512, cfg.MaxTokens)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, "/tmp/naruu.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("NARUU_AI_MAX_TOKENS", "lots")

	_, err := Load()

	assert.Error(t, err)
}

func TestStageConfig(t *testing.T) {
	cfg := Config{
		AnthropicAPIKey: "sk-ant-test",
		OpenAIAPIKey:    "sk-oai-test",
		Model:           "claude-haiku-test",
		MaxTokens:       512,
		Temperature:     0.2,
	}

	stage := cfg.StageConfig()

	assert.Equal(t, "sk-ant-test", stage.String(pipeline.ConfigAnthropicAPIKey, ""))
	assert.Equal(t, "sk-oai-test", stage.String(pipeline.ConfigOpenAIAPIKey, ""))
	assert.Equal(t, "claude-haiku-test", stage.String(pipeline.ConfigModel, ""))
	assert.Equal(t, 512, stage.Int(pipeline.ConfigMaxTokens, 0))
	assert.Equal(t, 0.2, stage.Float(pipeline.ConfigTemperature, 0))
}
