package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/naruu-io/naruu/store"
)

// Per-token rates in USD (Claude Sonnet class pricing).
const (
	inputCostPerToken  = 3.0 / 1_000_000  // $3/MTok
	outputCostPerToken = 15.0 / 1_000_000 // $15/MTok
)

// Config keys consumed by the script stage.
const (
	ConfigAnthropicAPIKey = "anthropic_api_key"
	ConfigModel           = "ai_model"
	ConfigMaxTokens       = "ai_max_tokens"
	ConfigTemperature     = "ai_script_temperature"
)

const (
	defaultScriptModel       = "claude-sonnet-4-5-20250929"
	defaultScriptMaxTokens   = 2048
	defaultScriptTemperature = 0.7
	defaultScriptTimeout     = 60 * time.Second
)

// systemPrompts maps content type → language → writer persona. Unknown
// content types fall back to video, unknown languages to Japanese, matching
// the platform's primary audience.
var systemPrompts = map[string]map[string]string{
	"video": {
		"ja": "You are a video narration scriptwriter for the NARUU platform. " +
			"Write, in natural Japanese, an engaging narration script introducing " +
			"Daegu's medical beauty and tourism to Japanese viewers. " +
			"Structure the script with an intro, a body and a closing.",
		"ko": "You are a video narration scriptwriter for the NARUU platform. " +
			"Write, in natural Korean, an engaging narration script introducing " +
			"Daegu's medical beauty and tourism. " +
			"Structure the script with an intro, a body and a closing.",
		"en": "You are a video narration scriptwriter for the NARUU platform. " +
			"Create a script introducing Daegu's medical beauty and tourism to viewers. " +
			"Use engaging language with a clear intro, body, and conclusion.",
	},
	"blog": {
		"ja": "You are an SEO blog writer for the NARUU platform. " +
			"Write, in Japanese, an SEO-optimized blog post about Daegu's medical " +
			"beauty and tourism. Use headings (H2, H3) for readability.",
		"ko": "You are an SEO blog writer for the NARUU platform. " +
			"Write, in Korean, an SEO-optimized blog post about Daegu's medical " +
			"beauty and tourism. Use headings (H2, H3) for readability.",
		"en": "You are an SEO blog writer for the NARUU platform. " +
			"Create an SEO-optimized blog post about Daegu's medical beauty and tourism. " +
			"Use headings (H2, H3) for readability.",
	},
	"sns": {
		"ja": "You are an SNS content creator for the NARUU platform. " +
			"Write, in Japanese, a short social post introducing Daegu's medical " +
			"beauty and tourism. Include hashtags and make it shareable.",
		"ko": "You are an SNS content creator for the NARUU platform. " +
			"Write, in Korean, a short social post introducing Daegu's medical " +
			"beauty and tourism. Include hashtags and make it shareable.",
		"en": "You are an SNS content creator for the NARUU platform. " +
			"Create a short SNS post about Daegu's medical beauty and tourism. " +
			"Include hashtags and make it engaging and shareable.",
	},
}

// buildScriptPrompt selects the system prompt for the record's content type
// and language and formulates the user message from its topic (falling back
// to the title).
func buildScriptPrompt(content *store.Content) (system string, user string) {
	byLang, ok := systemPrompts[content.ContentType]
	if !ok {
		byLang = systemPrompts["video"]
	}
	system, ok = byLang[content.Language]
	if !ok {
		system = byLang["ja"]
	}

	topic := content.Topic
	if topic == "" {
		topic = content.Title
	}
	return system, fmt.Sprintf("Topic: %s", topic)
}

// scriptCost computes the USD cost of one generation call from the returned
// token counts, rounded to micro-dollar precision.
func scriptCost(inputTokens, outputTokens int64) float64 {
	cost := float64(inputTokens)*inputCostPerToken + float64(outputTokens)*outputCostPerToken
	return math.Round(cost*1e6) / 1e6
}

// ScriptGeneratorOptions configures the script stage handler.
type ScriptGeneratorOptions struct {
	// BaseURL overrides the API endpoint (tests point this at a local server).
	BaseURL string

	// HTTPClient overrides the transport.
	HTTPClient *http.Client

	// Timeout bounds each generation call. Defaults to 60s.
	Timeout time.Duration
}

// ScriptGenerator is the script stage handler. It turns a content record's
// topic into generated script text via the Anthropic Messages API, charging
// the record for the tokens actually consumed.
//
// Every transition through this handler costs money, so the client is built
// with retries disabled: a failure surfaces as a failed stage instead of
// being silently re-billed.
type ScriptGenerator struct {
	opts ScriptGeneratorOptions
}

// Compile-time interface assertion.
var _ Handler = (*ScriptGenerator)(nil)

// NewScriptGenerator constructs the handler.
func NewScriptGenerator(optFns ...func(o *ScriptGeneratorOptions)) *ScriptGenerator {
	opts := ScriptGeneratorOptions{Timeout: defaultScriptTimeout}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ScriptGenerator{opts: opts}
}

// Stage returns the pipeline stage this handler is bound to.
func (g *ScriptGenerator) Stage() Stage { return StageScript }

// Execute generates script text for the record.
//
// Config keys:
//   - anthropic_api_key (required)
//   - ai_model (default claude-sonnet-4-5-20250929)
//   - ai_max_tokens (default 2048)
//   - ai_script_temperature (default 0.7)
//
// Any non-success HTTP or transport outcome is converted into a failed Result
// with a short diagnostic; cost is only reported on success.
func (g *ScriptGenerator) Execute(ctx context.Context, content *store.Content, cfg Config) Result {
	apiKey := cfg.String(ConfigAnthropicAPIKey, "")
	if apiKey == "" {
		return Result{
			Success:   false,
			NextStage: StageFailed,
			Err:       "anthropic_api_key is not configured",
		}
	}

	model := cfg.String(ConfigModel, defaultScriptModel)
	maxTokens := cfg.Int(ConfigMaxTokens, defaultScriptMaxTokens)
	temperature := cfg.Float(ConfigTemperature, defaultScriptTemperature)

	systemPrompt, userMessage := buildScriptPrompt(content)

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if g.opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(g.opts.BaseURL))
	}
	if g.opts.HTTPClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(g.opts.HTTPClient))
	}
	client := anthropic.NewClient(clientOpts...)

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
		},
	})
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return Result{
				Success:   false,
				NextStage: StageFailed,
				Err:       fmt.Sprintf("text generation API error: %d", apierr.StatusCode),
			}
		}
		return Result{
			Success:   false,
			NextStage: StageFailed,
			Err:       fmt.Sprintf("text generation transport error: %v", err),
		}
	}

	var script string
	for _, block := range resp.Content {
		if block.Type == "text" {
			script += block.AsText().Text
		}
	}

	cost := scriptCost(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	return Result{
		Success:   true,
		NextStage: StageImage,
		Data: map[string]any{
			"script":        script,
			"input_tokens":  resp.Usage.InputTokens,
			"output_tokens": resp.Usage.OutputTokens,
			"model":         model,
		},
		CostUSD: cost,
	}
}
