package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	oaioption "github.com/openai/openai-go/option"

	"github.com/naruu-io/naruu/store"
)

// Config keys consumed by the image stage.
const (
	ConfigOpenAIAPIKey = "openai_api_key"
	ConfigImageModel   = "image_model"
)

const (
	defaultImageModel   = openai.ImageModelDallE3
	defaultImageTimeout = 120 * time.Second

	// imageCostUSD is the flat per-image rate for a 1024x1024 standard
	// quality generation.
	imageCostUSD = 0.04
)

// ImageGeneratorOptions configures the image stage handler.
type ImageGeneratorOptions struct {
	// BaseURL overrides the API endpoint (tests point this at a local server).
	BaseURL string

	// Timeout bounds each generation call. Defaults to 120s.
	Timeout time.Duration
}

// ImageGenerator is an optional image stage handler generating a thumbnail
// illustration for the record's topic. It is not bound by default; callers
// opt in with Pipeline.Bind once an OpenAI credential is available.
//
// Like every costed handler, the client is built with retries disabled.
type ImageGenerator struct {
	opts ImageGeneratorOptions
}

// Compile-time interface assertion.
var _ Handler = (*ImageGenerator)(nil)

// NewImageGenerator constructs the handler.
func NewImageGenerator(optFns ...func(o *ImageGeneratorOptions)) *ImageGenerator {
	opts := ImageGeneratorOptions{Timeout: defaultImageTimeout}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ImageGenerator{opts: opts}
}

// Stage returns the pipeline stage this handler is bound to.
func (g *ImageGenerator) Stage() Stage { return StageImage }

// Execute generates one illustration for the record.
//
// Config keys:
//   - openai_api_key (required)
//   - image_model (default dall-e-3)
func (g *ImageGenerator) Execute(ctx context.Context, content *store.Content, cfg Config) Result {
	apiKey := cfg.String(ConfigOpenAIAPIKey, "")
	if apiKey == "" {
		return Result{
			Success:   false,
			NextStage: StageFailed,
			Err:       "openai_api_key is not configured",
		}
	}

	model := cfg.String(ConfigImageModel, string(defaultImageModel))

	clientOpts := []oaioption.RequestOption{
		oaioption.WithAPIKey(apiKey),
		oaioption.WithMaxRetries(0),
	}
	if g.opts.BaseURL != "" {
		clientOpts = append(clientOpts, oaioption.WithBaseURL(g.opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	topic := content.Topic
	if topic == "" {
		topic = content.Title
	}
	prompt := fmt.Sprintf(
		"A clean, inviting illustration for a piece about %q, suitable as a video thumbnail.",
		topic,
	)

	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(model),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return Result{
				Success:   false,
				NextStage: StageFailed,
				Err:       fmt.Sprintf("image generation API error: %d", apierr.StatusCode),
			}
		}
		return Result{
			Success:   false,
			NextStage: StageFailed,
			Err:       fmt.Sprintf("image generation transport error: %v", err),
		}
	}

	if len(resp.Data) == 0 {
		return Result{
			Success:   false,
			NextStage: StageFailed,
			Err:       "image generation returned no images",
		}
	}

	return Result{
		Success:   true,
		NextStage: StageVoice,
		Data: map[string]any{
			"image_url": resp.Data[0].URL,
			"model":     model,
		},
		CostUSD: imageCostUSD,
	}
}
