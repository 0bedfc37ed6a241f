package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/naruu-io/naruu/logging"
	"github.com/naruu-io/naruu/plugin"
)

// Resolution is a resolved (plugin, command, payload) triple.
type Resolution struct {
	Plugin  string
	Command string
	Payload map[string]any
}

// Router turns free text into a Resolution against the currently registered
// plugins. A nil Resolution with a nil error means nothing matched.
type Router interface {
	Resolve(ctx context.Context, text string, plugins []plugin.Info) (*Resolution, error)
}

// keywordRouter is the deterministic fallback strategy. It needs no
// credentials and is always available.
type keywordRouter struct{}

// Resolve matches free text against plugin names and capability fragments.
//
// If a plugin's name appears verbatim in the lower-cased input, its first
// capability wins immediately. Otherwise every (plugin, capability) pair is
// scored by how many word fragments of the capability name (split on
// whitespace, "-" and "_") occur as substrings of the input; the single
// highest-scoring pair wins, first seen breaking ties, and a zero score means
// no match. A dotted capability like "content.create" is a single fragment,
// so it only matches when it appears literally.
func (keywordRouter) Resolve(_ context.Context, text string, plugins []plugin.Info) (*Resolution, error) {
	textLower := strings.ToLower(text)

	var best *Resolution
	bestScore := 0

	for _, p := range plugins {
		if strings.Contains(textLower, strings.ToLower(p.Name)) && len(p.Capabilities) > 0 {
			return &Resolution{
				Plugin:  p.Name,
				Command: p.Capabilities[0],
				Payload: map[string]any{"text": text},
			}, nil
		}

		for _, capability := range p.Capabilities {
			score := 0
			for _, word := range splitCapability(capability) {
				if strings.Contains(textLower, word) {
					score++
				}
			}
			if score > bestScore {
				bestScore = score
				best = &Resolution{
					Plugin:  p.Name,
					Command: capability,
					Payload: map[string]any{"text": text},
				}
			}
		}
	}

	if best != nil && bestScore > 0 {
		return best, nil
	}
	return nil, nil
}

// splitCapability breaks a capability name into lower-cased word fragments.
// Dots are not delimiters; "content.create" stays one fragment.
func splitCapability(capability string) []string {
	lowered := strings.ToLower(capability)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
}

// anthropicRouterOptions configures the AI-assisted routing strategy.
type anthropicRouterOptions struct {
	Model     string
	MaxTokens int64
	BaseURL   string
	Logger    logging.Logger
}

// anthropicRouter asks a text-generation model to pick the plugin invocation,
// falling back to keyword matching on any parse or transport failure.
type anthropicRouter struct {
	client   anthropic.Client
	opts     anthropicRouterOptions
	fallback keywordRouter
	logger   logging.Logger
}

func newAnthropicRouter(apiKey string, opts anthropicRouterOptions) *anthropicRouter {
	if opts.Model == "" {
		opts.Model = "claude-sonnet-4-5-20250929"
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 256
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &anthropicRouter{
		client: anthropic.NewClient(clientOpts...),
		opts:   opts,
		logger: opts.Logger,
	}
}

// routingPrompt enumerates every registered plugin so the model can map the
// user's text onto a declared capability.
func routingPrompt(plugins []plugin.Info) string {
	var b strings.Builder
	b.WriteString("You are the command router of the NARUU platform.\n")
	b.WriteString("Analyze the user's natural-language command and translate it into the matching plugin and command.\n\n")
	b.WriteString("Registered plugins:\n")
	for _, p := range plugins {
		desc := p.Description
		if desc == "" {
			desc = "no description"
		}
		fmt.Fprintf(&b, "- %s: %s [commands: %s]\n", p.Name, desc, strings.Join(p.Capabilities, ", "))
	}
	b.WriteString("\nRespond with exactly one JSON object of the form:\n")
	b.WriteString(`{"plugin": "plugin-name", "command": "command-name", "payload": {}}` + "\n")
	b.WriteString("If no plugin matches, respond with the literal null.")
	return b.String()
}

// Resolve asks the model for a single JSON object or the literal null. A null
// answer means no match; any other failure falls back to keyword matching.
func (r *anthropicRouter) Resolve(ctx context.Context, text string, plugins []plugin.Info) (*Resolution, error) {
	if len(plugins) == 0 {
		return nil, nil
	}

	resp, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.opts.Model),
		MaxTokens: r.opts.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: routingPrompt(plugins)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		r.logger.Warn("ai routing failed, using keyword fallback", "error", err)
		return r.fallback.Resolve(ctx, text, plugins)
	}

	var answer string
	for _, block := range resp.Content {
		if block.Type == "text" {
			answer += block.AsText().Text
		}
	}
	answer = strings.TrimSpace(answer)

	if answer == "null" {
		return nil, nil
	}

	var parsed struct {
		Plugin  string         `json:"plugin"`
		Command string         `json:"command"`
		Payload map[string]any `json:"payload"`
	}
	if err := json.Unmarshal([]byte(answer), &parsed); err != nil || parsed.Plugin == "" || parsed.Command == "" {
		r.logger.Warn("ai routing answer unparsable, using keyword fallback", "answer", answer)
		return r.fallback.Resolve(ctx, text, plugins)
	}

	if parsed.Payload == nil {
		parsed.Payload = map[string]any{}
	}
	return &Resolution{Plugin: parsed.Plugin, Command: parsed.Command, Payload: parsed.Payload}, nil
}
