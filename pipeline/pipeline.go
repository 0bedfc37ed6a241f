package pipeline

import (
	"context"
	"math"

	"github.com/naruu-io/naruu/bus"
	"github.com/naruu-io/naruu/logging"
	"github.com/naruu-io/naruu/store"
)

// Stage identifies one step of the production pipeline.
type Stage string

// Pipeline stages in execution order, plus the absorbing failure stage.
const (
	StagePending Stage = "pending"
	StageScript  Stage = "script"
	StageImage   Stage = "image"
	StageVoice   Stage = "voice"
	StageVideo   Stage = "video"
	StagePublish Stage = "publish"
	StageDone    Stage = "done"
	StageFailed  Stage = "failed"
)

// Order is the fixed forward sequence of stages. "failed" is not part of the
// sequence; it is reachable from any stage and absorbing.
var Order = []Stage{
	StagePending, StageScript, StageImage, StageVoice, StageVideo, StagePublish, StageDone,
}

// indexOf returns the position of s in Order, or -1 when s is outside the
// ordered sequence (including "failed").
func indexOf(s Stage) int {
	for i, stage := range Order {
		if stage == s {
			return i
		}
	}
	return -1
}

// Result is the outcome of one stage handler invocation. Handlers never
// return Go errors; failures are Results with Success=false so the pipeline
// can turn them into persisted state.
type Result struct {
	Success   bool           `json:"success"`
	NextStage Stage          `json:"next_stage"`
	Data      map[string]any `json:"data,omitempty"`
	Err       string         `json:"error,omitempty"`
	CostUSD   float64        `json:"cost_usd"`
}

// Config carries per-advance settings consumed by stage handlers (credentials,
// model overrides). Keys a handler does not recognize are ignored.
type Config map[string]any

// String reads a string value from the config, or def when absent.
func (c Config) String(key, def string) string {
	if v, ok := c[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int reads an integer value from the config, or def when absent. JSON
// decoding produces float64, which is accepted too.
func (c Config) Int(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Float reads a float value from the config, or def when absent.
func (c Config) Float(key string, def float64) float64 {
	switch v := c[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// Handler is a pluggable unit of work bound to one pipeline stage. Execute
// performs possibly-costed, possibly-failing external work and declares the
// next stage via the returned Result.
type Handler interface {
	// Stage returns the pipeline stage this handler is bound to.
	Stage() Stage

	// Execute runs the stage's work against the record. Implementations must
	// convert every failure (transport, HTTP, validation) into a Result with
	// Success=false; they never panic or return errors out of band.
	Execute(ctx context.Context, content *store.Content, cfg Config) Result
}

// Options configures a Pipeline.
type Options struct {
	// Events receives "content.pipeline.advanced" after every transition.
	// Nil disables event publication.
	Events *bus.Bus

	// Logger defaults to NoOp.
	Logger logging.Logger

	// DisableDefaultHandlers skips binding the stock script handler, leaving
	// every stage pass-through until Bind is called.
	DisableDefaultHandlers bool
}

// Pipeline is the state machine advancing content records one stage at a
// time. A record is assumed exclusively owned by whichever caller drives
// Advance; concurrent advances of the same record are unsupported.
type Pipeline struct {
	handlers map[Stage]Handler
	events   *bus.Bus
	logger   *logging.PlatformLogger
}

// New constructs a pipeline. Unless disabled, the script stage is bound to
// the stock ScriptGenerator; all other stages start as pass-through
// placeholders, mirroring the platform's current production setup.
func New(optFns ...func(o *Options)) *Pipeline {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	p := &Pipeline{
		handlers: make(map[Stage]Handler),
		events:   opts.Events,
		logger:   logging.NewPlatformLogger(opts.Logger).WithComponent("pipeline"),
	}

	if !opts.DisableDefaultHandlers {
		p.Bind(NewScriptGenerator())
	}

	return p
}

// Bind attaches a handler to its stage, replacing any previous binding.
func (p *Pipeline) Bind(h Handler) {
	p.handlers[h.Stage()] = h
}

// Unbind removes the handler for a stage, returning it to pass-through.
func (p *Pipeline) Unbind(stage Stage) {
	delete(p.handlers, stage)
}

// HandlerFor returns the handler bound to a stage, or nil.
func (p *Pipeline) HandlerFor(stage Stage) Handler {
	return p.handlers[stage]
}

// Advance moves the record at most one stage forward, or to "failed".
//
// Semantics:
//   - A stage outside the ordered sequence (including "failed") is a no-op.
//   - "done" is absorbing: advancing it is a no-op.
//   - A bound handler is invoked; on success the record moves to the
//     handler's declared next stage, its cost is added to the accumulator and
//     generated data (script text, publish URL) is merged into the record. On
//     failure the stage becomes "failed", the error message is recorded and
//     no cost is charged.
//   - A stage with no handler advances one step with no external call and no
//     cost.
//
// Advance mutates the record in place; persisting it is the caller's
// responsibility. It is not idempotent: calling it twice moves two stages.
func (p *Pipeline) Advance(ctx context.Context, content *store.Content, cfg Config) {
	current := Stage(content.PipelineStage)
	log := p.logger.WithContent(content.ID)

	idx := indexOf(current)
	if idx < 0 {
		log.Warn("advance skipped: stage outside pipeline order", "stage", content.PipelineStage)
		return
	}
	if current == StageDone {
		log.Debug("advance skipped: content already done")
		return
	}

	if cfg == nil {
		cfg = Config{}
	}

	from := current

	handler := p.handlers[current]
	if handler == nil {
		content.PipelineStage = string(Order[idx+1])
		log.Info("stage passed through", "from", from, "to", content.PipelineStage)
		p.publishAdvanced(ctx, content, from, 0)
		return
	}

	result := handler.Execute(ctx, content, cfg)
	if !result.Success {
		content.PipelineStage = string(StageFailed)
		content.ErrorMessage = result.Err
		log.Error("stage handler failed", "stage", from, "error", result.Err)
		p.publishAdvanced(ctx, content, from, 0)
		return
	}

	content.PipelineStage = string(result.NextStage)
	content.CostUSD = roundCost(content.CostUSD + result.CostUSD)
	content.ErrorMessage = ""
	mergeResultData(content, result.Data)

	log.Info("stage completed",
		"from", from, "to", content.PipelineStage, "cost_usd", result.CostUSD)
	p.publishAdvanced(ctx, content, from, result.CostUSD)
}

// mergeResultData copies recognized generated fields onto the record.
func mergeResultData(content *store.Content, data map[string]any) {
	if data == nil {
		return
	}
	if script, ok := data["script"].(string); ok && script != "" {
		content.Script = script
	}
	if url, ok := data["publish_url"].(string); ok && url != "" {
		content.PublishURL = url
	}
}

func (p *Pipeline) publishAdvanced(ctx context.Context, content *store.Content, from Stage, cost float64) {
	if p.events == nil {
		return
	}
	p.events.Publish(ctx, bus.NewEvent(bus.EventPipelineAdvanced, map[string]any{
		"content_id": content.ID,
		"from":       string(from),
		"to":         content.PipelineStage,
		"cost_usd":   cost,
	}, "pipeline"))
}

// roundCost keeps the accumulator at micro-dollar precision.
func roundCost(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
