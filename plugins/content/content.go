// Package content exposes the content production pipeline and its record
// store as a plugin, so orchestrated routing ("create a video about …") can
// reach them through the same contract as every other module.
package content

import (
	"context"
	"fmt"

	"github.com/naruu-io/naruu/pipeline"
	"github.com/naruu-io/naruu/plugin"
	"github.com/naruu-io/naruu/store"
)

func init() {
	plugin.RegisterFactory("content", func() plugin.Plugin { return New(nil, nil) })
}

// Plugin wraps a Store and a Pipeline behind plugin commands.
type Plugin struct {
	store    store.Store
	pipeline *pipeline.Pipeline
	config   map[string]any
}

// Compile-time interface assertion.
var _ plugin.Plugin = (*Plugin)(nil)

// New constructs a content plugin. A nil store defaults to in-memory and a
// nil pipeline to the stock pipeline, so the factory path stays usable in
// demos and discovery tests.
func New(s store.Store, p *pipeline.Pipeline) *Plugin {
	if s == nil {
		s = store.NewMemoryStore()
	}
	if p == nil {
		p = pipeline.New()
	}
	return &Plugin{store: s, pipeline: p}
}

// Name returns the unique plugin identifier.
func (p *Plugin) Name() string { return "content" }

// Version returns the semantic version.
func (p *Plugin) Version() string { return "0.1.0" }

// Description returns a human-readable summary used by the command router.
func (p *Plugin) Description() string {
	return "Content production pipeline (video/blog/SNS): create records, advance stages, manage schedules."
}

// Capabilities lists the supported commands.
func (p *Plugin) Capabilities() []string {
	return []string{
		"content.create",
		"content.get",
		"content.list",
		"content.update",
		"content.advance_pipeline",
		"schedule.create",
		"schedule.get",
		"schedule.list",
		"schedule.update",
		"schedule.delete",
	}
}

// Initialize keeps the config; it is merged into every advance call so
// credentials set at registration reach the stage handlers.
func (p *Plugin) Initialize(_ context.Context, config map[string]any) error {
	p.config = config
	return nil
}

// Shutdown releases nothing; the store owns its own lifecycle.
func (p *Plugin) Shutdown(context.Context) error { return nil }

// Execute dispatches one declared command.
func (p *Plugin) Execute(ctx context.Context, command string, payload map[string]any) (map[string]any, error) {
	switch command {
	case "content.create":
		return p.createContent(ctx, payload)
	case "content.get":
		return p.getContent(ctx, payload)
	case "content.list":
		return p.listContents(ctx, payload)
	case "content.update":
		return p.updateContent(ctx, payload)
	case "content.advance_pipeline":
		return p.advancePipeline(ctx, payload)
	case "schedule.create":
		return p.createSchedule(ctx, payload)
	case "schedule.get":
		return p.getSchedule(ctx, payload)
	case "schedule.list":
		return p.listSchedules(ctx, payload)
	case "schedule.update":
		return p.updateSchedule(ctx, payload)
	case "schedule.delete":
		return p.deleteSchedule(ctx, payload)
	default:
		// Unreachable when dispatched through the manager.
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

func str(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return v
}

func contentResponse(c *store.Content) map[string]any {
	return map[string]any{
		"status":         "ok",
		"id":             c.ID,
		"title":          c.Title,
		"content_type":   c.ContentType,
		"language":       c.Language,
		"topic":          c.Topic,
		"script":         c.Script,
		"pipeline_stage": c.PipelineStage,
		"cost_usd":       c.CostUSD,
		"publish_url":    c.PublishURL,
		"error_message":  c.ErrorMessage,
	}
}

func (p *Plugin) createContent(ctx context.Context, payload map[string]any) (map[string]any, error) {
	title := str(payload, "title")
	if title == "" {
		title = str(payload, "text") // routed free text lands here
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	c := store.NewContent(title, str(payload, "content_type"), str(payload, "language"), str(payload, "topic"))
	if err := p.store.CreateContent(ctx, c); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return contentResponse(c), nil
}

func (p *Plugin) getContent(ctx context.Context, payload map[string]any) (map[string]any, error) {
	c, err := p.store.GetContent(ctx, str(payload, "id"))
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return contentResponse(c), nil
}

func (p *Plugin) listContents(ctx context.Context, payload map[string]any) (map[string]any, error) {
	items, err := p.store.ListContents(ctx, store.ContentFilter{
		Status:      str(payload, "status"),
		ContentType: str(payload, "content_type"),
	})
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}

	out := make([]map[string]any, 0, len(items))
	for _, c := range items {
		out = append(out, contentResponse(c))
	}
	return map[string]any{"status": "ok", "items": out, "count": len(out)}, nil
}

func (p *Plugin) updateContent(ctx context.Context, payload map[string]any) (map[string]any, error) {
	c, err := p.store.GetContent(ctx, str(payload, "id"))
	if err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}

	if v := str(payload, "title"); v != "" {
		c.Title = v
	}
	if v := str(payload, "topic"); v != "" {
		c.Topic = v
	}
	if v := str(payload, "script"); v != "" {
		c.Script = v
	}
	if v := str(payload, "status"); v != "" {
		c.Status = v
	}
	if v := str(payload, "pipeline_stage"); v != "" {
		c.PipelineStage = v
	}

	if err := p.store.UpdateContent(ctx, c); err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}
	return contentResponse(c), nil
}

// advancePipeline moves a record one stage forward and persists the result.
// The registration config is the base stage-handler config; payload keys
// override it per call.
func (p *Plugin) advancePipeline(ctx context.Context, payload map[string]any) (map[string]any, error) {
	c, err := p.store.GetContent(ctx, str(payload, "id"))
	if err != nil {
		return nil, fmt.Errorf("advance pipeline: %w", err)
	}

	cfg := pipeline.Config{}
	for k, v := range p.config {
		cfg[k] = v
	}
	for k, v := range payload {
		if k != "id" {
			cfg[k] = v
		}
	}

	p.pipeline.Advance(ctx, c, cfg)

	if err := p.store.UpdateContent(ctx, c); err != nil {
		return nil, fmt.Errorf("persist advanced content: %w", err)
	}
	return contentResponse(c), nil
}

func scheduleResponse(s *store.Schedule) map[string]any {
	out := map[string]any{
		"status":          "ok",
		"id":              s.ID,
		"name":            s.Name,
		"content_type":    s.ContentType,
		"topic_template":  s.TopicTemplate,
		"language":        s.Language,
		"cron_expression": s.CronExpr,
		"is_active":       s.Active,
	}
	if s.LastRunAt != nil {
		out["last_run_at"] = s.LastRunAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return out
}

func (p *Plugin) createSchedule(ctx context.Context, payload map[string]any) (map[string]any, error) {
	name := str(payload, "name")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	s := store.NewSchedule(name, str(payload, "content_type"), str(payload, "topic_template"),
		str(payload, "language"), str(payload, "cron_expression"))
	if err := p.store.CreateSchedule(ctx, s); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return scheduleResponse(s), nil
}

func (p *Plugin) getSchedule(ctx context.Context, payload map[string]any) (map[string]any, error) {
	s, err := p.store.GetSchedule(ctx, str(payload, "id"))
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return scheduleResponse(s), nil
}

func (p *Plugin) listSchedules(ctx context.Context, payload map[string]any) (map[string]any, error) {
	activeOnly := true
	if v, ok := payload["active_only"].(bool); ok {
		activeOnly = v
	}

	items, err := p.store.ListSchedules(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	out := make([]map[string]any, 0, len(items))
	for _, s := range items {
		out = append(out, scheduleResponse(s))
	}
	return map[string]any{"status": "ok", "items": out, "count": len(out)}, nil
}

func (p *Plugin) updateSchedule(ctx context.Context, payload map[string]any) (map[string]any, error) {
	s, err := p.store.GetSchedule(ctx, str(payload, "id"))
	if err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}

	if v := str(payload, "name"); v != "" {
		s.Name = v
	}
	if v := str(payload, "topic_template"); v != "" {
		s.TopicTemplate = v
	}
	if v := str(payload, "cron_expression"); v != "" {
		s.CronExpr = v
	}
	if v, ok := payload["is_active"].(bool); ok {
		s.Active = v
	}

	if err := p.store.UpdateSchedule(ctx, s); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return scheduleResponse(s), nil
}

func (p *Plugin) deleteSchedule(ctx context.Context, payload map[string]any) (map[string]any, error) {
	if err := p.store.DeleteSchedule(ctx, str(payload, "id")); err != nil {
		return nil, fmt.Errorf("delete schedule: %w", err)
	}
	return map[string]any{"status": "ok", "deleted": true}, nil
}
