package orchestrator

import (
	"context"

	"github.com/naruu-io/naruu/bus"
	"github.com/naruu-io/naruu/logging"
	"github.com/naruu-io/naruu/plugin"
)

// Result is the outcome of one orchestrated invocation. Errors are always
// folded into Success=false plus a message; they never escape as Go errors.
type Result struct {
	Success bool           `json:"success"`
	Plugin  string         `json:"plugin"`
	Command string         `json:"command"`
	Result  map[string]any `json:"result"`
	Error   string         `json:"error,omitempty"`
}

// Step is one element of an ordered workflow.
type Step struct {
	Plugin  string         `json:"plugin"`
	Command string         `json:"command"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Options configures an Orchestrator.
type Options struct {
	// AnthropicAPIKey enables AI-assisted command routing. When empty, only
	// the deterministic keyword strategy is used. The strategy is selected
	// once at construction.
	AnthropicAPIKey string

	// RouterModel overrides the routing model.
	RouterModel string

	// RouterBaseURL overrides the routing endpoint (tests).
	RouterBaseURL string

	// Router replaces the routing strategy entirely. Overrides the key-based
	// selection above.
	Router Router

	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Orchestrator translates commands into plugin invocations via the Manager,
// publishing lifecycle events on the bus.
type Orchestrator struct {
	manager *plugin.Manager
	events  *bus.Bus
	router  Router
	logger  logging.Logger
}

// New constructs an Orchestrator on top of a Manager. Lifecycle events are
// published on the manager's bus.
func New(manager *plugin.Manager, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	router := opts.Router
	if router == nil {
		if opts.AnthropicAPIKey != "" {
			router = newAnthropicRouter(opts.AnthropicAPIKey, anthropicRouterOptions{
				Model:   opts.RouterModel,
				BaseURL: opts.RouterBaseURL,
				Logger:  opts.Logger,
			})
		} else {
			router = keywordRouter{}
		}
	}

	return &Orchestrator{
		manager: manager,
		events:  manager.Events(),
		router:  router,
		logger:  opts.Logger,
	}
}

// Execute runs one command on a named plugin directly.
//
// It publishes "orchestrator.execute.start" before delegating to the Manager,
// then "orchestrator.execute.done" on success or "orchestrator.execute.error"
// (with the message) on failure. The Manager's typed errors are converted
// into the returned Result; Execute itself never fails.
func (o *Orchestrator) Execute(ctx context.Context, pluginName, command string, payload map[string]any) Result {
	if payload == nil {
		payload = map[string]any{}
	}

	o.events.Publish(ctx, bus.NewEvent(bus.EventExecuteStart, map[string]any{
		"plugin":  pluginName,
		"command": command,
	}, "orchestrator"))

	result, err := o.manager.Execute(ctx, pluginName, command, payload)
	if err != nil {
		o.logger.Error("execution failed",
			"plugin", pluginName, "command", command, "error", err)

		o.events.Publish(ctx, bus.NewEvent(bus.EventExecuteError, map[string]any{
			"plugin":  pluginName,
			"command": command,
			"error":   err.Error(),
		}, "orchestrator"))

		return Result{
			Success: false,
			Plugin:  pluginName,
			Command: command,
			Result:  map[string]any{},
			Error:   err.Error(),
		}
	}

	o.events.Publish(ctx, bus.NewEvent(bus.EventExecuteDone, map[string]any{
		"plugin":  pluginName,
		"command": command,
		"status":  "ok",
	}, "orchestrator"))

	return Result{
		Success: true,
		Plugin:  pluginName,
		Command: command,
		Result:  result,
	}
}

// Route resolves free text to a plugin invocation and executes it. When
// nothing resolves, it returns a fixed failure Result without ever calling
// Execute.
func (o *Orchestrator) Route(ctx context.Context, text string) Result {
	resolution, err := o.router.Resolve(ctx, text, o.manager.ListPlugins())
	if err != nil || resolution == nil {
		return Result{
			Success: false,
			Result:  map[string]any{},
			Error: "could not interpret the command: no registered plugin " +
				"matches the request",
		}
	}

	return o.Execute(ctx, resolution.Plugin, resolution.Command, resolution.Payload)
}

// ExecuteWorkflow runs steps strictly sequentially (step N+1 never starts
// before step N completes) and stops at the first failing step, because
// later steps may depend on earlier side effects. The returned list holds one
// Result per executed step, so it is truncated below len(steps) on failure.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, steps []Step) []Result {
	results := make([]Result, 0, len(steps))
	for _, step := range steps {
		result := o.Execute(ctx, step.Plugin, step.Command, step.Payload)
		results = append(results, result)
		if !result.Success {
			o.logger.Warn("workflow aborted",
				"plugin", step.Plugin, "command", step.Command, "error", result.Error)
			break
		}
	}
	return results
}
