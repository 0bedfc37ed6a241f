// Package naruu provides a high-level façade over the platform core: the
// event bus, the plugin manager, the orchestrator and the content pipeline.
// Most applications interact with this package by:
//  1. Creating a Naruu via New() (optionally overriding the record store,
//     credentials or logger)
//  2. Registering one or more plugins (bundled or custom)
//  3. Invoking them directly (Execute), via natural language (Route), as
//     workflows (ExecuteWorkflow), or by driving the content pipeline
//     (AdvanceContent)
//
// Everything is constructed once at process start and passed by handle;
// there are no package-level singletons. Reset() tears subscriptions and
// history down for test isolation.
package naruu

import (
	"context"

	"github.com/naruu-io/naruu/bus"
	"github.com/naruu-io/naruu/logging"
	"github.com/naruu-io/naruu/orchestrator"
	"github.com/naruu-io/naruu/pipeline"
	"github.com/naruu-io/naruu/plugin"
	"github.com/naruu-io/naruu/store"
)

// Options configures the Naruu instance.
type Options struct {
	// AnthropicAPIKey enables AI-assisted command routing; without it the
	// orchestrator uses deterministic keyword routing.
	AnthropicAPIKey string

	// Store holds content records. Defaults to an in-memory store.
	Store store.Store

	// DisableDefaultHandlers starts the pipeline with every stage as a
	// pass-through placeholder.
	DisableDefaultHandlers bool

	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Naruu aggregates the platform core components.
type Naruu struct {
	events       *bus.Bus
	manager      *plugin.Manager
	orchestrator *orchestrator.Orchestrator
	pipeline     *pipeline.Pipeline
	store        store.Store
}

// New wires the event bus, plugin manager, orchestrator, pipeline and record
// store together. Any unset service is initialized with a safe in-process
// default.
func New(optFns ...func(o *Options)) *Naruu {
	opts := Options{
		Store:  store.NewMemoryStore(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	events := bus.New(func(o *bus.Options) { o.Logger = opts.Logger })

	manager := plugin.NewManager(events, func(o *plugin.ManagerOptions) {
		o.Logger = opts.Logger
	})

	orch := orchestrator.New(manager, func(o *orchestrator.Options) {
		o.AnthropicAPIKey = opts.AnthropicAPIKey
		o.Logger = opts.Logger
	})

	pipe := pipeline.New(func(o *pipeline.Options) {
		o.Events = events
		o.Logger = opts.Logger
		o.DisableDefaultHandlers = opts.DisableDefaultHandlers
	})

	return &Naruu{
		events:       events,
		manager:      manager,
		orchestrator: orch,
		pipeline:     pipe,
		store:        opts.Store,
	}
}

// Events returns the event bus so collaborators can subscribe to lifecycle
// and pipeline events without direct coupling.
func (n *Naruu) Events() *bus.Bus { return n.events }

// Manager returns the plugin manager.
func (n *Naruu) Manager() *plugin.Manager { return n.manager }

// Orchestrator returns the command orchestrator.
func (n *Naruu) Orchestrator() *orchestrator.Orchestrator { return n.orchestrator }

// Pipeline returns the content pipeline.
func (n *Naruu) Pipeline() *pipeline.Pipeline { return n.pipeline }

// Store returns the content record store.
func (n *Naruu) Store() store.Store { return n.store }

// RegisterPlugin registers and initializes a plugin.
func (n *Naruu) RegisterPlugin(ctx context.Context, p plugin.Plugin, config map[string]any) (plugin.Info, error) {
	return n.manager.Register(ctx, p, config)
}

// Execute runs one command on a named plugin directly.
func (n *Naruu) Execute(ctx context.Context, pluginName, command string, payload map[string]any) orchestrator.Result {
	return n.orchestrator.Execute(ctx, pluginName, command, payload)
}

// Route resolves free text to a plugin invocation and executes it.
func (n *Naruu) Route(ctx context.Context, text string) orchestrator.Result {
	return n.orchestrator.Route(ctx, text)
}

// ExecuteWorkflow runs an ordered list of steps with fail-fast semantics.
func (n *Naruu) ExecuteWorkflow(ctx context.Context, steps []orchestrator.Step) []orchestrator.Result {
	return n.orchestrator.ExecuteWorkflow(ctx, steps)
}

// AdvanceContent loads a record, advances it one pipeline stage and persists
// the result.
func (n *Naruu) AdvanceContent(ctx context.Context, contentID string, cfg pipeline.Config) (*store.Content, error) {
	c, err := n.store.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	n.pipeline.Advance(ctx, c, cfg)
	if err := n.store.UpdateContent(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Reset clears all event subscriptions and history. Intended for test
// isolation.
func (n *Naruu) Reset() { n.events.Clear() }
