// Package echo provides a trivial plugin that returns its input. It exists to
// verify the plugin architecture end to end and serves as the smallest
// possible reference implementation of the contract.
package echo

import (
	"context"
	"time"

	"github.com/naruu-io/naruu/plugin"
)

func init() {
	plugin.RegisterFactory("echo", func() plugin.Plugin { return New() })
}

// Plugin echoes payloads back to the caller.
type Plugin struct {
	config        map[string]any
	initializedAt time.Time
}

// Compile-time interface assertion.
var _ plugin.Plugin = (*Plugin)(nil)

// New constructs an echo plugin.
func New() *Plugin { return &Plugin{} }

// Name returns the unique plugin identifier.
func (p *Plugin) Name() string { return "echo" }

// Version returns the semantic version.
func (p *Plugin) Version() string { return "0.1.0" }

// Description returns a human-readable summary used by the command router.
func (p *Plugin) Description() string {
	return "Echo plugin for system verification. Returns its input unchanged."
}

// Capabilities lists the supported commands.
func (p *Plugin) Capabilities() []string { return []string{"echo", "ping", "info"} }

// Initialize records the config and the initialization time.
func (p *Plugin) Initialize(_ context.Context, config map[string]any) error {
	p.config = config
	p.initializedAt = time.Now().UTC()
	return nil
}

// Execute handles echo, ping and info.
func (p *Plugin) Execute(_ context.Context, command string, payload map[string]any) (map[string]any, error) {
	switch command {
	case "echo":
		return map[string]any{
			"status": "ok",
			"echo":   payload,
		}, nil
	case "ping":
		return map[string]any{
			"status":    "ok",
			"pong":      true,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}, nil
	default: // info; the manager rejects anything undeclared
		return map[string]any{
			"status":         "ok",
			"name":           p.Name(),
			"version":        p.Version(),
			"initialized_at": p.initializedAt.Format(time.RFC3339),
			"capabilities":   p.Capabilities(),
		}, nil
	}
}

// Shutdown releases nothing; the echo plugin holds no resources.
func (p *Plugin) Shutdown(context.Context) error { return nil }
