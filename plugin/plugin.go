package plugin

import "context"

// Status represents the lifecycle state of a registered plugin.
type Status string

const (
	// StatusRegistered is the initial state before initialization.
	StatusRegistered Status = "registered"
	// StatusInitialized marks a plugin ready to execute commands.
	StatusInitialized Status = "initialized"
	// StatusRunning marks a plugin currently executing a command.
	StatusRunning Status = "running"
	// StatusError marks a plugin whose last initialize or execute failed.
	StatusError Status = "error"
	// StatusShutdown marks a plugin that has been unregistered.
	StatusShutdown Status = "shutdown"
)

// String returns the status as a plain string.
func (s Status) String() string { return string(s) }

// Plugin is the contract every functional module must satisfy.
//
// Capabilities is authoritative: the Manager rejects any command not in that
// list before Execute is ever called, so implementations may assume the
// command is one they declared.
//
// Implementations wrapping external tools only need a thin adapter:
//
//	type Adapter struct{ tool *exttool.Client }
//
//	func (a *Adapter) Name() string            { return "my-adapter" }
//	func (a *Adapter) Capabilities() []string  { return []string{"run"} }
//	func (a *Adapter) Execute(ctx context.Context, cmd string, payload map[string]any) (map[string]any, error) {
//		return a.tool.Run(ctx, payload)
//	}
type Plugin interface {
	// Name returns the unique plugin identifier (e.g. "content", "crm").
	Name() string

	// Version returns the semantic version (e.g. "0.1.0").
	Version() string

	// Description returns a human-readable summary used by the command router.
	Description() string

	// Capabilities returns the ordered list of command names this plugin handles.
	Capabilities() []string

	// Initialize prepares the plugin (connections, credentials). Called once
	// by the Manager during registration; a failure prevents registration.
	Initialize(ctx context.Context, config map[string]any) error

	// Execute runs one declared command with its payload and returns a result
	// mapping. The Manager guarantees command is one of Capabilities().
	Execute(ctx context.Context, command string, payload map[string]any) (map[string]any, error)

	// Shutdown releases resources. Best-effort: the Manager logs and ignores
	// failures so cleanup can never block removal.
	Shutdown(ctx context.Context) error
}

// Info is a metadata snapshot of a registered plugin.
type Info struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
	Status       Status   `json:"status"`
}

// InfoOf builds an Info snapshot for a plugin in the given state.
func InfoOf(p Plugin, status Status) Info {
	return Info{
		Name:         p.Name(),
		Version:      p.Version(),
		Description:  p.Description(),
		Capabilities: p.Capabilities(),
		Status:       status,
	}
}
