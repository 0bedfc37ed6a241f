package plugin

import (
	"context"
	"sync"

	"github.com/naruu-io/naruu/bus"
	"github.com/naruu-io/naruu/logging"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Logger logging.Logger
}

// Manager owns the plugin registry and lifecycle. It is the only component
// permitted to mutate plugin status, and it enforces the capability whitelist
// centrally so plugins never validate commands themselves.
//
// The registry and status map are guarded by a mutex; all methods are safe
// for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	plugins  map[string]Plugin
	statuses map[string]Status

	events *bus.Bus
	logger logging.Logger
}

// NewManager constructs a Manager publishing lifecycle events on the given bus.
func NewManager(events *bus.Bus, optFns ...func(o *ManagerOptions)) *Manager {
	opts := ManagerOptions{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	if events == nil {
		events = bus.New()
	}

	return &Manager{
		plugins:  make(map[string]Plugin),
		statuses: make(map[string]Status),
		events:   events,
		logger:   opts.Logger,
	}
}

// Events returns the bus lifecycle events are published on.
func (m *Manager) Events() *bus.Bus { return m.events }

// Register initializes and stores a plugin under its unique name.
//
// It fails with *DuplicateError if the name is taken, leaving the registry
// untouched. If Initialize fails, the status is set to error, the plugin is
// not stored, and the failure is returned as *InitError wrapping the cause.
// On success the plugin is stored with status initialized and a
// "plugin.registered" event is published.
func (m *Manager) Register(ctx context.Context, p Plugin, config map[string]any) (Info, error) {
	name := p.Name()

	m.mu.Lock()
	if _, exists := m.plugins[name]; exists {
		m.mu.Unlock()
		return Info{}, &DuplicateError{Name: name}
	}
	m.mu.Unlock()

	if config == nil {
		config = map[string]any{}
	}

	if err := p.Initialize(ctx, config); err != nil {
		m.mu.Lock()
		m.statuses[name] = StatusError
		m.mu.Unlock()
		return Info{}, &InitError{Plugin: name, Err: err}
	}

	m.mu.Lock()
	if _, exists := m.plugins[name]; exists {
		m.mu.Unlock()
		return Info{}, &DuplicateError{Name: name}
	}
	m.plugins[name] = p
	m.statuses[name] = StatusInitialized
	m.mu.Unlock()

	m.logger.Info("plugin registered", "name", name, "version", p.Version())

	m.events.Publish(ctx, bus.NewEvent(bus.EventPluginRegistered, map[string]any{
		"name":    name,
		"version": p.Version(),
	}, "plugin_manager"))

	return InfoOf(p, StatusInitialized), nil
}

// Unregister shuts a plugin down and removes it from the registry.
//
// It fails with *NotFoundError if the name is absent. Shutdown failures are
// logged and swallowed so cleanup can never block removal. The status is set
// to shutdown and a "plugin.unregistered" event is published.
func (m *Manager) Unregister(ctx context.Context, name string) error {
	m.mu.Lock()
	p, ok := m.plugins[name]
	if !ok {
		m.mu.Unlock()
		return &NotFoundError{Name: name}
	}
	delete(m.plugins, name)
	m.statuses[name] = StatusShutdown
	m.mu.Unlock()

	if err := p.Shutdown(ctx); err != nil {
		m.logger.Warn("plugin shutdown failed (ignored)", "name", name, "error", err)
	}

	m.logger.Info("plugin unregistered", "name", name)

	m.events.Publish(ctx, bus.NewEvent(bus.EventPluginUnregistered, map[string]any{
		"name": name,
	}, "plugin_manager"))

	return nil
}

// Get returns the registered plugin for name, or nil if absent.
func (m *Manager) Get(name string) Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.plugins[name]
}

// ListPlugins returns an Info snapshot for every registered plugin.
func (m *Manager) ListPlugins() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]Info, 0, len(m.plugins))
	for name, p := range m.plugins {
		status, ok := m.statuses[name]
		if !ok {
			status = StatusRegistered
		}
		infos = append(infos, InfoOf(p, status))
	}
	return infos
}

// Count returns the number of registered plugins.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plugins)
}

// Execute validates and runs one command on a registered plugin.
//
// It fails with *NotFoundError if the plugin is absent and with
// *UnsupportedCommandError if the command is not in the plugin's declared
// capabilities; in that case the plugin's Execute is never invoked. During
// execution the status is running; it is restored to initialized on success
// or set to error on failure, in which case the failure is returned as
// *ExecError. The plugin stays registered and callable either way.
func (m *Manager) Execute(ctx context.Context, pluginName, command string, payload map[string]any) (map[string]any, error) {
	m.mu.RLock()
	p, ok := m.plugins[pluginName]
	m.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Name: pluginName}
	}

	caps := p.Capabilities()
	if !containsCommand(caps, command) {
		return nil, &UnsupportedCommandError{Plugin: pluginName, Command: command, Valid: caps}
	}

	if payload == nil {
		payload = map[string]any{}
	}

	m.setStatus(pluginName, StatusRunning)

	result, err := p.Execute(ctx, command, payload)
	if err != nil {
		m.setStatus(pluginName, StatusError)
		return nil, &ExecError{Plugin: pluginName, Command: command, Err: err}
	}

	m.setStatus(pluginName, StatusInitialized)
	return result, nil
}

// Status returns the lifecycle status recorded for name. Names never seen
// report registered.
func (m *Manager) Status(name string) Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.statuses[name]; ok {
		return s
	}
	return StatusRegistered
}

func (m *Manager) setStatus(name string, s Status) {
	m.mu.Lock()
	m.statuses[name] = s
	m.mu.Unlock()
}

func containsCommand(caps []string, command string) bool {
	for _, c := range caps {
		if c == command {
			return true
		}
	}
	return false
}
