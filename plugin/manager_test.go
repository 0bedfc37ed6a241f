package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	busPkg "github.com/naruu-io/naruu/bus"
)

// mockPlugin is a configurable Plugin implementation for manager tests.
type mockPlugin struct {
	name          string
	capabilities  []string
	initErr       error
	execErr       error
	shutdownErr   error
	execCalls     int
	shutdownCalls int
}

var _ Plugin = (*mockPlugin)(nil)

func newMockPlugin(name string, capabilities ...string) *mockPlugin {
	if len(capabilities) == 0 {
		capabilities = []string{"run"}
	}
	return &mockPlugin{name: name, capabilities: capabilities}
}

func (m *mockPlugin) Name() string           { return m.name }
func (m *mockPlugin) Version() string        { return "0.1.0" }
func (m *mockPlugin) Description() string    { return "mock plugin" }
func (m *mockPlugin) Capabilities() []string { return m.capabilities }

func (m *mockPlugin) Initialize(context.Context, map[string]any) error { return m.initErr }

func (m *mockPlugin) Execute(_ context.Context, command string, _ map[string]any) (map[string]any, error) {
	m.execCalls++
	if m.execErr != nil {
		return nil, m.execErr
	}
	return map[string]any{"status": "ok", "command": command}, nil
}

func (m *mockPlugin) Shutdown(context.Context) error {
	m.shutdownCalls++
	return m.shutdownErr
}

func TestRegister(t *testing.T) {
	m := NewManager(busPkg.New())

	info, err := m.Register(context.Background(), newMockPlugin("mock"), nil)

	require.NoError(t, err)
	assert.Equal(t, "mock", info.Name)
	assert.Equal(t, StatusInitialized, info.Status)
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, StatusInitialized, m.Status("mock"))
}

func TestRegister_DuplicateName(t *testing.T) {
	m := NewManager(busPkg.New())

	_, err := m.Register(context.Background(), newMockPlugin("mock"), nil)
	require.NoError(t, err)

	_, err = m.Register(context.Background(), newMockPlugin("mock"), nil)

	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "mock", dup.Name)
	// Exactly one plugin remains registered; the registry is unchanged.
	assert.Equal(t, 1, m.Count())
}

func TestRegister_InitFailureNotStored(t *testing.T) {
	m := NewManager(busPkg.New())

	p := newMockPlugin("broken")
	p.initErr = errors.New("no database")

	_, err := m.Register(context.Background(), p, nil)

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.ErrorIs(t, err, p.initErr)
	assert.Equal(t, 0, m.Count())
	assert.Nil(t, m.Get("broken"))
	assert.Equal(t, StatusError, m.Status("broken"))
}

func TestRegister_PublishesEvent(t *testing.T) {
	events := busPkg.New()
	var seen []busPkg.Event
	events.Subscribe(busPkg.EventPluginRegistered, func(_ context.Context, evt busPkg.Event) error {
		seen = append(seen, evt)
		return nil
	})

	m := NewManager(events)
	_, err := m.Register(context.Background(), newMockPlugin("mock"), nil)

	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "mock", seen[0].Data["name"])
	assert.Equal(t, "plugin_manager", seen[0].Source)
}

func TestUnregister(t *testing.T) {
	events := busPkg.New()
	var unregistered []busPkg.Event
	events.Subscribe(busPkg.EventPluginUnregistered, func(_ context.Context, evt busPkg.Event) error {
		unregistered = append(unregistered, evt)
		return nil
	})

	m := NewManager(events)
	p := newMockPlugin("mock")
	_, err := m.Register(context.Background(), p, nil)
	require.NoError(t, err)

	require.NoError(t, m.Unregister(context.Background(), "mock"))

	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 1, p.shutdownCalls)
	assert.Equal(t, StatusShutdown, m.Status("mock"))
	require.Len(t, unregistered, 1)
}

func TestUnregister_NotFound(t *testing.T) {
	m := NewManager(busPkg.New())

	err := m.Unregister(context.Background(), "ghost")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestUnregister_ShutdownFailureSwallowed(t *testing.T) {
	m := NewManager(busPkg.New())
	p := newMockPlugin("mock")
	p.shutdownErr = errors.New("connection already closed")
	_, err := m.Register(context.Background(), p, nil)
	require.NoError(t, err)

	// Cleanup must never block removal.
	require.NoError(t, m.Unregister(context.Background(), "mock"))
	assert.Equal(t, 0, m.Count())
}

func TestExecute(t *testing.T) {
	m := NewManager(busPkg.New())
	p := newMockPlugin("mock", "generate", "publish")
	_, err := m.Register(context.Background(), p, nil)
	require.NoError(t, err)

	result, err := m.Execute(context.Background(), "mock", "generate", map[string]any{"x": 1})

	require.NoError(t, err)
	assert.Equal(t, "generate", result["command"])
	assert.Equal(t, StatusInitialized, m.Status("mock"))
}

func TestExecute_NotFound(t *testing.T) {
	m := NewManager(busPkg.New())

	_, err := m.Execute(context.Background(), "ghost", "run", nil)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestExecute_UnsupportedCommand(t *testing.T) {
	m := NewManager(busPkg.New())
	p := newMockPlugin("mock", "generate", "publish")
	_, err := m.Register(context.Background(), p, nil)
	require.NoError(t, err)

	_, err = m.Execute(context.Background(), "mock", "destroy", nil)

	var unsupported *UnsupportedCommandError
	require.ErrorAs(t, err, &unsupported)
	// The message enumerates the valid set and Execute is never invoked.
	assert.Contains(t, unsupported.Error(), "generate")
	assert.Contains(t, unsupported.Error(), "publish")
	assert.Equal(t, 0, p.execCalls)
}

func TestExecute_FailureKeepsPluginRegistered(t *testing.T) {
	m := NewManager(busPkg.New())
	p := newMockPlugin("mock", "generate")
	p.execErr = errors.New("downstream unavailable")
	_, err := m.Register(context.Background(), p, nil)
	require.NoError(t, err)

	_, err = m.Execute(context.Background(), "mock", "generate", nil)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, StatusError, m.Status("mock"))

	// The plugin stays registered and callable again.
	p.execErr = nil
	result, err := m.Execute(context.Background(), "mock", "generate", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, StatusInitialized, m.Status("mock"))
}

func TestListPlugins(t *testing.T) {
	m := NewManager(busPkg.New())
	_, err := m.Register(context.Background(), newMockPlugin("alpha", "a.run"), nil)
	require.NoError(t, err)
	_, err = m.Register(context.Background(), newMockPlugin("beta", "b.run"), nil)
	require.NoError(t, err)

	infos := m.ListPlugins()

	require.Len(t, infos, 2)
	names := []string{infos[0].Name, infos[1].Name}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)
	for _, info := range infos {
		assert.Equal(t, StatusInitialized, info.Status)
	}
}
