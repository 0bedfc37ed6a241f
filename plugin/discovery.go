package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Factory constructs a fresh plugin instance. Implementations register a
// factory under their plugin name at init time so Discover can instantiate
// them without any runtime code loading.
type Factory func() Plugin

// manifestFile is the conventional entry point every plugin directory exposes.
const manifestFile = "plugin.json"

// manifest describes one discoverable plugin. Config is passed verbatim to
// Initialize during registration.
type manifest struct {
	Name    string         `json:"name"`
	Config  map[string]any `json:"config,omitempty"`
	Comment string         `json:"comment,omitempty"`
}

var (
	factoryMu sync.RWMutex
	factories = map[string]Factory{}
)

// RegisterFactory records a constructor for a named plugin so directory
// discovery can instantiate it. Later registrations under the same name
// replace earlier ones.
func RegisterFactory(name string, f Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[name] = f
}

func lookupFactory(name string) (Factory, bool) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// Discover scans the immediate subdirectories of dir for plugin.json
// manifests and registers each named plugin via its compiled-in factory.
//
// Per candidate it skips, with a warning, a missing manifest, an unreadable
// or invalid manifest, an unknown factory name, or a name that is already
// registered. One candidate's failure never aborts the scan of the rest, and
// discovery failures are never returned to the caller; the result lists only
// the plugins newly registered by this call.
func (m *Manager) Discover(ctx context.Context, dir string) []Info {
	var registered []Info

	entries, err := os.ReadDir(dir)
	if err != nil {
		m.logger.Warn("plugin directory not readable", "dir", dir, "error", err)
		return registered
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name(), manifestFile)
		raw, err := os.ReadFile(path)
		if err != nil {
			m.logger.Warn("plugin manifest missing", "dir", entry.Name())
			continue
		}

		var mf manifest
		if err := json.Unmarshal(raw, &mf); err != nil {
			m.logger.Warn("plugin manifest invalid", "dir", entry.Name(), "error", err)
			continue
		}
		if mf.Name == "" {
			m.logger.Warn("plugin manifest has no name", "dir", entry.Name())
			continue
		}

		factory, ok := lookupFactory(mf.Name)
		if ok {
			p := factory()
			if p == nil || p.Name() != mf.Name {
				m.logger.Warn("plugin factory returned mismatched implementation", "name", mf.Name)
				continue
			}
			if m.Get(p.Name()) != nil {
				m.logger.Warn("plugin already registered, skipping", "name", p.Name())
				continue
			}
			info, err := m.Register(ctx, p, mf.Config)
			if err != nil {
				m.logger.Warn("plugin registration failed during discovery",
					"name", mf.Name, "error", err)
				continue
			}
			registered = append(registered, info)
			continue
		}

		m.logger.Warn("no factory registered for plugin", "name", mf.Name)
	}

	return registered
}
