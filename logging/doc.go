// Package logging provides a minimal logging interface and adapters for the
// NARUU platform core.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn,
// Error) used by the event bus, plugin manager, orchestrator and pipeline for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - PlatformLogger with component / content-record context helpers
//
// Usage:
//
//	logger := logging.New(func(o *logging.Options) {
//		o.Level = logging.LevelDebug
//		o.Format = "text"
//	})
//	mgr := plugin.NewManager(bus, func(o *plugin.ManagerOptions) {
//		o.Logger = logger
//	})
//
// The design intentionally keeps the interface minimal so callers can plug any
// structured logger while the defaults stay dependency free.
package logging
