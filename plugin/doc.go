// Package plugin defines the capability contract every functional module of
// the platform must satisfy, and the Manager that owns plugin lifecycle.
//
// A Plugin declares a set of named commands (capabilities); the Manager is the
// sole owner of the registry and the only component permitted to mutate plugin
// status. It validates commands against the declared capability list centrally,
// so individual plugins never need to re-check, and publishes lifecycle events
// ("plugin.registered", "plugin.unregistered") on the event bus.
//
// Discovery is factory based: implementations register a constructor under a
// name at init time, and Manager.Discover scans a directory of plugin.json
// manifests to instantiate and register them. A single candidate's failure is
// logged and never aborts the scan.
package plugin
