package plugin

import (
	"fmt"
	"strings"
)

// DuplicateError indicates a registration attempt with an already-taken name.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("plugin %q is already registered", e.Name)
}

// NotFoundError indicates a lookup for a plugin that is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plugin %q not found", e.Name)
}

// UnsupportedCommandError indicates a command outside the plugin's declared
// capability list. The message enumerates the valid set.
type UnsupportedCommandError struct {
	Plugin  string
	Command string
	Valid   []string
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("plugin %q does not support command %q (valid: %s)",
		e.Plugin, e.Command, strings.Join(e.Valid, ", "))
}

// InitError wraps a failure inside Plugin.Initialize during registration.
type InitError struct {
	Plugin string
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("plugin %q initialization failed: %v", e.Plugin, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// ExecError wraps a failure inside Plugin.Execute. The plugin remains
// registered and callable afterwards.
type ExecError struct {
	Plugin  string
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("plugin %q command %q failed: %v", e.Plugin, e.Command, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }
