package logging

// PlatformLogger decorates a Logger with stable contextual attributes
// (component, content record id). It is cheap to copy via the With* methods,
// so callers can derive scoped loggers without mutating the parent.
type PlatformLogger struct {
	logger    Logger
	component string
	contentID string
}

// NewPlatformLogger wraps an existing Logger. A nil logger falls back to NoOp.
func NewPlatformLogger(logger Logger) *PlatformLogger {
	if logger == nil {
		logger = NoOpLogger{}
	}
	return &PlatformLogger{logger: logger}
}

// WithComponent returns a copy scoped to the named component
// (e.g. "plugin_manager", "pipeline").
func (p *PlatformLogger) WithComponent(component string) *PlatformLogger {
	clone := *p
	clone.component = component
	return &clone
}

// WithContent returns a copy scoped to a content record id.
func (p *PlatformLogger) WithContent(contentID string) *PlatformLogger {
	clone := *p
	clone.contentID = contentID
	return &clone
}

func (p *PlatformLogger) attrs(args []any) []any {
	if p.component != "" {
		args = append(args, "component", p.component)
	}
	if p.contentID != "" {
		args = append(args, "content_id", p.contentID)
	}
	return args
}

// Debug logs a debug message with the contextual attributes appended.
func (p *PlatformLogger) Debug(msg string, args ...any) { p.logger.Debug(msg, p.attrs(args)...) }

// Info logs an informational message with the contextual attributes appended.
func (p *PlatformLogger) Info(msg string, args ...any) { p.logger.Info(msg, p.attrs(args)...) }

// Warn logs a warning message with the contextual attributes appended.
func (p *PlatformLogger) Warn(msg string, args ...any) { p.logger.Warn(msg, p.attrs(args)...) }

// Error logs an error message with the contextual attributes appended.
func (p *PlatformLogger) Error(msg string, args ...any) { p.logger.Error(msg, p.attrs(args)...) }
