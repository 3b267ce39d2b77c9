package log

import (
	"log/slog"
	"os"
)

// Logger is a slog.Logger pinned to one application component. The
// component travels as a regular attribute so log lines can be filtered
// by subsystem (http, store, worker, ...).
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler // optional override; text on stdout otherwise
}

// DefaultConfig is the setup both binaries start from.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
	}
}

// New builds a component-tagged logger.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}

	component := config.Component
	if component == "" {
		component = ComponentApp
	}

	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, component),
		component: component,
	}
}

// With returns a logger carrying extra attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// WithComponent re-tags the logger for a subsystem.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(FieldComponent, component),
		component: component,
	}
}

// Component returns the component this logger is tagged with.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs the logger process-wide so package-level slog
// calls inherit the component tag.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
