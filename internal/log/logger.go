// Package log is the structured logging layer: a component-tagged slog
// logger, shared attribute keys and request-scoped loggers.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger tagged with the component that owns it.
type Logger struct {
	*slog.Logger
	// base carries every attribute except the component, so switching
	// components never stacks two component keys.
	base      *slog.Logger
	component string
}

type Config struct {
	Level     slog.Level
	Component string
	// Handler overrides the stdout text handler built from Level.
	Handler slog.Handler
}

func DefaultConfig() Config {
	return Config{Level: slog.LevelInfo, Component: ComponentApp}
}

// ParseLevel maps LOG_LEVEL values onto slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewHandler builds a text or JSON handler writing to w.
func NewHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// FromSettings creates a stdout logger from the LOG_LEVEL and LOG_FORMAT values.
func FromSettings(level, format, component string) *Logger {
	return New(Config{Component: component, Handler: NewHandler(os.Stdout, level, format)})
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	return wrap(slog.New(handler), config.Component)
}

// Wrap adopts an existing slog logger, e.g. slog.Default().
func Wrap(l *slog.Logger, component string) *Logger {
	return wrap(l, component)
}

func wrap(base *slog.Logger, component string) *Logger {
	l := &Logger{base: base, component: component}
	if component == "" {
		l.Logger = base
	} else {
		l.Logger = base.With(FieldComponent, component)
	}
	return l
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return wrap(l.base.With(args...), l.component)
}

// WithComponent returns the same logger tagged with a different component.
func (l *Logger) WithComponent(component string) *Logger {
	return wrap(l.base, component)
}

func (l *Logger) Component() string {
	return l.component
}

// SetDefault makes logger the process-wide slog default.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
