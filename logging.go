package raybvh

import (
	"io"
	"os"

	logging "github.com/op/go-logging"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// DefaultLogger is a named leveled logger. Debug output is dropped unless
// enabled.
type DefaultLogger struct {
	module  string
	log     *logging.Logger
	backend logging.LeveledBackend
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewLoggerTo(os.Stderr, prefix, debug)
}

// NewLoggerTo builds a DefaultLogger writing to w.
func NewLoggerTo(w io.Writer, prefix string, debug bool) *DefaultLogger {
	if prefix == "" {
		prefix = "raybvh"
	}
	backend := logging.AddModuleLevel(
		logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), format),
	)
	l := &DefaultLogger{
		module:  prefix,
		log:     logging.MustGetLogger(prefix),
		backend: backend,
	}
	l.log.SetBackend(backend)
	l.SetDebug(debug)
	return l
}

func (l *DefaultLogger) DebugEnabled() bool {
	return l.backend.IsEnabledFor(logging.DEBUG, l.module)
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	if enabled {
		l.backend.SetLevel(logging.DEBUG, l.module)
	} else {
		l.backend.SetLevel(logging.INFO, l.module)
	}
}

// Level is a verbosity threshold for DefaultLogger.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// SetLevel drops every message below lvl.
func (l *DefaultLogger) SetLevel(lvl Level) {
	switch lvl {
	case LevelError:
		l.backend.SetLevel(logging.ERROR, l.module)
	case LevelWarn:
		l.backend.SetLevel(logging.WARNING, l.module)
	case LevelInfo:
		l.backend.SetLevel(logging.INFO, l.module)
	default:
		l.backend.SetLevel(logging.DEBUG, l.module)
	}
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.log.Debugf(format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.log.Infof(format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.log.Warningf(format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.log.Errorf(format, args...) }

// Nop logger

type nopLogger struct{}

func NewNopLogger() Logger                             { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// OrNop returns l, or a no-op logger when l is nil. Never returns nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
