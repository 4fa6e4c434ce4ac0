package pyrite

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes leveled, timestamped output to stderr.
type DefaultLogger struct {
	l *charmlog.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}
	return &DefaultLogger{
		l: charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Prefix:          prefix,
			Level:           level,
			ReportTimestamp: true,
		}),
	}
}

func (d *DefaultLogger) DebugEnabled() bool {
	return d.l.GetLevel() <= charmlog.DebugLevel
}

func (d *DefaultLogger) SetDebug(enabled bool) {
	if enabled {
		d.l.SetLevel(charmlog.DebugLevel)
	} else {
		d.l.SetLevel(charmlog.InfoLevel)
	}
}

func (d *DefaultLogger) Debugf(format string, args ...any) { d.l.Debugf(format, args...) }
func (d *DefaultLogger) Infof(format string, args ...any)  { d.l.Infof(format, args...) }
func (d *DefaultLogger) Warnf(format string, args ...any)  { d.l.Warnf(format, args...) }
func (d *DefaultLogger) Errorf(format string, args ...any) { d.l.Errorf(format, args...) }

type nopLogger struct{}

// NewNopLogger returns a logger that discards everything. Useful in tests.
func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
