package nimbus

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger is the sink the renderer reports through: permutation rebuilds at
// debug level, build results at info. Hosts plug in their own implementation;
// the builder falls back to a silent one.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StdLogger writes level-tagged lines through a stdlib log.Logger. Debug
// output is fixed at construction; the renderer never toggles verbosity
// mid-run, so there is no mutable state to guard.
type StdLogger struct {
	debug bool
	l     *log.Logger
}

// NewStdLogger logs to w, or stderr when w is nil.
func NewStdLogger(w io.Writer, debug bool) *StdLogger {
	if w == nil {
		w = os.Stderr
	}
	return &StdLogger{
		debug: debug,
		l:     log.New(w, "nimbus ", log.LstdFlags|log.Lmicroseconds),
	}
}

func (s *StdLogger) Debugf(format string, args ...any) {
	if !s.debug {
		return
	}
	s.l.Print("DEBUG ", fmt.Sprintf(format, args...))
}

func (s *StdLogger) Infof(format string, args ...any) {
	s.l.Print("INFO ", fmt.Sprintf(format, args...))
}

func (s *StdLogger) Warnf(format string, args ...any) {
	s.l.Print("WARN ", fmt.Sprintf(format, args...))
}

func (s *StdLogger) Errorf(format string, args ...any) {
	s.l.Print("ERROR ", fmt.Sprintf(format, args...))
}

type nopLogger struct{}

// NewNopLogger returns a logger that discards everything. The renderer falls
// back to it when the host does not attach a logger of its own.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Infof(format string, args ...any)  {}
func (nopLogger) Warnf(format string, args ...any)  {}
func (nopLogger) Errorf(format string, args ...any) {}
