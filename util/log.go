package util

import (
	"io"
	"log"
)

// Logger is the sink every component writes through. It is built once from the
// machine options and injected, so nothing in the core touches process-wide
// logging state.
type Logger struct {
	printer *log.Logger
	tracer  *log.Logger
}

// NewLogger returns a logger writing to w. If silent is set, Printf is
// suppressed; if trace is unset, Tracef is suppressed. A nil w discards
// everything.
func NewLogger(w io.Writer, trace, silent bool) *Logger {
	if w == nil {
		w = io.Discard
	}
	lg := &Logger{}
	if !silent {
		lg.printer = log.New(w, "", log.LstdFlags)
	}
	if trace {
		lg.tracer = log.New(w, "", 0)
	}
	return lg
}

func (lg *Logger) Printf(format string, v ...interface{}) {
	if lg.printer != nil {
		lg.printer.Printf(format, v...)
	}
}

func (lg *Logger) Tracef(format string, v ...interface{}) {
	if lg.tracer != nil {
		lg.tracer.Printf(format, v...)
	}
}

func (lg *Logger) TraceEnabled() bool {
	return lg.tracer != nil
}
