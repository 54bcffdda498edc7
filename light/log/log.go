// Package log provides the small structured-logging interface threaded
// through the scheduler, the tm-db-backed trusted store, and the
// fetcher. It mirrors the shape of tendermint/tendermint's libs/log package
// without depending on the whole tendermint module, and is backed by
// go-kit/kit/log the same way that package is.
package log

import (
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// Logger is a minimal leveled, structured logger. Each method takes a
// message and an even number of key/value pairs.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
	With(keyvals ...interface{}) Logger
}

type kitLogger struct {
	kl kitlog.Logger
}

// NewLogger returns a Logger that passes level-tagged records to the go-kit
// logger w, which decides their output format.
func NewLogger(w kitlog.Logger) Logger {
	return &kitLogger{kl: w}
}

// NewDefaultLogger returns a Logger writing logfmt to stderr.
func NewDefaultLogger() Logger {
	return NewLogger(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr)))
}

// NewNopLogger returns a Logger that discards everything it is given.
func NewNopLogger() Logger {
	return NewLogger(kitlog.NewNopLogger())
}

func (l *kitLogger) Debug(msg string, keyvals ...interface{}) {
	l.log("debug", msg, keyvals...)
}

func (l *kitLogger) Info(msg string, keyvals ...interface{}) {
	l.log("info", msg, keyvals...)
}

func (l *kitLogger) Error(msg string, keyvals ...interface{}) {
	l.log("error", msg, keyvals...)
}

func (l *kitLogger) log(level, msg string, keyvals ...interface{}) {
	args := append([]interface{}{"level", level, "msg", msg}, keyvals...)
	_ = l.kl.Log(args...)
}

func (l *kitLogger) With(keyvals ...interface{}) Logger {
	return &kitLogger{kl: kitlog.With(l.kl, keyvals...)}
}
