// Package pdflog provides the leveled, named loggers used across the
// module. Each subsystem (parsing, writing, copying, embedding) gets its
// own named logger so a caller can enable diagnostics for one concern
// without being flooded by the others, the same split pdfcpu exposes as
// log.Parse, log.Write, ... and that this module's parser originally
// consumed directly.
package pdflog

import (
	"io"
	"log"
	"os"
)

// Logger is a named, independently toggleable logger.
type Logger struct {
	name    string
	enabled bool
	std     *log.Logger
}

func newLogger(name string) *Logger {
	return &Logger{name: name, std: log.New(os.Stderr, "["+name+"] ", log.LstdFlags)}
}

// Enable turns this logger on or off. Disabled loggers format nothing.
func (l *Logger) Enable(on bool) { l.enabled = on }

// SetOutput redirects this logger's destination.
func (l *Logger) SetOutput(w io.Writer) { l.std.SetOutput(w) }

func (l *Logger) Printf(format string, args ...interface{}) {
	if l == nil || !l.enabled {
		return
	}
	l.std.Printf(format, args...)
}

func (l *Logger) Println(args ...interface{}) {
	if l == nil || !l.enabled {
		return
	}
	l.std.Println(args...)
}

// Named loggers for each subsystem. All disabled by default; callers
// (or the CLI) opt in with Enable(true).
var (
	Parse = newLogger("parse")
	Write = newLogger("write")
	Copy  = newLogger("copy")
	Embed = newLogger("embed")
)

// EnableAll turns every named logger on, convenient for debugging a
// single failing document end to end.
func EnableAll() {
	Parse.Enable(true)
	Write.Enable(true)
	Copy.Enable(true)
	Embed.Enable(true)
}
