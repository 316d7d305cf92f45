// Package logging provides the structured logger shared by every pipeline
// stage of the client.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the field conventions the pipeline relies on:
// callers attach account/operation/attempt/status_code fields as a request
// moves through the stages via With().
type Logger struct {
	zlog zerolog.Logger
}

// New creates a logger writing to w in zerolog's console format.
func New(w io.Writer) *Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
	return &Logger{zlog: zl}
}

// Default is the package-level logger used when a Config leaves Logger nil.
var Default = New(os.Stderr)

// With returns a zerolog.Context for attaching structured fields.
func (l *Logger) With() zerolog.Context { return l.zlog.With() }

func (l *Logger) Debug() *zerolog.Event { return l.zlog.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zlog.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zlog.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zlog.Error() }

// SetGlobalLevel adjusts the zerolog global level, affecting every Logger.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}
