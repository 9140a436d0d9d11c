package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with the field helpers the timesheet
// service uses to tag log lines.
type Logger struct {
	zerolog.Logger
}

// New creates a logger tagged with the service name. Development gets
// the human-readable console writer; everything else emits JSON for
// log aggregation.
func New(serviceName string, environment string) *Logger {
	var output io.Writer = os.Stdout

	if environment == "development" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	return &Logger{Logger: logger}
}

// WithRequestID returns a logger with the request ID attached, so one
// HTTP request's lines correlate across handler, service and repository.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("request_id", requestID).Logger(),
	}
}

// WithComponent returns a logger tagged with a component name, e.g.
// "importer" or "approval".
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("component", component).Logger(),
	}
}

// WithImportLog returns a logger tagged with an import run, so every
// line of one CSV execution carries the log id it is summarized under.
func (l *Logger) WithImportLog(importLogID string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("import_log_id", importLogID).Logger(),
	}
}

// WithError returns a logger with the error attached
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With().Err(err).Logger(),
	}
}
