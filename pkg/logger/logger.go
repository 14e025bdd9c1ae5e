package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger
type Logger struct {
	zerolog.Logger
}

// New creates a new logger instance. Development gets a human-readable
// console writer and debug level; everything else logs JSON at info.
func New(serviceName string, environment string) *Logger {
	return NewWithWriter(serviceName, environment, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(serviceName string, environment string, out io.Writer) *Logger {
	level := zerolog.InfoLevel
	if environment == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	return &Logger{Logger: logger}
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// WithRequestID returns a logger with the request ID attached
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("request_id", requestID).Logger()}
}

// WithCustomerID returns a logger with the customer (lead) ID attached
func (l *Logger) WithCustomerID(customerID string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("customer_id", customerID).Logger()}
}

// WithJobID returns a logger with the extraction job ID attached
func (l *Logger) WithJobID(jobID string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("job_id", jobID).Logger()}
}

// WithComponent returns a logger with the component name attached
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("component", component).Logger()}
}

// WithError returns a logger with the error attached
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With().Err(err).Logger()}
}
