package util

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the process logger. netdbctl writes its answers to stdout, so
// log lines go to stderr.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.WarnLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// ConfigureLogging sets the level and, with asJSON, switches to JSON lines.
func ConfigureLogging(level string, asJSON bool) error {
	if err := SetLogLevel(level); err != nil {
		return err
	}
	if asJSON {
		SetJSONFormat()
	}
	return nil
}

// SetLogLevel sets the logging level
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetLogOutput sets the log output destination
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat enables JSON log format
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// WithField returns a logger with a field
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithFields returns a logger with multiple fields
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithRouter tags entries with the router's netdb set id.
func WithRouter(router string) *logrus.Entry {
	return Logger.WithField("router", router)
}

// WithColumn tags entries with a netdb column.
func WithColumn(column string) *logrus.Entry {
	return Logger.WithField("column", column)
}

// WithOperation tags entries with the audited operation name.
func WithOperation(operation string) *logrus.Entry {
	return Logger.WithField("operation", operation)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}
