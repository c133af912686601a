// Package logger provides leveled logging for the mailtriage CLI.
// Info and above always print; debug messages are enabled with the
// --verbose flag so users can follow the pipeline message by message.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetVerbose enables or disables debug logging.
func SetVerbose(v bool) {
	if v {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// IsVerbose returns true if debug logging is enabled.
func IsVerbose() bool {
	return log.GetLevel() >= logrus.DebugLevel
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Debug logs a message at debug level.
func Debug(format string, args ...any) {
	log.Debugf(format, args...)
}

// Info logs a message at info level.
func Info(format string, args ...any) {
	log.Infof(format, args...)
}

// Warn logs a message at warning level.
func Warn(format string, args ...any) {
	log.Warnf(format, args...)
}

// Error logs a message at error level.
func Error(format string, args ...any) {
	log.Errorf(format, args...)
}
