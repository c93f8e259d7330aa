// Package logger holds the process-wide logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger. It is usable before Init with logrus defaults.
var Log = logrus.New()

// Init configures Log. An empty level falls back to LOG_LEVEL, then "info";
// an empty format falls back to LOG_FORMAT, then "text".
func Init(level, format string) {
	InitWithOutput(level, format, os.Stderr)
}

// InitWithOutput is Init with an explicit destination.
func InitWithOutput(level, format string, out io.Writer) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Log.SetLevel(parsed)

	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	}

	Log.SetOutput(out)
}
