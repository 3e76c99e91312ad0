// Package logging provides the AREA engine's structured logging, built on logrus with
// stream-aware output routing suited to containerized deployment.
package logging

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes logrus output lines containing "level=error" to stderr and
// everything else to stdout, so orchestrators can treat the two streams differently.
type OutputSplitter struct{}

func (s *OutputSplitter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("level=error")) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// Logger is the process-wide logrus instance; every package logs through it or a
// ContextLogger wrapping it.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(&OutputSplitter{})
}

// Configure applies the level/format settings resolved from the environment.
func Configure(level, format string) {
	switch level {
	case "debug":
		Logger.SetLevel(logrus.DebugLevel)
	case "warn":
		Logger.SetLevel(logrus.WarnLevel)
	case "error":
		Logger.SetLevel(logrus.ErrorLevel)
	default:
		Logger.SetLevel(logrus.InfoLevel)
	}
	if format == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
