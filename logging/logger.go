package logging

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// ContextLogger is an immutable, fluent field accumulator over a logrus.Logger.
type ContextLogger struct {
	logger *logrus.Logger
	fields logrus.Fields
}

// NewContextLogger returns a ContextLogger seeded with the given base fields.
// A nil logger falls back to the package-wide Logger.
func NewContextLogger(logger *logrus.Logger, fields map[string]interface{}) *ContextLogger {
	if logger == nil {
		logger = Logger
	}
	base := make(logrus.Fields, len(fields))
	for k, v := range fields {
		base[k] = v
	}
	return &ContextLogger{logger: logger, fields: base}
}

// Named returns a sub-logger tagged with a "component" field, the convention used
// across the scheduler, seeder, store, and leaderlock packages.
func Named(component string) *ContextLogger {
	return NewContextLogger(Logger, map[string]interface{}{"component": component})
}

func (cl *ContextLogger) clone() logrus.Fields {
	next := make(logrus.Fields, len(cl.fields))
	for k, v := range cl.fields {
		next[k] = v
	}
	return next
}

// WithField returns a copy of this logger with one extra field.
func (cl *ContextLogger) WithField(key string, value interface{}) *ContextLogger {
	next := cl.clone()
	next[key] = value
	return &ContextLogger{logger: cl.logger, fields: next}
}

// WithFields returns a copy of this logger with several extra fields.
func (cl *ContextLogger) WithFields(fields map[string]interface{}) *ContextLogger {
	next := cl.clone()
	for k, v := range fields {
		next[k] = v
	}
	return &ContextLogger{logger: cl.logger, fields: next}
}

// WithError attaches an error under the "error" field.
func (cl *ContextLogger) WithError(err error) *ContextLogger {
	if err == nil {
		return cl
	}
	return cl.WithField("error", err.Error())
}

func (cl *ContextLogger) Debug(msg string) { cl.logger.WithFields(cl.fields).Debug(msg) }
func (cl *ContextLogger) Info(msg string)  { cl.logger.WithFields(cl.fields).Info(msg) }
func (cl *ContextLogger) Warn(msg string)  { cl.logger.WithFields(cl.fields).Warn(msg) }
func (cl *ContextLogger) Error(msg string) { cl.logger.WithFields(cl.fields).Error(msg) }

func (cl *ContextLogger) Debugf(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Debugf(format, args...)
}
func (cl *ContextLogger) Infof(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Infof(format, args...)
}
func (cl *ContextLogger) Errorf(format string, args ...interface{}) {
	cl.logger.WithFields(cl.fields).Errorf(format, args...)
}

// LogDuration returns a func to defer that logs how long the wrapped operation took.
func LogDuration(logger *ContextLogger, operation string) func() {
	start := time.Now()
	return func() {
		logger.WithFields(map[string]interface{}{
			"operation":   operation,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("operation completed")
	}
}

// RecoverAndLog recovers a panic, logging it with a stack trace, and is used at the
// per-workflow isolation boundary in the scheduler (spec §4.1, §7 InternalError).
func RecoverAndLog(logger *ContextLogger) (recovered interface{}) {
	if r := recover(); r != nil {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		logger.WithFields(map[string]interface{}{
			"panic":      fmt.Sprintf("%v", r),
			"stacktrace": string(buf[:n]),
		}).Error("panic recovered")
		return r
	}
	return nil
}
