package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"policy-chat/config"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.SetOutput(os.Stdout)
	log.SetLevel(parseLevel(string(config.Cfg.LogLevel)))
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableQuote:    true,
		PadLevelText:    true,
	})
}

func parseLevel(s string) logrus.Level {
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// caller returns the file:line of the function that called the logging helper.
func caller() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func Debug(format string, args ...interface{}) {
	log.Debugf("%s "+format, append([]interface{}{caller()}, args...)...)
}

func Info(format string, args ...interface{}) {
	log.Infof("%s "+format, append([]interface{}{caller()}, args...)...)
}

func Warn(format string, args ...interface{}) {
	log.Warnf("%s "+format, append([]interface{}{caller()}, args...)...)
}

// Error logs a formatted message with the error attached as a structured field.
func Error(err error, format string, args ...interface{}) {
	entry := log.WithFields(logrus.Fields{})
	if err != nil {
		entry = entry.WithField("error", err.Error())
	}
	entry.Errorf("%s "+format, append([]interface{}{caller()}, args...)...)
}

func Errorf(format string, args ...interface{}) {
	log.Errorf("%s "+format, append([]interface{}{caller()}, args...)...)
}

func Fatal(err error, format string, args ...interface{}) {
	entry := log.WithFields(logrus.Fields{})
	if err != nil {
		entry = entry.WithField("error", err.Error())
	}
	entry.Fatalf("%s "+format, append([]interface{}{caller()}, args...)...)
}

func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// SetLevel overrides the configured log level at runtime.
func SetLevel(levelStr string) error {
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level: %v", err)
	}
	log.SetLevel(level)
	return nil
}

// GetLogger exposes the underlying logrus logger.
func GetLogger() *logrus.Logger {
	return log
}
