// Package logger provides the application's structured logging, backed by
// logrus with optional rotating file output.
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// Options configures output, level, and rotation for the process logger.
type Options struct {
	Level      string // debug | info | warn | error
	Format     string // text | json
	Output     string // "", "stdout", "stderr", or a file path
	MaxAgeDays int    // file retention when Output is a path; 0 = no rotation
}

// Configure reconfigures the process logger. Invalid values fall back to the
// defaults rather than failing startup.
func Configure(opts Options) error {
	if opts.Level != "" {
		lvl, err := logrus.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return fmt.Errorf("invalid log level %q", opts.Level)
		}
		log.SetLevel(lvl)
	}

	switch opts.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	default:
		return fmt.Errorf("invalid log format %q", opts.Format)
	}

	switch opts.Output {
	case "", "stdout":
		log.SetOutput(os.Stdout)
	case "stderr":
		log.SetOutput(os.Stderr)
	default:
		if opts.MaxAgeDays > 0 {
			log.SetOutput(&lumberjack.Logger{
				Filename: opts.Output,
				MaxAge:   opts.MaxAgeDays,
				MaxSize:  100,
				Compress: true,
			})
		} else {
			f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("open log file %s: %w", opts.Output, err)
			}
			log.SetOutput(f)
		}
	}
	return nil
}

func tagged(tag string) *logrus.Entry {
	return log.WithField("tag", tag)
}

// Info logs an informational message under a component tag.
func Info(tag, msg string) {
	tagged(tag).Info(msg)
}

// Success logs a completed operation.
func Success(tag, msg string) {
	tagged(tag).WithField("status", "ok").Info(msg)
}

// Warn logs a recoverable problem.
func Warn(tag, msg string) {
	tagged(tag).Warn(msg)
}

// Error logs a failure.
func Error(tag, msg string) {
	tagged(tag).Error(msg)
}

// Debug logs diagnostic detail, visible only at debug level.
func Debug(tag, msg string) {
	tagged(tag).Debug(msg)
}

// WithFields returns a tagged entry carrying structured fields.
func WithFields(tag string, fields map[string]interface{}) *logrus.Entry {
	return tagged(tag).WithFields(logrus.Fields(fields))
}

// Banner prints the startup banner.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	log.WithField("version", version).Info("xiv-profit starting")
}

// Server logs the listen address once the HTTP server is up.
func Server(addr string) {
	log.WithField("addr", addr).Info("HTTP server listening")
}
