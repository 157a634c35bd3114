package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger together with the file it may be writing to.
// It satisfies logrus.FieldLogger so it can be handed straight to services.
type Logger struct {
	*logrus.Logger
	file *os.File
}

// CreateLogger creates a new logger instance with the given configuration.
// An empty logFile logs to stdout only; otherwise output goes to the file and,
// when enableStdout is set, to stdout as well.
func CreateLogger(logFile string, level string, format string, enableStdout bool) (Logger, error) {
	logrusLogger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return Logger{}, fmt.Errorf("invalid log level: %w", err)
	}
	logrusLogger.SetLevel(logLevel)

	callerPrettyfier := func(f *runtime.Frame) (string, string) {
		filename := filepath.Base(f.File)
		return "", fmt.Sprintf("%s:%d", filename, f.Line)
	}

	switch strings.ToLower(format) {
	case "json":
		logrusLogger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: callerPrettyfier,
		})
	case "text", "":
		logrusLogger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: callerPrettyfier,
		})
	default:
		return Logger{}, fmt.Errorf("unsupported log format: %s", format)
	}

	logrusLogger.SetReportCaller(true)

	if logFile == "" {
		logrusLogger.SetOutput(os.Stdout)
		return Logger{Logger: logrusLogger}, nil
	}

	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return Logger{}, fmt.Errorf("failed to create log directory: %w", err)
	}

	//nolint:gosec // G304: logFile comes from configuration, not user input
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return Logger{}, fmt.Errorf("failed to open log file: %w", err)
	}

	if enableStdout {
		logrusLogger.SetOutput(io.MultiWriter(file, os.Stdout))
	} else {
		logrusLogger.SetOutput(file)
	}

	return Logger{Logger: logrusLogger, file: file}, nil
}

// Discard returns a logger that drops everything, for tests
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return Logger{Logger: l}
}

// Close closes the log file, if any
func (l Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
