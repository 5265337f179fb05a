// Package logger holds the process-wide logrus loggers used by DemoDB.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	// Logger receives debug, info and warning output.
	Logger = newLogger(os.Stderr, logrus.InfoLevel)
	// ErrorLogger receives error and fatal output.
	ErrorLogger = newLogger(os.Stderr, logrus.InfoLevel)
)

type LogConfig struct {
	ErrorLogPath string
	InfoLogPath  string
	LogLevel     string
}

// TextFormatter renders "[time] [LEVL] message key=value ...".
type TextFormatter struct {
	TimestampFormat string
}

func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	layout := f.TimestampFormat
	if layout == "" {
		layout = "15:04:05 MST 2006/01/02"
	}

	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s", entry.Time.Format(layout), level, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, entry.Data[key])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&TextFormatter{})
	l.SetOutput(out)
	l.SetLevel(level)
	return l
}

// ParseLevel maps a level name to a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// InitLogger reconfigures both loggers. A log file that cannot be opened
// falls back to the standard stream.
func InitLogger(config LogConfig) error {
	level := ParseLevel(config.LogLevel)

	Logger = newLogger(os.Stderr, level)
	ErrorLogger = newLogger(os.Stderr, level)

	if config.InfoLogPath != "" {
		file, err := openLogFile(config.InfoLogPath)
		if err != nil {
			Logger.Warnf("failed to open info log %s, using stderr: %v", config.InfoLogPath, err)
		} else {
			Logger.SetOutput(io.MultiWriter(os.Stderr, file))
		}
	}

	if config.ErrorLogPath != "" {
		file, err := openLogFile(config.ErrorLogPath)
		if err != nil {
			ErrorLogger.Warnf("failed to open error log %s, using stderr: %v", config.ErrorLogPath, err)
		} else {
			ErrorLogger.SetOutput(io.MultiWriter(os.Stderr, file))
		}
	}

	return nil
}

// SetOutput redirects both loggers, mostly for tests.
func SetOutput(out io.Writer) {
	Logger.SetOutput(out)
	ErrorLogger.SetOutput(out)
}

func SetLevel(level string) {
	Logger.SetLevel(ParseLevel(level))
	ErrorLogger.SetLevel(ParseLevel(level))
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	ErrorLogger.Errorf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	ErrorLogger.Fatalf(format, args...)
}
