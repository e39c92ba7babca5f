// Package log provides the diagnostic logger used across mj.
//
// Command results go to stdout through internal/output. Everything written
// here goes to stderr and is filtered by level:
//   - WARN (default): recoverable problems, such as a credential file that
//     could not be removed during a clear
//   - INFO (--verbose): which backend and store root are in use
//   - DEBUG (--debug): causes suppressed by best-effort operations
package log

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the interface for structured logging. Arguments after the
// message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a Logger that adds the given key/value pairs to every entry.
	With(args ...any) Logger
}

// Level names accepted by ParseLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

type logrusLogger struct {
	entry *logrus.Entry
}

// New creates a Logger writing text entries to out at the given level.
// Unknown level names fall back to warn.
func New(out io.Writer, level string) Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	l.SetLevel(ParseLevel(level))
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// ParseLevel maps a level name to a logrus level.
func ParseLevel(level string) logrus.Level {
	switch level {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

func (l *logrusLogger) Debug(msg string, args ...any) {
	l.entry.WithFields(fields(args)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, args ...any) {
	l.entry.WithFields(fields(args)).Info(msg)
}

func (l *logrusLogger) Warn(msg string, args ...any) {
	l.entry.WithFields(fields(args)).Warn(msg)
}

func (l *logrusLogger) Error(msg string, args ...any) {
	l.entry.WithFields(fields(args)).Error(msg)
}

func (l *logrusLogger) With(args ...any) Logger {
	return &logrusLogger{entry: l.entry.WithFields(fields(args))}
}

// fields converts alternating key/value arguments into logrus fields.
// A trailing key without a value is recorded under "!BADKEY", matching slog.
func fields(args []any) logrus.Fields {
	f := make(logrus.Fields, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			f["!BADKEY"] = args[i]
			continue
		}
		f[key] = args[i+1]
	}
	return f
}

type noopLogger struct{}

// NewNoop returns a logger that discards all output.
func NewNoop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) With(...any) Logger   { return noopLogger{} }

var (
	defaultLogger Logger = noopLogger{}
	defaultMu     sync.RWMutex
)

// Default returns the process-wide logger. It is a noop logger until
// SetDefault is called.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}
