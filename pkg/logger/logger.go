// Package logger provides the bot's leveled logging on top of logrus.
// Every line carries a component prefix and is fanned out to the console
// (colored), to log files, and optionally to Discord webhooks.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelCritical LogLevel = iota
	LevelError
	LevelWarn
	LevelSuccess
	LevelInfo
	LevelDebug
	LevelSystem
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelCritical:
		return "CRITICAL"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelSuccess:
		return "SUCCESS"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelSystem:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Color returns the ANSI color code for the log level
func (l LogLevel) Color() string {
	switch l {
	case LevelCritical:
		return "\033[1;31m" // Bold Red
	case LevelError:
		return "\033[31m" // Red
	case LevelWarn:
		return "\033[33m" // Yellow
	case LevelSuccess:
		return "\033[32m" // Green
	case LevelInfo:
		return "\033[36m" // Cyan
	case LevelDebug:
		return "\033[35m" // Magenta
	case LevelSystem:
		return "\033[34m" // Blue
	default:
		return "\033[0m" // Reset
	}
}

// DiscordColor returns the Discord embed color for the log level
func (l LogLevel) DiscordColor() int {
	switch l {
	case LevelCritical, LevelError:
		return 0xFF0000
	case LevelWarn:
		return 0xFFFF00
	case LevelSuccess:
		return 0x00FF00
	case LevelInfo:
		return 0x0000FF
	case LevelDebug:
		return 0x800080
	case LevelSystem:
		return 0x808080
	default:
		return 0xFFFFFF
	}
}

// logrusLevel maps a bot level onto the closest logrus level.
func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LevelCritical, LevelError:
		return logrus.ErrorLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

const (
	colorReset = "\033[0m"

	fieldLevel  = "botlevel"
	fieldPrefix = "prefix"
)

// Options configures a Logger
type Options struct {
	// Dir is where combined.log and error.log are written. Empty disables files.
	Dir          string
	ErrorWebhook string
	LogsWebhook  string
	// Console receives colored output. Defaults to os.Stdout.
	Console io.Writer
}

// Logger is the main logging structure
type Logger struct {
	logrus *logrus.Logger
	files  *fileHook
}

// logger is the global logger instance
var (
	logger *Logger
	once   sync.Once
)

// Init initializes the global logger instance
func Init(opts Options) *Logger {
	once.Do(func() {
		logger = NewLogger(opts)
	})
	return logger
}

// Get returns the global logger instance
func Get() *Logger {
	once.Do(func() {
		logger = NewLogger(Options{Dir: "logs"})
	})
	return logger
}

// NewLogger creates a new Logger instance
func NewLogger(opts Options) *Logger {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	lr := logrus.New()
	lr.SetOutput(console)
	lr.SetFormatter(&lineFormatter{colored: true})
	lr.SetLevel(logrus.DebugLevel)

	l := &Logger{logrus: lr}

	if opts.Dir != "" {
		files, err := newFileHook(opts.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log files: %v\n", err)
		} else {
			l.files = files
			lr.AddHook(files)
		}
	}

	if opts.ErrorWebhook != "" || opts.LogsWebhook != "" {
		lr.AddHook(newWebhookHook(opts.ErrorWebhook, opts.LogsWebhook))
	}

	return l
}

// log is the internal logging function
func (l *Logger) log(level LogLevel, message string, prefix string) {
	l.logrus.WithFields(logrus.Fields{
		fieldLevel:  level,
		fieldPrefix: prefix,
	}).Log(level.logrusLevel(), message)
}

// Close closes the log files
func (l *Logger) Close() {
	if l.files != nil {
		l.files.Close()
	}
}

// Critical logs a critical message
func (l *Logger) Critical(message string, prefix string) {
	l.log(LevelCritical, message, prefix)
}

// Error logs an error message
func (l *Logger) Error(message string, prefix string) {
	l.log(LevelError, message, prefix)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, prefix string) {
	l.log(LevelWarn, message, prefix)
}

// Success logs a success message
func (l *Logger) Success(message string, prefix string) {
	l.log(LevelSuccess, message, prefix)
}

// Info logs an info message
func (l *Logger) Info(message string, prefix string) {
	l.log(LevelInfo, message, prefix)
}

// Debug logs a debug message
func (l *Logger) Debug(message string, prefix string) {
	l.log(LevelDebug, message, prefix)
}

// System logs a system message
func (l *Logger) System(message string, prefix string) {
	l.log(LevelSystem, message, prefix)
}

// Package-level functions for convenience

// Critical logs a critical message using the global logger
func Critical(message string, prefix string) {
	Get().Critical(message, prefix)
}

// Error logs an error message using the global logger
func Error(message string, prefix string) {
	Get().Error(message, prefix)
}

// Warn logs a warning message using the global logger
func Warn(message string, prefix string) {
	Get().Warn(message, prefix)
}

// Success logs a success message using the global logger
func Success(message string, prefix string) {
	Get().Success(message, prefix)
}

// Info logs an info message using the global logger
func Info(message string, prefix string) {
	Get().Info(message, prefix)
}

// Debug logs a debug message using the global logger
func Debug(message string, prefix string) {
	Get().Debug(message, prefix)
}

// System logs a system message using the global logger
func System(message string, prefix string) {
	Get().System(message, prefix)
}

// entryLevel recovers the bot level stored on a logrus entry.
func entryLevel(e *logrus.Entry) LogLevel {
	if lvl, ok := e.Data[fieldLevel].(LogLevel); ok {
		return lvl
	}
	switch e.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return LevelCritical
	case logrus.ErrorLevel:
		return LevelError
	case logrus.WarnLevel:
		return LevelWarn
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	default:
		return LevelInfo
	}
}

func entryPrefix(e *logrus.Entry) string {
	if p, ok := e.Data[fieldPrefix].(string); ok && p != "" {
		return p
	}
	return "-"
}

// lineFormatter renders "[timestamp] [LEVEL] [prefix]: message".
type lineFormatter struct {
	colored bool
}

func (f *lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	lvl := entryLevel(e)
	name := lvl.String()
	if f.colored {
		name = lvl.Color() + name + colorReset
	}
	line := fmt.Sprintf("[%s] [%s] [%s]: %s\n",
		e.Time.Format("2006-01-02 15:04:05"),
		name,
		entryPrefix(e),
		e.Message,
	)
	return []byte(line), nil
}

// fileHook appends plain lines to combined.log, and error levels to error.log.
type fileHook struct {
	mu        sync.Mutex
	formatter lineFormatter
	combined  *os.File
	errors    *os.File
}

func newFileHook(dir string) (*fileHook, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	combined, err := os.OpenFile(filepath.Join(dir, "combined.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	errFile, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		combined.Close()
		return nil, err
	}
	return &fileHook{combined: combined, errors: errFile}, nil
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(e *logrus.Entry) error {
	line, err := h.formatter.Format(e)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.combined.Write(line); err != nil {
		return err
	}
	if entryLevel(e) <= LevelError {
		if _, err := h.errors.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func (h *fileHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.combined.Close()
	h.errors.Close()
}
