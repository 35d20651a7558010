package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Color returns ANSI color codes for terminal output
func (l LogLevel) Color() string {
	switch l {
	case DEBUG:
		return "\033[36m"
	case INFO:
		return "\033[38;5;195m"
	case WARN:
		return "\033[33m"
	case ERROR:
		return "\033[31m"
	case FATAL:
		return "\033[35m"
	default:
		return "\033[0m"
	}
}

// Logger is a leveled logger with an optional component prefix
type Logger struct {
	mu          sync.RWMutex
	level       LogLevel
	output      io.Writer
	prefix      string
	enableColor bool
	logger      *log.Logger
	exit        func(int)
}

// Config holds logger configuration options
type Config struct {
	Level       string // "debug", "info", "warn", "error", "fatal"
	Output      io.Writer
	Prefix      string
	EnableColor bool
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Output:      os.Stdout,
		EnableColor: true,
	}
}

// ParseLevel converts a string level to LogLevel
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// New creates a new Logger instance
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	return &Logger{
		level:       ParseLevel(config.Level),
		output:      config.Output,
		prefix:      config.Prefix,
		enableColor: config.EnableColor,
		logger:      log.New(config.Output, "", 0),
		exit:        os.Exit,
	}
}

// NewDefault creates a logger with default configuration
func NewDefault() *Logger {
	return New(DefaultConfig())
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output destination
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.logger.SetOutput(w)
}

// IsLevelEnabled checks if the given level is enabled
func (l *Logger) IsLevelEnabled(level LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *Logger) formatMessage(level LogLevel, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	var colorStart, colorEnd string
	if l.enableColor {
		colorStart = level.Color()
		colorEnd = "\033[0m"
	}

	prefix := ""
	if l.prefix != "" {
		prefix = fmt.Sprintf("[%s] ", l.prefix)
	}

	return fmt.Sprintf("%s%-5s %s %-30s%s%s",
		colorStart,
		level.String(),
		timestamp,
		prefix,
		message,
		colorEnd,
	)
}

// formatFields renders alternating key/value pairs as "k=v" tokens.
// A dangling key is rendered with the value "MISSING".
func formatFields(keysAndValues []interface{}) string {
	if len(keysAndValues) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		b.WriteByte(' ')
		key := fmt.Sprint(keysAndValues[i])
		var value interface{} = "MISSING"
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		s := fmt.Sprint(value)
		if strings.ContainsAny(s, " \t") {
			s = fmt.Sprintf("%q", s)
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(s)
	}
	return b.String()
}

func (l *Logger) emit(level LogLevel, message string) {
	if !l.IsLevelEnabled(level) {
		return
	}

	formatted := l.formatMessage(level, message)

	l.mu.RLock()
	l.logger.Print(formatted)
	exit := l.exit
	l.mu.RUnlock()

	if level == FATAL {
		exit(1)
	}
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(args ...interface{}) { l.emit(DEBUG, fmt.Sprint(args...)) }

// Debugf logs a formatted message at DEBUG level
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.emit(DEBUG, fmt.Sprintf(format, args...))
}

// Info logs a message at INFO level
func (l *Logger) Info(args ...interface{}) { l.emit(INFO, fmt.Sprint(args...)) }

// Infof logs a formatted message at INFO level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.emit(INFO, fmt.Sprintf(format, args...))
}

// Warn logs a message at WARN level
func (l *Logger) Warn(args ...interface{}) { l.emit(WARN, fmt.Sprint(args...)) }

// Warnf logs a formatted message at WARN level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.emit(WARN, fmt.Sprintf(format, args...))
}

// Error logs a message at ERROR level
func (l *Logger) Error(args ...interface{}) { l.emit(ERROR, fmt.Sprint(args...)) }

// Errorf logs a formatted message at ERROR level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.emit(ERROR, fmt.Sprintf(format, args...))
}

// Fatal logs a message at FATAL level and exits the program
func (l *Logger) Fatal(args ...interface{}) { l.emit(FATAL, fmt.Sprint(args...)) }

// Fatalf logs a formatted message at FATAL level and exits the program
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.emit(FATAL, fmt.Sprintf(format, args...))
}

// Infow logs a message with key/value fields at INFO level
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.emit(INFO, msg+formatFields(keysAndValues))
}

// Warnw logs a message with key/value fields at WARN level
func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.emit(WARN, msg+formatFields(keysAndValues))
}

// Errorw logs a message with key/value fields at ERROR level
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.emit(ERROR, msg+formatFields(keysAndValues))
}

// WithPrefix returns a new logger with the specified prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	newPrefix := prefix
	if l.prefix != "" {
		newPrefix = l.prefix + ":" + prefix
	}

	return &Logger{
		level:       l.level,
		output:      l.output,
		prefix:      newPrefix,
		enableColor: l.enableColor,
		logger:      log.New(l.output, "", 0),
		exit:        l.exit,
	}
}
