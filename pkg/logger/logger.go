// Package logger provides the bot's logging system on top of logrus.
// Every entry goes to the console with colors, to log files, and optionally to Discord webhooks.
package logger

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
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

const (
	fieldLevel  = "level_name"
	fieldPrefix = "prefix"
	timeFormat  = "2006-01-02 15:04:05"
	colorReset  = "\033[0m"
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
		return colorReset
	}
}

// DiscordColor returns the Discord embed color for the log level
func (l LogLevel) DiscordColor() int {
	switch l {
	case LevelCritical, LevelError:
		return 0xFF0000 // Red
	case LevelWarn:
		return 0xFFFF00 // Yellow
	case LevelSuccess:
		return 0x00FF00 // Green
	case LevelInfo:
		return 0x0000FF // Blue
	case LevelDebug:
		return 0x800080 // Purple
	case LevelSystem:
		return 0x808080 // Grey
	default:
		return 0xFFFFFF // White
	}
}

// logrusLevel maps the bot level onto the closest logrus level
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

// isError reports whether the level belongs in error.log and the error webhook
func (l LogLevel) isError() bool {
	return l <= LevelError
}

func levelOf(entry *logrus.Entry) LogLevel {
	if lvl, ok := entry.Data[fieldLevel].(LogLevel); ok {
		return lvl
	}
	return LevelInfo
}

func prefixOf(entry *logrus.Entry) string {
	if p, ok := entry.Data[fieldPrefix].(string); ok {
		return p
	}
	return ""
}

// consoleFormatter renders "[time] [LEVEL] [prefix]: message", colored or plain
type consoleFormatter struct {
	colors bool
}

func (f *consoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := levelOf(entry)
	name := level.String()
	if f.colors {
		name = level.Color() + name + colorReset
	}
	line := fmt.Sprintf("[%s] [%s] [%s]: %s\n", entry.Time.Format(timeFormat), name, prefixOf(entry), entry.Message)
	return []byte(line), nil
}

// fileHook appends plain lines to combined.log, and error lines to error.log as well
type fileHook struct {
	formatter *consoleFormatter
	combined  *os.File
	errors    *os.File
	mu        sync.Mutex
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.combined != nil {
		_, _ = h.combined.Write(line)
	}
	if levelOf(entry).isError() && h.errors != nil {
		_, _ = h.errors.Write(line)
	}
	return nil
}

// webhookHook posts entries as Discord embeds
type webhookHook struct {
	errorURL string
	logsURL  string
	client   *http.Client
}

func (h *webhookHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *webhookHook) Fire(entry *logrus.Entry) error {
	level := levelOf(entry)

	url := h.logsURL
	if level.isError() {
		url = h.errorURL
	}
	if url == "" {
		return nil
	}

	go h.send(url, level, prefixOf(entry), entry.Message, entry.Time)
	return nil
}

func (h *webhookHook) send(url string, level LogLevel, prefix, message string, at time.Time) {
	payload := map[string]interface{}{
		"embeds": []interface{}{
			map[string]interface{}{
				"title":       fmt.Sprintf("[%s] %s", level.String(), prefix),
				"description": fmt.Sprintf("```%s```", message),
				"color":       level.DiscordColor(),
				"timestamp":   at.Format(time.RFC3339),
				"footer": map[string]string{
					"text": "CapsFriday Bot",
				},
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}

// Logger is the main logging structure
type Logger struct {
	logrus    *logrus.Logger
	logFile   *os.File
	errorFile *os.File
}

// logger is the global logger instance
var (
	logger *Logger
	once   sync.Once
)

// Init initializes the global logger instance
func Init(dir, errorWebhook, logsWebhook string) *Logger {
	once.Do(func() {
		logger = NewLogger(dir, errorWebhook, logsWebhook)
	})
	return logger
}

// Get returns the global logger instance
func Get() *Logger {
	// Use sync.Once to ensure thread-safe initialization if Init wasn't called
	once.Do(func() {
		logger = NewLogger("logs", "", "")
	})
	return logger
}

// NewLogger creates a new Logger writing its files under dir
func NewLogger(dir, errorWebhook, logsWebhook string) *Logger {
	l := &Logger{logrus: logrus.New()}

	l.logrus.SetOutput(os.Stdout)
	l.logrus.SetLevel(logrus.DebugLevel)
	l.logrus.SetFormatter(&consoleFormatter{colors: true})

	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Error creating logs directory: %v\n", err)
	}

	var err error
	l.logFile, err = os.OpenFile(filepath.Join(dir, "combined.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening combined log file: %v\n", err)
	}

	l.errorFile, err = os.OpenFile(filepath.Join(dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Printf("Error opening error log file: %v\n", err)
	}

	l.logrus.AddHook(&fileHook{
		formatter: &consoleFormatter{colors: false},
		combined:  l.logFile,
		errors:    l.errorFile,
	})

	if errorWebhook != "" || logsWebhook != "" {
		l.logrus.AddHook(&webhookHook{
			errorURL: errorWebhook,
			logsURL:  logsWebhook,
			client:   &http.Client{Timeout: 5 * time.Second},
		})
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
	if l.logFile != nil {
		l.logFile.Close()
	}
	if l.errorFile != nil {
		l.errorFile.Close()
	}
}

// Logging methods

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
