// Package errors provides the anti-crash handler for the bot.
// Recovered panics are counted; too many inside one interval shut the bot down.
package errors

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/goccy/go-json"
)

// Options tunes the ErrorHandler thresholds
type Options struct {
	MaxErrors     int32
	ResetInterval time.Duration
	CheckInterval time.Duration
	// Exit terminates the process; defaults to os.Exit
	Exit func(code int)
}

// DefaultOptions returns 15 errors per 5 seconds, checked every second
func DefaultOptions() Options {
	return Options{
		MaxErrors:     15,
		ResetInterval: 5 * time.Second,
		CheckInterval: 1 * time.Second,
		Exit:          os.Exit,
	}
}

// ErrorHandler manages error counting and reporting
type ErrorHandler struct {
	errorCount   int32
	webhookURL   string
	stopChan     chan struct{}
	stopOnce     sync.Once
	shutdownFunc func()
	opts         Options
	client       *http.Client
}

// ReportErrorOptions contains options for reporting an error
type ReportErrorOptions struct {
	Error   string
	Message string
}

var (
	handler *ErrorHandler
	once    sync.Once
)

// Init initializes the global error handler
func Init(webhookURL string, shutdownFunc func()) *ErrorHandler {
	once.Do(func() {
		handler = NewErrorHandler(webhookURL, shutdownFunc, DefaultOptions())
	})
	return handler
}

// Get returns the global error handler instance
func Get() *ErrorHandler {
	return handler
}

// NewErrorHandler creates a new ErrorHandler and starts monitoring
func NewErrorHandler(webhookURL string, shutdownFunc func(), opts Options) *ErrorHandler {
	def := DefaultOptions()
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = def.MaxErrors
	}
	if opts.ResetInterval <= 0 {
		opts.ResetInterval = def.ResetInterval
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = def.CheckInterval
	}
	if opts.Exit == nil {
		opts.Exit = def.Exit
	}

	h := &ErrorHandler{
		webhookURL:   webhookURL,
		stopChan:     make(chan struct{}),
		shutdownFunc: shutdownFunc,
		opts:         opts,
		client:       &http.Client{Timeout: 10 * time.Second},
	}

	h.start()
	return h
}

// start begins the error monitoring goroutines
func (h *ErrorHandler) start() {
	// Reset the counter every interval
	go func() {
		ticker := time.NewTicker(h.opts.ResetInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				atomic.StoreInt32(&h.errorCount, 0)
			case <-h.stopChan:
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(h.opts.CheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if h.Count() > h.opts.MaxErrors {
					h.shutdown()
					return
				}
			case <-h.stopChan:
				return
			}
		}
	}()
}

func (h *ErrorHandler) shutdown() {
	start := time.Now()
	logger.Warn("Se detectó un número demasiado alto de errores", "CRITICAL")
	logger.Warn("Apagando...", "CRITICAL")

	h.Report(ReportErrorOptions{
		Error:   "Critical Error",
		Message: "Número inusual de errores. Apagando...",
	})

	if h.shutdownFunc != nil {
		h.shutdownFunc()
	}

	logger.Warn(fmt.Sprintf("Finalizando proceso... Tiempo total: %v", time.Since(start)), "CRITICAL")
	h.opts.Exit(1)
}

// Stop stops the error monitoring goroutines
func (h *ErrorHandler) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

// Count returns the errors counted in the current interval
func (h *ErrorHandler) Count() int32 {
	return atomic.LoadInt32(&h.errorCount)
}

// IncrementError increments the error count
func (h *ErrorHandler) IncrementError() {
	count := atomic.AddInt32(&h.errorCount, 1)
	logger.Error(fmt.Sprintf("Error count: %d", count), "AntiCrash")
}

// HandlePanic handles a recovered panic
func (h *ErrorHandler) HandlePanic(recovered interface{}) {
	h.IncrementError()
	logger.Debug("Unhandled Panic/Catch", "AntiCrash")
	logger.Error(fmt.Sprintf("%v", recovered), "SYS")
}

// Report sends an error report to the Discord webhook
func (h *ErrorHandler) Report(data ReportErrorOptions) {
	if h.webhookURL == "" {
		return
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{
			map[string]interface{}{
				"author": map[string]string{
					"name": fmt.Sprintf("Error %s", data.Error),
				},
				"description": data.Message,
				"color":       0xFF0000, // Red
				"footer": map[string]string{
					"text": "CapsFriday Bot",
				},
				"timestamp": time.Now().Format(time.RFC3339),
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to marshal error report: %v", err), "AntiCrash")
		return
	}

	req, err := http.NewRequest(http.MethodPost, h.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to create webhook request: %v", err), "AntiCrash")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send error report: %v", err), "AntiCrash")
		return
	}
	defer resp.Body.Close()

	logger.Warn(fmt.Sprintf("Sent ErrorReport to Webhook, Status: %d", resp.StatusCode), "AntiCrash")
}

// RecoverMiddleware returns a recovery function for use in deferred calls:
//
//	defer errors.RecoverMiddleware()()
func RecoverMiddleware() func() {
	return func() {
		if r := recover(); r != nil {
			if handler != nil {
				handler.HandlePanic(r)
			} else {
				logger.Error(fmt.Sprintf("Panic recovered (no handler): %v", r), "AntiCrash")
			}
		}
	}
}
