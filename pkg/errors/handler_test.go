package errors

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestIncrementAndReset(t *testing.T) {
	h := NewErrorHandler("", nil, Options{
		MaxErrors:     100,
		ResetInterval: 50 * time.Millisecond,
		CheckInterval: time.Hour,
		Exit:          func(int) { t.Error("exit should not be called") },
	})
	defer h.Stop()

	h.IncrementError()
	h.IncrementError()
	if got := h.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := h.Count(); got != 0 {
		t.Errorf("Count() after reset = %d, want 0", got)
	}
}

func TestShutdownOnTooManyErrors(t *testing.T) {
	exited := make(chan int, 1)
	shutdownCalled := make(chan struct{}, 1)

	h := NewErrorHandler("", func() { shutdownCalled <- struct{}{} }, Options{
		MaxErrors:     2,
		ResetInterval: time.Hour,
		CheckInterval: 10 * time.Millisecond,
		Exit:          func(code int) { exited <- code },
	})
	defer h.Stop()

	for i := 0; i < 3; i++ {
		h.IncrementError()
	}

	select {
	case code := <-exited:
		if code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not shut down")
	}

	select {
	case <-shutdownCalled:
	default:
		t.Error("shutdown func was not called before exiting")
	}
}

func TestRecoverMiddleware(t *testing.T) {
	handler = NewErrorHandler("", nil, Options{
		MaxErrors:     100,
		ResetInterval: time.Hour,
		CheckInterval: time.Hour,
		Exit:          func(int) {},
	})
	defer func() {
		handler.Stop()
		handler = nil
	}()

	func() {
		defer RecoverMiddleware()()
		panic("boom")
	}()

	if got := handler.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1 after a recovered panic", got)
	}
}

func TestRecoverMiddlewareWithoutHandler(t *testing.T) {
	handler = nil

	func() {
		defer RecoverMiddleware()()
		panic("no handler")
	}()
}

func TestReport(t *testing.T) {
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		bodies <- string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := NewErrorHandler(srv.URL, nil, Options{ResetInterval: time.Hour, CheckInterval: time.Hour})
	defer h.Stop()

	h.Report(ReportErrorOptions{Error: "Storage", Message: "mongo unreachable"})

	body := <-bodies
	if !strings.Contains(body, "Error Storage") || !strings.Contains(body, "mongo unreachable") {
		t.Errorf("unexpected report body: %s", body)
	}
}
