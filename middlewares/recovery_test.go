package middlewares

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/kbukum/reqmw/middleware"
)

func TestRecovery(t *testing.T) {
	log, buf := bufferLogger()
	boom := middleware.Func(func(*http.Request, *middleware.Extensions, middleware.Next) (*http.Response, error) {
		panic("kaboom")
	})

	resp, err := run(newRequest(t, http.MethodGet, "https://api.example.com/"), Recovery(log), boom)
	if resp != nil {
		t.Error("expected no response")
	}
	if !middleware.IsMiddleware(err) || !errors.Is(err, ErrPanic) {
		t.Fatalf("expected a recovery middleware error, got %v", err)
	}
	var me *middleware.Error
	if errors.As(err, &me) && me.Stage != StageRecovery {
		t.Errorf("stage = %q", me.Stage)
	}
	if !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("expected panic value in error, got %q", err)
	}
	if !strings.Contains(buf.String(), "Panic recovered") {
		t.Errorf("expected a log entry, got %q", buf.String())
	}
}

func TestRecovery_PassThrough(t *testing.T) {
	up := newUpstream(http.StatusTeapot)
	resp, err := run(newRequest(t, http.MethodGet, "https://api.example.com/"), Recovery(nil), up)
	if err != nil || resp.StatusCode != http.StatusTeapot {
		t.Errorf("expected upstream response, got %v %v", resp, err)
	}
}
