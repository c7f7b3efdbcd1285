package opensubtitles

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), false},
		{"deadline", fmt.Errorf("wrap: %w", context.DeadlineExceeded), true},
		{"throttled", &StatusError{Method: "LogIn", Code: http.StatusTooManyRequests}, true},
		{"unavailable", fmt.Errorf("wrap: %w", &StatusError{Method: "LogIn", Code: http.StatusServiceUnavailable}), true},
		{"forbidden", &StatusError{Method: "LogIn", Code: http.StatusForbidden}, false},
		{"fault", &Fault{Code: 401, Message: "Unauthorized"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetriable(tt.err); got != tt.want {
				t.Fatalf("IsRetriable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Method: "SearchSubtitles", Code: http.StatusBadGateway, Body: "upstream"}
	want := "opensubtitles: SearchSubtitles failed (502 Bad Gateway): upstream"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestPauseStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := pause(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("pause ignored cancellation")
	}
}
