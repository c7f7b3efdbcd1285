package opensubtitles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// StatusError is returned when the endpoint answers with an HTTP error
// before any XML-RPC payload is decoded.
type StatusError struct {
	Method string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("opensubtitles: %s failed (%d %s)", e.Method, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("opensubtitles: %s failed (%d %s): %s", e.Method, e.Code, http.StatusText(e.Code), e.Body)
}

// IsRetriable reports whether err is worth another attempt: throttling,
// server-side failures, timeouts and dropped connections. Faults and
// malformed payloads are not.
func IsRetriable(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}
	var fault *Fault
	if errors.As(err, &fault) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// pause sleeps for d unless ctx ends first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
