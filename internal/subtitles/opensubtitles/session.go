package opensubtitles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go"

	"subfetch/internal/logging"
	"subfetch/internal/query"
	"subfetch/internal/subtitles"
)

// Default retry budgets.
const (
	DefaultLoginAttempts = 3
	DefaultQueryAttempts = 2
	DefaultRetryDelay    = 2 * time.Second
)

var (
	// ErrLogin means no session could be established. It is fatal to a run.
	ErrLogin = errors.New("opensubtitles: login failed")
	// ErrQueryFailed means a search exhausted its attempt budget.
	ErrQueryFailed = errors.New("opensubtitles: query failed")
	// ErrNotLoggedIn is returned by Search outside the LoggedIn state.
	ErrNotLoggedIn = errors.New("opensubtitles: not logged in")
	// ErrInvalidState is returned by Login when a session is active or
	// being established.
	ErrInvalidState = errors.New("opensubtitles: invalid session state")
)

// State is a session lifecycle state.
type State int

const (
	StateLoggedOut State = iota
	StateLoggingIn
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged-out"
	case StateLoggingIn:
		return "logging-in"
	case StateLoggedIn:
		return "logged-in"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SessionOptions sets the retry budgets for a Session.
type SessionOptions struct {
	LoginAttempts int
	QueryAttempts int
	RetryDelay    time.Duration
	Logger        *slog.Logger
}

// Session owns the process-wide catalog token. It moves
// LoggedOut -> LoggingIn -> LoggedIn -> LoggedOut and is safe for
// concurrent use.
type Session struct {
	client        *Client
	loginAttempts uint
	queryAttempts uint
	retryDelay    time.Duration
	logger        *slog.Logger

	mu    sync.Mutex
	state State
	token string
}

// NewSession wraps client with the given retry budgets. Non-positive
// budgets fall back to the defaults.
func NewSession(client *Client, opts SessionOptions) *Session {
	login := opts.LoginAttempts
	if login <= 0 {
		login = DefaultLoginAttempts
	}
	queryBudget := opts.QueryAttempts
	if queryBudget <= 0 {
		queryBudget = DefaultQueryAttempts
	}
	delay := opts.RetryDelay
	if delay < 0 {
		delay = 0
	}
	return &Session{
		client:        client,
		loginAttempts: uint(login),
		queryAttempts: uint(queryBudget),
		retryDelay:    delay,
		logger:        logging.NewComponentLogger(opts.Logger, "opensubtitles"),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Login acquires a token. Transient failures are retried within the login
// budget; a non-OK status ends the attempt immediately.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateLoggedOut {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: login from %s", ErrInvalidState, state)
	}
	s.state = StateLoggingIn
	s.mu.Unlock()

	var token string
	err := retry.Do(
		func() error {
			resp, err := s.client.LogIn(ctx)
			if err != nil {
				return err
			}
			if status := statusOf(resp); status != StatusOK {
				return retry.Unrecoverable(fmt.Errorf("status %q", status))
			}
			tok, _ := resp["token"].(string)
			if tok == "" {
				return retry.Unrecoverable(errors.New("response has no token"))
			}
			token = tok
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.loginAttempts),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return retry.IsRecoverable(err) && IsRetriable(err) }),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("login attempt failed",
				logging.Int("attempt", int(n)+1),
				logging.Int("budget", int(s.loginAttempts)),
				logging.Error(err),
			)
		}),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateLoggedOut
		s.token = ""
		return fmt.Errorf("%w: %w", ErrLogin, err)
	}
	s.state = StateLoggedIn
	s.token = token
	s.logger.Debug("logged in", logging.String("language", s.client.Language()))
	return nil
}

// Search runs one request within the query budget. A non-OK status or a
// transport error consumes an attempt; once the budget is spent the error
// wraps ErrQueryFailed.
func (s *Session) Search(ctx context.Context, req query.Request) ([]subtitles.Candidate, error) {
	token, err := s.currentToken()
	if err != nil {
		return nil, err
	}

	var candidates []subtitles.Candidate
	err = retry.Do(
		func() error {
			resp, err := s.client.SearchSubtitles(ctx, token, []map[string]any{req.Params()})
			if err != nil {
				return err
			}
			if status := statusOf(resp); status != StatusOK {
				return fmt.Errorf("status %q", status)
			}
			candidates = nil
			if records, ok := resp["data"].([]any); ok {
				candidates = subtitles.FromRecords(records)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.queryAttempts),
		retry.Delay(s.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return !errors.Is(err, context.Canceled) }),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Debug("search attempt failed",
				logging.String("request", req.String()),
				logging.Int("attempt", int(n)+1),
				logging.Error(err),
			)
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrQueryFailed, req.String(), err)
	}
	return candidates, nil
}

// Logout releases the token. It is a no-op unless logged in.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateLoggedIn {
		s.mu.Unlock()
		return nil
	}
	token := s.token
	s.token = ""
	s.state = StateLoggedOut
	s.mu.Unlock()

	if _, err := s.client.LogOut(ctx, token); err != nil {
		return fmt.Errorf("opensubtitles: logout: %w", err)
	}
	s.logger.Debug("logged out")
	return nil
}

func (s *Session) currentToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoggedIn {
		return "", fmt.Errorf("%w (state %s)", ErrNotLoggedIn, s.state)
	}
	return s.token, nil
}
