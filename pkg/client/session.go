package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultWatchInterval is used by StartExpiryWatch for a non-positive interval.
const DefaultWatchInterval = 30 * time.Second

// DefaultExpiryBuffer is how close to its exp a token may get before the
// session stops presenting it.
const DefaultExpiryBuffer = 60 * time.Second

// State is a snapshot of the session.
type State struct {
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	LastError       string
}

// Session holds the bearer token for one user of the API. It is hydrated
// from a TokenStore and safe for concurrent use.
type Session struct {
	store  TokenStore
	buffer time.Duration
	now    func() time.Time

	mu       sync.Mutex
	token    string
	inFlight int
	gen      uint64
	lastErr  string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithExpiryBuffer overrides DefaultExpiryBuffer.
func WithExpiryBuffer(d time.Duration) SessionOption {
	return func(s *Session) { s.buffer = d }
}

// WithSessionClock overrides the session's time source.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession loads any stored token. A stored token that is already within
// the expiry buffer is discarded.
func NewSession(store TokenStore, opts ...SessionOption) (*Session, error) {
	s := &Session{
		store:  store,
		buffer: DefaultExpiryBuffer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	token, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("hydrate session: %w", err)
	}
	s.token = token
	if token != "" && s.expiring(token) {
		if err := s.clearLocked(); err != nil {
			return nil, fmt.Errorf("hydrate session: %w", err)
		}
	}
	return s, nil
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Token:           s.token,
		IsAuthenticated: s.token != "" && !s.expiring(s.token),
		IsLoading:       s.inFlight > 0,
		LastError:       s.lastErr,
	}
}

// Token returns the token to present, or "" when there is none. A token
// inside the expiry buffer is cleared instead of returned.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return ""
	}
	if s.expiring(s.token) {
		_ = s.clearLocked()
		return ""
	}
	return s.token
}

// Logout forgets the token locally and in the store. The server keeps no
// session, so there is nothing to revoke remotely.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.lastErr = ""
	return s.clearLocked()
}

// CheckExpiry clears the token if it is inside the expiry buffer. It does
// nothing while a login or verify is in flight, or if one started or
// finished while the check ran. It reports whether the token was cleared.
func (s *Session) CheckExpiry() bool {
	s.mu.Lock()
	if s.inFlight > 0 || s.token == "" {
		s.mu.Unlock()
		return false
	}
	token, gen := s.token, s.gen
	s.mu.Unlock()

	if !s.expiring(token) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.inFlight > 0 || s.token != token {
		return false
	}
	_ = s.clearLocked()
	s.lastErr = "session expired"
	return true
}

// StartExpiryWatch runs CheckExpiry every interval until ctx is done. A
// non-positive interval means DefaultWatchInterval.
func (s *Session) StartExpiryWatch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CheckExpiry()
			}
		}
	}()
}

// begin marks a login or verify as in flight.
func (s *Session) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	s.gen++
	s.lastErr = ""
}

// finish ends an in-flight operation. On success a non-empty token replaces
// the held one; on failure the error is recorded and an unauthorized result
// clears the token.
func (s *Session) finish(token string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	s.gen++

	if err != nil {
		s.lastErr = err.Error()
		if IsKind(err, KindUnauthorized) {
			_ = s.clearLocked()
		}
		return err
	}
	if token == "" {
		return nil
	}
	s.token = token
	if saveErr := s.store.Save(token); saveErr != nil {
		s.lastErr = saveErr.Error()
		return fmt.Errorf("persist token: %w", saveErr)
	}
	return nil
}

// fail records an error from a call that is not a login or verify.
func (s *Session) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err.Error()
	if IsKind(err, KindUnauthorized) {
		s.gen++
		_ = s.clearLocked()
	}
}

func (s *Session) clearLocked() error {
	s.token = ""
	return s.store.Clear()
}

// expiring reports whether token is unreadable or expires within the buffer.
// The signature is not checked; the server remains the authority.
func (s *Session) expiring(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !s.now().Add(s.buffer).Before(claims.ExpiresAt.Time)
}
