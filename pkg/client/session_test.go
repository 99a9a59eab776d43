package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "6f1c1f7e-1b9e-4c47-9a4f-1f7f0e3d2c11",
		IssuedAt:  jwt.NewNumericDate(exp.Add(-7 * 24 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("client-side-secret-is-irrelevant"))
	require.NoError(t, err)
	return token
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newSession(t *testing.T, stored string, c *clock) (*Session, *MemoryTokenStore) {
	t.Helper()
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save(stored))
	s, err := NewSession(store, WithSessionClock(c.Now))
	require.NoError(t, err)
	return s, store
}

func TestNewSession_Hydrates(t *testing.T) {
	c := &clock{now: epoch}
	token := tokenExpiringAt(t, epoch.Add(time.Hour))

	s, _ := newSession(t, token, c)
	st := s.State()
	assert.Equal(t, token, st.Token)
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.LastError)
}

func TestNewSession_DiscardsExpiringToken(t *testing.T) {
	c := &clock{now: epoch}

	for name, token := range map[string]string{
		"expired":       tokenExpiringAt(t, epoch.Add(-time.Minute)),
		"inside buffer": tokenExpiringAt(t, epoch.Add(30*time.Second)),
		"garbage":       "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			s, store := newSession(t, token, c)
			assert.False(t, s.State().IsAuthenticated)
			assert.Empty(t, s.State().Token)
			stored, _ := store.Load()
			assert.Empty(t, stored)
		})
	}
}

func TestSession_TokenClearsOnceInsideBuffer(t *testing.T) {
	c := &clock{now: epoch}
	token := tokenExpiringAt(t, epoch.Add(5*time.Minute))
	s, store := newSession(t, token, c)

	assert.Equal(t, token, s.Token())

	c.now = epoch.Add(4*time.Minute + 1*time.Second)
	assert.False(t, s.State().IsAuthenticated)
	assert.Empty(t, s.Token())
	stored, _ := store.Load()
	assert.Empty(t, stored)
}

func TestSession_CheckExpiry(t *testing.T) {
	c := &clock{now: epoch}
	s, _ := newSession(t, tokenExpiringAt(t, epoch.Add(time.Hour)), c)

	assert.False(t, s.CheckExpiry())
	assert.True(t, s.State().IsAuthenticated)

	c.now = epoch.Add(time.Hour)
	assert.True(t, s.CheckExpiry())
	st := s.State()
	assert.False(t, st.IsAuthenticated)
	assert.Equal(t, "session expired", st.LastError)
}

func TestSession_CheckExpirySkipsInFlightLogin(t *testing.T) {
	c := &clock{now: epoch}
	s, store := newSession(t, tokenExpiringAt(t, epoch.Add(time.Hour)), c)
	c.now = epoch.Add(2 * time.Hour)

	s.begin()
	assert.True(t, s.State().IsLoading)
	assert.False(t, s.CheckExpiry())

	fresh := tokenExpiringAt(t, c.now.Add(7*24*time.Hour))
	require.NoError(t, s.finish(fresh, nil))
	assert.False(t, s.CheckExpiry())

	st := s.State()
	assert.Equal(t, fresh, st.Token)
	assert.True(t, st.IsAuthenticated)
	assert.False(t, st.IsLoading)
	stored, _ := store.Load()
	assert.Equal(t, fresh, stored)
}

func TestSession_FinishWithErrors(t *testing.T) {
	c := &clock{now: epoch}
	token := tokenExpiringAt(t, epoch.Add(time.Hour))

	s, _ := newSession(t, token, c)
	s.begin()
	err := s.finish("", &Error{Kind: KindTimeout, Message: "request timed out"})
	require.Error(t, err)
	assert.Equal(t, token, s.State().Token)
	assert.Contains(t, s.State().LastError, "timed out")

	s.begin()
	err = s.finish("", &Error{Kind: KindUnauthorized, Status: 401, Message: "unauthorized: invalid token"})
	require.Error(t, err)
	assert.Empty(t, s.State().Token)
}

type failingStore struct{ MemoryTokenStore }

func (f *failingStore) Save(string) error { return errors.New("disk full") }

func TestSession_FinishReportsPersistFailure(t *testing.T) {
	c := &clock{now: epoch}
	s, err := NewSession(&failingStore{}, WithSessionClock(c.Now))
	require.NoError(t, err)

	s.begin()
	err = s.finish(tokenExpiringAt(t, epoch.Add(time.Hour)), nil)
	assert.ErrorContains(t, err, "disk full")
	assert.True(t, s.State().IsAuthenticated)
}

func TestSession_Logout(t *testing.T) {
	c := &clock{now: epoch}
	s, store := newSession(t, tokenExpiringAt(t, epoch.Add(time.Hour)), c)

	require.NoError(t, s.Logout())
	assert.Equal(t, State{}, s.State())
	stored, _ := store.Load()
	assert.Empty(t, stored)
}

func TestSession_StartExpiryWatch(t *testing.T) {
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save(tokenExpiringAt(t, time.Now().Add(2*time.Second))))
	s, err := NewSession(store, WithExpiryBuffer(500*time.Millisecond))
	require.NoError(t, err)
	require.True(t, s.State().IsAuthenticated)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartExpiryWatch(ctx, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		return s.State().Token == ""
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "session expired", s.State().LastError)
}

func TestSession_StartExpiryWatchNonPositiveInterval(t *testing.T) {
	s, _ := newSession(t, tokenExpiringAt(t, epoch.Add(time.Hour)), &clock{now: epoch})

	ctx, cancel := context.WithCancel(context.Background())
	assert.NotPanics(t, func() {
		s.StartExpiryWatch(ctx, 0)
		s.StartExpiryWatch(ctx, -time.Second)
	})
	cancel()
	assert.True(t, s.State().IsAuthenticated)
}
