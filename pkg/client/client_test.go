package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herstory/internal/app"
	"herstory/internal/config"
	"herstory/internal/repository"
	"herstory/internal/service"
	"herstory/internal/testutil"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	gormDB := testutil.NewDB(t)
	provisioner := service.NewProvisioner(repository.NewAdminRepository(gormDB), repository.NewPostRepository(gormDB))
	_, _, err := provisioner.EnsureAdmin(context.Background(), "admin", "password123")
	require.NoError(t, err)

	srv := httptest.NewServer(app.New(&config.Config{JWTSecret: "client-test-secret"}, gormDB))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	session, err := NewSession(&MemoryTokenStore{})
	require.NoError(t, err)
	return New(baseURL, session, opts...)
}

func form(title, date string) PostForm {
	return PostForm{
		Title:   title,
		Excerpt: "Excerpt",
		Content: "Content",
		Date:    date,
		Theme:   "Courage",
		Author:  "Henrietta Marie Foray",
	}
}

func TestClient_EndToEnd(t *testing.T) {
	srv := newAPIServer(t)
	c := newClient(t, srv.URL+"/api")
	ctx := context.Background()

	_, err := c.Login(ctx, "admin", "wrong")
	assert.True(t, IsKind(err, KindUnauthorized))
	assert.False(t, c.Session().State().IsAuthenticated)

	user, err := c.Login(ctx, "admin", "password123")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.True(t, c.Session().State().IsAuthenticated)

	verified, err := c.Verify(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)

	first, err := c.CreatePost(ctx, form("First", "2025-01-08"))
	require.NoError(t, err)
	second, err := c.CreatePost(ctx, form("Second", "2025-01-15"))
	require.NoError(t, err)

	posts, err := c.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)

	edit := FormFromPost(first)
	edit.Title = "First, edited"
	updated, err := c.UpdatePost(ctx, first.ID.String(), edit)
	require.NoError(t, err)
	assert.Equal(t, "First, edited", updated.Title)

	require.NoError(t, c.DeletePost(ctx, first.ID.String()))
	_, err = c.GetPost(ctx, first.ID.String())
	assert.True(t, IsKind(err, KindNotFound))
	assert.True(t, c.Session().State().IsAuthenticated)

	res, err := c.Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.False(t, res.AlreadySubscribed)
	res, err = c.Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.True(t, res.AlreadySubscribed)

	require.NoError(t, c.Logout())
	err = c.DeletePost(ctx, second.ID.String())
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestClient_LocalChecksSkipTheNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	_, err := c.CreatePost(context.Background(), form("No token", "2025-01-01"))
	assert.True(t, IsKind(err, KindUnauthorized))

	_, err = c.CreatePost(context.Background(), form("Bad date", "January 1st"))
	require.True(t, IsKind(err, KindValidation))
	assert.Contains(t, err.Error(), "Date must be in YYYY-MM-DD format")

	assert.Zero(t, atomic.LoadInt32(&hits))
}

func loggedInClient(t *testing.T, baseURL string, opts ...Option) (*Client, string) {
	t.Helper()
	token := tokenExpiringAt(t, time.Now().Add(time.Hour))
	store := &MemoryTokenStore{}
	require.NoError(t, store.Save(token))
	session, err := NewSession(store)
	require.NoError(t, err)
	return New(baseURL, session, opts...), token
}

func TestClient_UnauthorizedClearsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized: invalid token","code":"UNAUTHENTICATED"}`))
	}))
	defer srv.Close()

	c, token := loggedInClient(t, srv.URL)
	err := c.DeletePost(context.Background(), "6f1c1f7e-1b9e-4c47-9a4f-1f7f0e3d2c11")

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindUnauthorized, ce.Kind)
	assert.Equal(t, http.StatusUnauthorized, ce.Status)
	assert.Equal(t, "UNAUTHENTICATED", ce.Code)
	assert.Equal(t, "unauthorized: invalid token", ce.Message)
	assert.Equal(t, "Bearer "+token, gotAuth)

	st := c.Session().State()
	assert.False(t, st.IsAuthenticated)
	assert.Empty(t, st.Token)
	assert.NotEmpty(t, st.LastError)
}

func TestClient_TimeoutKeepsToken(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, token := loggedInClient(t, srv.URL, WithTimeout(50*time.Millisecond))
	err := c.DeletePost(context.Background(), "6f1c1f7e-1b9e-4c47-9a4f-1f7f0e3d2c11")

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindTimeout, ce.Kind)
	assert.True(t, ce.Transient())
	assert.Equal(t, token, c.Session().State().Token)
	assert.True(t, c.Session().State().IsAuthenticated)
}

func TestClient_UnreachableKeepsToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, token := loggedInClient(t, url)
	_, err := c.Verify(context.Background())

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindUnreachable, ce.Kind)
	assert.Equal(t, token, c.Session().State().Token)
	assert.False(t, c.Session().State().IsLoading)
}

func TestClient_StatusKinds(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   Kind
	}{
		{http.StatusBadRequest, `{"error":"Title is required","code":"VALIDATION_ERROR"}`, KindValidation},
		{http.StatusNotFound, `{"error":"post not found","code":"POST_NOT_FOUND"}`, KindNotFound},
		{http.StatusInternalServerError, `{"error":"internal server error","code":"INTERNAL_ERROR"}`, KindServer},
		{http.StatusBadGateway, `<html>bad gateway</html>`, KindServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, token := loggedInClient(t, srv.URL)
			_, err := c.GetPost(context.Background(), "6f1c1f7e-1b9e-4c47-9a4f-1f7f0e3d2c11")
			assert.True(t, IsKind(err, tt.want), err)
			assert.Equal(t, token, c.Session().State().Token)
		})
	}
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.ListPosts(context.Background())
	assert.True(t, IsKind(err, KindDecode))
}
