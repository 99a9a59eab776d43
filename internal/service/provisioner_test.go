package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"herstory/internal/repository"
	"herstory/internal/testutil"
)

func TestProvisioner_EnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gormDB := testutil.NewDB(t)
	p := NewProvisioner(repository.NewAdminRepository(gormDB), repository.NewPostRepository(gormDB))

	admin, created, err := p.EnsureAdmin(ctx, "admin", "password123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("password123")))

	again, created, err := p.EnsureAdmin(ctx, "admin", "different")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	_, _, err = p.EnsureAdmin(ctx, "", "x")
	assert.Error(t, err)
}

func TestProvisioner_SeedPostsOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	gormDB := testutil.NewDB(t)
	postRepo := repository.NewPostRepository(gormDB)
	p := NewProvisioner(repository.NewAdminRepository(gormDB), postRepo)

	n, err := p.SeedPosts(ctx, SamplePosts())
	require.NoError(t, err)
	assert.Equal(t, len(SamplePosts()), n)

	n, err = p.SeedPosts(ctx, SamplePosts())
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := postRepo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(SamplePosts()), count)
}

func TestLoginAfterProvisioning(t *testing.T) {
	ctx := context.Background()
	gormDB := testutil.NewDB(t)
	adminRepo := repository.NewAdminRepository(gormDB)
	p := NewProvisioner(adminRepo, repository.NewPostRepository(gormDB))

	_, _, err := p.EnsureAdmin(ctx, "admin", "password123")
	require.NoError(t, err)

	svc := NewAuthService(adminRepo, newTestTokens())
	for _, pw := range []string{"wrong", "also wrong"} {
		_, _, err := svc.Login(ctx, "admin", pw)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	token, admin, err := svc.Login(ctx, "admin", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "admin", admin.Username)
}
