package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"herstory/internal/model"
	"herstory/internal/testutil"
)

func newPost(title, date string) *model.BlogPost {
	return &model.BlogPost{
		Title:   title,
		Excerpt: title + " excerpt",
		Content: title + " content",
		Date:    date,
		Theme:   "Tech, law & policy",
		Author:  "Henrietta Marie Foray",
	}
}

func TestPostRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testutil.NewDB(t))

	post := newPost("Hello", "2025-01-01")
	require.NoError(t, repo.Create(ctx, post))
	assert.NotEqual(t, uuid.Nil, post.ID)

	found, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Input(), found.Input())
	assert.Equal(t, post.ID, found.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPostRepository_ListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testutil.NewDB(t))

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, p := range []*model.BlogPost{
		newPost("january", "2025-01-01"),
		newPost("march", "2025-03-01"),
		newPost("february", "2025-02-01"),
		newPost("march again", "2025-03-01"),
	} {
		require.NoError(t, repo.Create(ctx, p))
	}

	posts, err := repo.List(ctx)
	require.NoError(t, err)

	titles := make([]string, 0, len(posts))
	for _, p := range posts {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"march", "march again", "february", "january"}, titles)
}

func TestPostRepository_UpdateInTransaction(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testutil.NewDB(t))

	post := newPost("Draft", "2025-01-01")
	require.NoError(t, repo.Create(ctx, post))

	err := repo.WithTransaction(ctx, func(ctx context.Context, tx PostRepository) error {
		existing, err := tx.FindByID(ctx, post.ID)
		if err != nil {
			return err
		}
		existing.Title = "Final"
		existing.Date = "2025-06-01"
		return tx.Update(ctx, existing)
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", found.Title)
	assert.Equal(t, "2025-06-01", found.Date)

	rollback := errors.New("rollback")
	err = repo.WithTransaction(ctx, func(ctx context.Context, tx PostRepository) error {
		existing, err := tx.FindByID(ctx, post.ID)
		if err != nil {
			return err
		}
		existing.Title = "Discarded"
		if err := tx.Update(ctx, existing); err != nil {
			return err
		}
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	found, err = repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", found.Title)
}

func TestPostRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testutil.NewDB(t))

	post := newPost("Gone", "2025-01-01")
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, repo.Delete(ctx, post.ID))
	assert.ErrorIs(t, repo.Delete(ctx, post.ID), gorm.ErrRecordNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostRepository_CreateMany(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository(testutil.NewDB(t))

	require.NoError(t, repo.CreateMany(ctx, nil))
	require.NoError(t, repo.CreateMany(ctx, []model.BlogPost{
		*newPost("a", "2025-01-15"),
		*newPost("b", "2025-01-08"),
	}))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
