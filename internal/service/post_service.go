package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "herstory/internal/errors"
	"herstory/internal/model"
	"herstory/internal/repository"
)

// PostService exposes blog post operations. Reads are public; the HTTP
// layer gates writes.
type PostService interface {
	List(ctx context.Context) ([]model.BlogPost, error)
	Get(ctx context.Context, id string) (*model.BlogPost, error)
	Create(ctx context.Context, in model.PostInput) (*model.BlogPost, error)
	Update(ctx context.Context, id string, in model.PostInput) (*model.BlogPost, error)
	Delete(ctx context.Context, id string) error
}

type postService struct {
	repo repository.PostRepository
}

// NewPostService creates a new post service.
func NewPostService(repo repository.PostRepository) PostService {
	return &postService{repo: repo}
}

// parsePostID treats an unparseable id as an unknown post.
func parsePostID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperrors.ErrPostNotFound
	}
	return parsed, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrPostNotFound
	}
	return err
}

func (s *postService) List(ctx context.Context) ([]model.BlogPost, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id string) (*model.BlogPost, error) {
	postID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return post, nil
}

// Create validates the input before touching the datastore.
func (s *postService) Create(ctx context.Context, in model.PostInput) (*model.BlogPost, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	post := &model.BlogPost{}
	post.Apply(in)
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Update replaces all fields of an existing post in one transaction.
func (s *postService) Update(ctx context.Context, id string, in model.PostInput) (*model.BlogPost, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	postID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	var updated *model.BlogPost
	err = s.repo.WithTransaction(ctx, func(ctx context.Context, txRepo repository.PostRepository) error {
		post, err := txRepo.FindByID(ctx, postID)
		if err != nil {
			return mapNotFound(err)
		}
		post.Apply(in)
		if err := txRepo.Update(ctx, post); err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *postService) Delete(ctx context.Context, id string) error {
	postID, err := parsePostID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		return mapNotFound(err)
	}
	return nil
}
