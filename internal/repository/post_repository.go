package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"herstory/internal/model"
)

// PostRepository defines blog post persistence operations.
type PostRepository interface {
	Create(ctx context.Context, post *model.BlogPost) error
	CreateMany(ctx context.Context, posts []model.BlogPost) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BlogPost, error)
	List(ctx context.Context) ([]model.BlogPost, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, post *model.BlogPost) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo PostRepository) error) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new blog post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post.
func (r *postRepository) Create(ctx context.Context, post *model.BlogPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// CreateMany inserts posts in one statement, preserving slice order as
// insertion order.
func (r *postRepository) CreateMany(ctx context.Context, posts []model.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&posts).Error
}

// FindByID finds a post by its public ID.
func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BlogPost, error) {
	var post model.BlogPost
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns all posts, most recent date first, ties in insertion order.
func (r *postRepository) List(ctx context.Context) ([]model.BlogPost, error) {
	posts := make([]model.BlogPost, 0)
	if err := r.db.WithContext(ctx).Order("date DESC").Order("seq ASC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of stored posts.
func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.BlogPost{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Update overwrites every editable column of an existing post.
func (r *postRepository) Update(ctx context.Context, post *model.BlogPost) error {
	return r.db.WithContext(ctx).Model(post).
		Select("title", "excerpt", "content", "date", "theme", "author", "updated_at").
		Updates(post).Error
}

// Delete permanently removes a post. It returns gorm.ErrRecordNotFound when
// no row matched.
func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.BlogPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// WithTransaction executes a function within a database transaction.
func (r *postRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo PostRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &postRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
