package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"herstory/internal/model"
	"herstory/internal/repository"
)

// Provisioner creates the admin identity and optional sample content.
// It is run by the seed command, never by the HTTP server.
type Provisioner struct {
	adminRepo repository.AdminRepository
	postRepo  repository.PostRepository
}

// NewProvisioner creates a new provisioner.
func NewProvisioner(adminRepo repository.AdminRepository, postRepo repository.PostRepository) *Provisioner {
	return &Provisioner{adminRepo: adminRepo, postRepo: postRepo}
}

// EnsureAdmin creates the admin if no admin with that username exists.
// It reports whether a new admin was created.
func (p *Provisioner) EnsureAdmin(ctx context.Context, username, password string) (*model.Admin, bool, error) {
	if username == "" || password == "" {
		return nil, false, errors.New("admin username and password are required")
	}

	existing, err := p.adminRepo.FindByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("check admin %s: %w", username, err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	admin := &model.Admin{Username: username, PasswordHash: hash}
	if err := p.adminRepo.Create(ctx, admin); err != nil {
		return nil, false, fmt.Errorf("create admin %s: %w", username, err)
	}
	return admin, true, nil
}

// SeedPosts inserts posts only when the post table is empty. It returns
// the number of posts inserted.
func (p *Provisioner) SeedPosts(ctx context.Context, inputs []model.PostInput) (int, error) {
	count, err := p.postRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	posts := make([]model.BlogPost, 0, len(inputs))
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return 0, fmt.Errorf("sample post %d: %w", i, err)
		}
		var post model.BlogPost
		post.Apply(in)
		posts = append(posts, post)
	}
	if err := p.postRepo.CreateMany(ctx, posts); err != nil {
		return 0, fmt.Errorf("seed posts: %w", err)
	}
	return len(posts), nil
}
