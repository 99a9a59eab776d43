package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"herstory/internal/model"
	"herstory/internal/repository"
)

// NewsletterService handles newsletter signups.
type NewsletterService interface {
	Subscribe(ctx context.Context, email string) (subscriber *model.NewsletterSubscriber, alreadySubscribed bool, err error)
}

type newsletterService struct {
	repo repository.SubscriberRepository
}

// NewNewsletterService creates a new newsletter service.
func NewNewsletterService(repo repository.SubscriberRepository) NewsletterService {
	return &newsletterService{repo: repo}
}

// Subscribe stores the normalised address. Subscribing twice is not an error.
func (s *newsletterService) Subscribe(ctx context.Context, email string) (*model.NewsletterSubscriber, bool, error) {
	if err := model.Validate(model.SubscribeInput{Email: strings.TrimSpace(email)}); err != nil {
		return nil, false, err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find subscriber: %w", err)
	}

	subscriber := &model.NewsletterSubscriber{Email: email}
	if err := s.repo.Create(ctx, subscriber); err != nil {
		// A concurrent signup may have won the unique index.
		if existing, findErr := s.repo.FindByEmail(ctx, email); findErr == nil {
			return existing, true, nil
		}
		return nil, false, fmt.Errorf("create subscriber: %w", err)
	}
	return subscriber, false, nil
}
