package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"herstory/internal/auth"
	apperrors "herstory/internal/errors"
	"herstory/internal/model"
	"herstory/internal/repository"
)

const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials

	dummyHashOnce sync.Once
	dummyHash     []byte
)

// AuthService handles admin authentication.
type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, admin *model.Admin, err error)
	Verify(ctx context.Context, adminID uuid.UUID) (*model.Admin, error)
}

type authService struct {
	adminRepo repository.AdminRepository
	tokens    *auth.TokenService
}

// NewAuthService creates a new authentication service.
func NewAuthService(adminRepo repository.AdminRepository, tokens *auth.TokenService) AuthService {
	return &authService{
		adminRepo: adminRepo,
		tokens:    tokens,
	}
}

// Login checks the credentials and issues a token. Unknown usernames and
// wrong passwords produce the same error and take comparable time.
func (s *authService) Login(ctx context.Context, username, password string) (string, *model.Admin, error) {
	admin, err := s.adminRepo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("find admin: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(placeholderHash(), []byte(password))
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(admin.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, admin, nil
}

// Verify resolves the admin behind an already validated token.
func (s *authService) Verify(ctx context.Context, adminID uuid.UUID) (*model.Admin, error) {
	admin, err := s.adminRepo.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAdminNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return admin, nil
}

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func placeholderHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder-password"), bcryptCost)
	})
	return dummyHash
}
