package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	apperrors "herstory/internal/errors"
)

// TokenExpiry is the lifetime of an issued admin token. There is no
// server-side revocation: a token stays valid until it expires.
const TokenExpiry = 7 * 24 * time.Hour

// ErrInvalidToken is returned by Validate for every rejected token.
var ErrInvalidToken = apperrors.ErrInvalidToken

// Claims represents JWT claims. Subject carries the admin ID; UserID
// mirrors it for clients that read the payload directly.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// AdminID parses the subject as an admin ID.
func (c *Claims) AdminID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService issues and validates stateless admin tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a token service with the given secret.
func NewTokenService(secret string, opts ...Option) *TokenService {
	s := &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue generates a signed token for the admin, expiring after TokenExpiry.
func (s *TokenService) Issue(adminID uuid.UUID) (string, error) {
	if adminID == uuid.Nil {
		return "", errors.New("issue token: empty admin id")
	}
	now := s.now()
	claims := &Claims{
		UserID: adminID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry and returns the claims. Every
// failure, including malformed input, yields ErrInvalidToken.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" || !canonicalSignature(tokenString) {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// Expiry is checked here against the injected clock; exp is required.
	if !claims.VerifyExpiresAt(s.now(), true) {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}
	if _, err := claims.AdminID(); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// canonicalSignature reports whether the signature segment is strict
// base64url. The last character of an HS256 signature carries unused bits
// that lenient decoding ignores, so two spellings would otherwise verify.
func canonicalSignature(tokenString string) bool {
	i := strings.LastIndexByte(tokenString, '.')
	if i < 0 {
		return false
	}
	_, err := base64.RawURLEncoding.Strict().DecodeString(tokenString[i+1:])
	return err == nil
}
