// Package auth provides JWT authentication for Quill Notes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/quill-notes/internal/domain"
	"github.com/prn-tf/quill-notes/internal/repository"
)

// Token errors.
var (
	// ErrInvalidToken indicates the token failed signature or claims
	// validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenRevoked indicates the token was revoked before expiry.
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Claims are the JWT claims carried by an access token.
type Claims struct {
	UserID   string        `json:"uid"`
	Username string        `json:"username"`
	Roles    []domain.Role `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService issues, parses, and revokes access tokens.
// Revocation state lives in the denylist cache keyed by token ID.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	denylist repository.Cache
	logger   zerolog.Logger
}

// NewTokenService creates a new TokenService.
func NewTokenService(secret string, ttl time.Duration, denylist repository.Cache, logger zerolog.Logger) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		ttl:      ttl,
		denylist: denylist,
		logger:   logger.With().Str("service", "token").Logger(),
	}
}

// Issue signs a new HS256 access token for the user.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns its claims.
// A token on the denylist is rejected even when otherwise valid.
func (s *TokenService) Parse(ctx context.Context, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ID != "" {
		revoked, err := s.denylist.Exists(ctx, denylistKey(claims.ID))
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to check token denylist")
			return nil, fmt.Errorf("failed to check token denylist: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

// Revoke places the token on the denylist until its natural expiry.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if claims.ID == "" {
		return ErrInvalidToken
	}

	ttl := s.ttl
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		// Already expired, nothing to deny.
		return nil
	}

	if err := s.denylist.Set(ctx, denylistKey(claims.ID), []byte("1"), ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.Info().Str("user_id", claims.UserID).Msg("token revoked")
	return nil
}

func denylistKey(tokenID string) string {
	return "token:denied:" + tokenID
}
