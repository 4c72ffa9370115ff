package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/storage"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Provider issues and validates bearer tokens and resolves them to users.
type Provider interface {
	IssueToken(userID string) (string, error)
	ValidateToken(ctx context.Context, token string) (*internal.User, error)
}

// JWTProvider signs HS256 tokens with the user id as subject.
type JWTProvider struct {
	secret []byte
	ttl    time.Duration
	users  storage.UserRepository
}

func NewJWTProvider(secret string, ttl time.Duration, users storage.UserRepository) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), ttl: ttl, users: users}
}

func (p *JWTProvider) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (p *JWTProvider) ValidateToken(ctx context.Context, tokenString string) (*internal.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	user, err := p.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}

var _ Provider = (*JWTProvider)(nil)
