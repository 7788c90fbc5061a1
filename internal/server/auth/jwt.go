// Package auth verifies HS256 access tokens and carries the authenticated
// caller through request contexts. Token issuance lives with user
// management; GenerateToken backs the devtoken command.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the caller identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string
	Username string
}

func GenerateToken(caller models.Caller, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   caller.ID,
		Username: caller.Username,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates tokenString and returns the caller it names.
// Expired tokens map to common.ErrTokenExpired, everything else that fails
// validation to common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*models.Caller, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, common.ErrTokenExpired
	}
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return &models.Caller{ID: claims.UserID, Username: claims.Username}, nil
}

type ctxKey struct{}

func WithCaller(ctx context.Context, c models.Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// CallerFromContext returns the caller stored by the auth middleware.
func CallerFromContext(ctx context.Context) (models.Caller, bool) {
	c, ok := ctx.Value(ctxKey{}).(models.Caller)
	return c, ok
}
