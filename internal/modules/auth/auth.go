package auth

import (
	"context"
	"errors"

	"github.com/dgrijalva/jwt-go"
)

var (
	ErrMissingToken = errors.New("authorization header missing")
	ErrInvalidToken = errors.New("invalid token")
	ErrForbidden    = errors.New("forbidden")
)

// Claims are the fields read from an access token issued by the auth provider.
// Subject carries the user id, which is also the profiles.id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

// Service verifies access tokens. Issuing them belongs to the auth provider.
type Service interface {
	ParseToken(tokenString string) (*Claims, error)
}

// RoleResolver looks up the marketplace role (client, seller, deliverer, admin) of a user.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (string, error)
}
