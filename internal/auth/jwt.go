package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when no bearer token was supplied.
	ErrNoToken = errors.New("auth: no token")
	// ErrBadToken is returned for tokens that fail validation.
	ErrBadToken = errors.New("auth: invalid token")
)

// Claims are the JWT claims this service issues and accepts. The user id is
// carried in a dedicated claim; Subject is accepted as a fallback.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ParseJWT validates an HS256 token and returns its claims. Expiry is
// enforced by the parser through the registered claims.
func ParseJWT(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}

	keyFunc := func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return secret, nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrBadToken
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, errors.New("auth: missing user identity")
	}
	if _, ok := NormalizeRole(claims.Role); !ok {
		return nil, errors.New("auth: unknown role")
	}
	return claims, nil
}
