// Package auth implements the credential primitives of the server: stateless
// HMAC-signed bearer tokens and bcrypt password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/dsmirnov/bookshelf/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the registered claims plus the account ID the
// token was issued for. The subject is the immutable numeric ID (stringified),
// not the username, so tokens survive display-name changes.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken mints a signed HS256 token for userID, valid for
// validityDuration from now. The secret key is process-wide state, loaded once
// at startup; rotation is out of scope.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies the token signature and expiry and returns the
// embedded account ID. Expired tokens yield common.ErrTokenExpired; any other
// failure (malformed payload, bad signature, wrong algorithm) yields
// common.ErrInvalidToken. There is no expiry leeway window.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
