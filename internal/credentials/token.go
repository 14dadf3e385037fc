package credentials

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when an access token cannot be decoded.
var ErrMalformedToken = errors.New("malformed access token")

// TokenExpiry reads the exp claim without verifying the signature. The
// boolean is false when the token carries no exp claim.
func TokenExpiry(token string) (time.Time, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false, ErrMalformedToken
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false, errors.Join(ErrMalformedToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}

// IsTokenExpired reports whether the token is past its exp claim at now.
// Tokens that cannot be decoded count as expired; tokens without an exp claim
// never expire.
func IsTokenExpired(token string, now time.Time) bool {
	expiry, ok, err := TokenExpiry(token)
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return !now.Before(expiry)
}
