package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/hospivibe/internal/common"
)

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The backend owns validity; the client only uses this for display and to
// warn about stale restored sessions. A token without exp yields the zero
// time.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, common.ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// Expired reports whether token carries an exp claim at or before now.
// Opaque tokens are never considered expired.
func Expired(token string, now time.Time) bool {
	exp, err := TokenExpiry(token)
	if err != nil || exp.IsZero() {
		return false
	}
	return !now.Before(exp)
}
