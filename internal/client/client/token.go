package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/taskdesk/internal/common"
)

// checkTokenExpiry reports common.ErrTokenExpired when token is a JWT whose
// exp claim is not after now. Opaque tokens and tokens without exp pass; the
// signature is not verified.
func checkTokenExpiry(token string, now time.Time) error {
	if token == "" {
		return nil
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	if !claims.ExpiresAt.After(now) {
		return fmt.Errorf("%w (%w)", common.ErrTokenExpired, common.ErrUnauthorized)
	}
	return nil
}
