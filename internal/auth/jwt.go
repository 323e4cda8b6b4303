package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ulisesh/arcade-services/internal/constants"
)

// TokenExpiry extracts the expiration time from a JWT access token without
// verifying its signature. The signature belongs to the server; the client
// only needs the exp claim to know when to refresh.
func TokenExpiry(token string) (time.Time, error) {
	if len(strings.Split(token, ".")) != constants.TokenPartsCount {
		return time.Time{}, constants.ErrInvalidJWTFormat
	}

	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing token: %w", err)
	}

	expiration, err := claims.GetExpirationTime()
	if err != nil || expiration == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return expiration.Time, nil
}
