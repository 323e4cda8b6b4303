package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulisesh/arcade-services/internal/auth"
	"github.com/ulisesh/arcade-services/internal/constants"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	t.Run("extracts exp claim", func(t *testing.T) {
		t.Parallel()

		expiresAt := time.Now().Add(1 * time.Hour).Truncate(time.Second)
		token := signedToken(t, jwt.MapClaims{
			"sub": "user-1",
			"exp": expiresAt.Unix(),
		})

		expiry, err := auth.TokenExpiry(token)
		require.NoError(t, err)
		assert.Equal(t, expiresAt.Unix(), expiry.Unix())
	})

	t.Run("rejects token without three parts", func(t *testing.T) {
		t.Parallel()

		_, err := auth.TokenExpiry("not-a-jwt")
		assert.ErrorIs(t, err, constants.ErrInvalidJWTFormat)
	})

	t.Run("rejects unparseable token", func(t *testing.T) {
		t.Parallel()

		_, err := auth.TokenExpiry("aaa.bbb.ccc")
		assert.Error(t, err)
	})

	t.Run("rejects token without exp claim", func(t *testing.T) {
		t.Parallel()

		token := signedToken(t, jwt.MapClaims{"sub": "user-1"})

		_, err := auth.TokenExpiry(token)
		assert.ErrorIs(t, err, constants.ErrNoExpirationClaim)
	})
}
