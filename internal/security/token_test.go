package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_ValidateToken(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := m.GenerateAccessToken(7, "staff@test.com", []string{"staff"})
		require.NoError(t, err)

		claims, err := m.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int32(7), claims.UserID)
		assert.True(t, claims.HasRole("staff"))
		assert.False(t, claims.HasRole("admin"))
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := NewTokenManager("ffffffffffffffffffffffffffffffff", time.Hour).GenerateAccessToken(7, "", nil)
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		claims := UserClaims{
			UserID: 7,
			Type:   TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				Audience:  jwt.ClaimStrings{accessAudience},
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("WrongType", func(t *testing.T) {
		claims := UserClaims{
			UserID:           7,
			Type:             "refresh",
			RegisteredClaims: jwt.RegisteredClaims{Audience: jwt.ClaimStrings{accessAudience}},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("SubjectOnly", func(t *testing.T) {
		claims := UserClaims{
			Type: TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:  "12",
				Audience: jwt.ClaimStrings{accessAudience},
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		got, err := m.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int32(12), got.UserID)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
