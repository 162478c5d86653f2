package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	SetJWTConfig("test-secret", time.Hour)

	token, err := GenerateJWT(7, "gerant@boutique.sn", "T1")
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "gerant@boutique.sn", claims.Email)
	assert.Equal(t, "T1", claims.CompanyID)
}

func TestJWT_RejectsForeignSecret(t *testing.T) {
	SetJWTConfig("one", time.Hour)
	token, err := GenerateJWT(1, "a@b.c", "T1")
	require.NoError(t, err)

	SetJWTConfig("two", time.Hour)
	_, err = ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_RejectsExpired(t *testing.T) {
	SetJWTConfig("test-secret", time.Hour)
	claims := Claims{
		UserID:    1,
		CompanyID: "T1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_RejectsMissingCompany(t *testing.T) {
	SetJWTConfig("test-secret", time.Hour)
	token, err := GenerateJWT(1, "a@b.c", "")
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
