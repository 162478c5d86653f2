package utils

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const jwtIssuer = "retail-api"

var (
	jwtMu     sync.RWMutex
	jwtSecret []byte
	jwtTTL    = 12 * time.Hour
)

// Claims are carried by back-office user tokens.
type Claims struct {
	UserID    int    `json:"uid"`
	Email     string `json:"email"`
	CompanyID string `json:"cid"`
	jwt.RegisteredClaims
}

// SetJWTConfig sets the signing secret and token lifetime. Called once at start-up.
func SetJWTConfig(secret string, ttl time.Duration) {
	jwtMu.Lock()
	defer jwtMu.Unlock()
	jwtSecret = []byte(secret)
	if ttl > 0 {
		jwtTTL = ttl
	}
}

func jwtKey() ([]byte, time.Duration, error) {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	if len(jwtSecret) == 0 {
		return nil, 0, errors.New("jwt secret not configured")
	}
	return jwtSecret, jwtTTL, nil
}

// GenerateJWT signs an HS256 token for the user.
func GenerateJWT(userID int, email, companyID string) (string, error) {
	secret, ttl, err := jwtKey()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateJWT parses and verifies a token, returning its claims.
func ValidateJWT(tokenString string) (*Claims, error) {
	secret, _, err := jwtKey()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(jwtIssuer))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.CompanyID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
