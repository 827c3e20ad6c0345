package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ServiceClaims struct {
	Subject string `json:"sub_name"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

var signingSecret []byte

// SetJWTSecret installs the signing secret from config. Call once at
// startup, before any token is issued or parsed.
func SetJWTSecret(secret string) {
	if secret != "" {
		signingSecret = []byte(secret)
	}
}

func jwtSecret() []byte {
	if len(signingSecret) > 0 {
		return signingSecret
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret" // Fallback secret, should be changed in production
	}
	return []byte(secret)
}

// GenerateToken issues a bearer token for a caller of the document API.
func GenerateToken(subject, role string) (string, error) {
	claims := ServiceClaims{
		Subject: subject,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ParseToken validates a bearer token and returns its claims.
func ParseToken(tokenString string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*ServiceClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrInvalidKey
	}
	return claims, nil
}
