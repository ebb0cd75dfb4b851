package jwtutil

import (
	"time"

	"polling-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var (
	signingKey []byte
	expiresIn  = 7 * 24 * time.Hour
)

// Initialize sets the process-wide signing secret and token lifetime.
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	if cfg.ExpiresIn > 0 {
		expiresIn = cfg.ExpiresIn
	}
}

// Claims represents the signed half of a session token. TenantKey routes
// every authenticated request to the owning tenant partition.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TenantKey string `json:"tenant_key"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed token and returns it with its expiry time,
// which the caller persists alongside the revocation record.
func GenerateToken(userID, email, role, tenantKey string) (string, time.Time, error) {
	expiresAt := time.Now().Add(expiresIn)
	claims := Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TenantKey: tenantKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken checks the signature and standard claims of a presented token.
// It says nothing about revocation; that check belongs to the session layer.
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return signingKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
