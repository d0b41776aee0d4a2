package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "identitysync"

var (
	ErrSecretRequired = errors.New("secret is required for admin tokens")
	ErrInvalidToken   = errors.New("invalid admin token")
)

// AdminClaims identify an authenticated administrator.
type AdminClaims struct {
	AdminID uint   `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateAdminToken signs an HS256 token for the admin.
func GenerateAdminToken(adminID uint, email string, ttl time.Duration, secret string) (string, error) {
	if secret == "" {
		return "", ErrSecretRequired
	}
	now := time.Now()
	claims := AdminClaims{
		AdminID: adminID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(adminID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyAdminToken parses and validates a token created by GenerateAdminToken.
func VerifyAdminToken(tokenString, secret string) (*AdminClaims, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid || claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
