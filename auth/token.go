package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Jatomit/UNLIMITED-TELECOM/middleware"
	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

// IssueToken signs an HS256 token for user, valid for ttl.
func IssueToken(secret string, ttl time.Duration, user models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims := middleware.Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
