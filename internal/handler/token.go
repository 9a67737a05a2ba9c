package handler

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cropcart/internal/model"
)

const tokenTTL = 24 * time.Hour

func issueToken(secret string, user *model.User, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"iat":     jwt.NewNumericDate(now),
		"exp":     jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	return token.SignedString([]byte(secret))
}
