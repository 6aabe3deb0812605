package auth

import (
	"time"

	"github.com/dineup/dineup/internal/errs"
	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// TokenManager issues and verifies the HS256 bearer tokens used for session
// auth. The only claim the service relies on is the user id.
type TokenManager struct {
	key []byte
}

func NewTokenManager(secretKey string) *TokenManager {
	return &TokenManager{key: []byte(secretKey)}
}

func (tm *TokenManager) GenerateToken(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	})
	return token.SignedString(tm.key)
}

func (tm *TokenManager) ParseToken(tokenStr string) (int, error) {
	token, err := jwt.Parse(tokenStr,
		func(*jwt.Token) (interface{}, error) { return tm.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return 0, errs.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errs.ErrInvalidToken
	}

	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errs.ErrInvalidToken
	}
	return int(id), nil
}
