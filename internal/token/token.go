package token

import (
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyToken   = errors.New("token is empty")
	ErrInvalidToken = errors.New("invalid token")
)

type Verifier interface {
	Verify(tokenString string) (jwt.MapClaims, error)
}

// JWTVerifier checks refresh credentials issued by the backend. It only
// accepts HMAC signatures made with the shared refresh key.
type JWTVerifier struct {
	refreshSecret string
}

func NewJWTVerifier(refreshSecret string) *JWTVerifier {
	return &JWTVerifier{refreshSecret: refreshSecret}
}

func (v *JWTVerifier) Verify(tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.refreshSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
