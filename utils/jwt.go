package utils

import (
	"errors"
	"time"

	"asap/config"

	"github.com/golang-jwt/jwt"
)

func operatorSecret() []byte {
	secret := config.AppConfig.OperatorJWTSecret
	if secret == "" {
		secret = "ASAP_OPERATOR"
	}
	return []byte(secret)
}

// GenerateOperatorToken creates a signed JWT for an operator console session.
// The token expires after the specified duration.
func GenerateOperatorToken(operatorID string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  operatorID,
		"role": "operator",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(operatorSecret())
}

// ValidateOperatorToken parses a token string and verifies the operator role claim.
// It returns the operator ID (subject) when the token is valid.
func ValidateOperatorToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return operatorSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid operator token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	if role, _ := claims["role"].(string); role != "operator" {
		return "", errors.New("token is not an operator token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token missing subject")
	}
	return sub, nil
}
