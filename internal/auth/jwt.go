package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey signs admin tokens. Loaded from the environment; the fallback
// only exists so local development works without a .env file.
func jwtSecretKey() []byte {
	if secret := os.Getenv("ADMIN_JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("dev-only-visor-admin-secret")
}

// GenerateToken creates a JWT for the admin subject, valid for 72 hours.
func GenerateToken(subject string) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour * 72).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecretKey())
}

// ValidateToken parses and validates a token string and returns its subject.
func ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecretKey(), nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		subject, ok := claims["sub"].(string)
		if !ok {
			return "", errors.New("invalid subject claim")
		}
		return subject, nil
	}

	return "", errors.New("invalid token")
}
