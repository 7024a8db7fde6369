package util

import (
	"fmt"
	"time"

	"trading_academy_backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"admin"`
	jwt.RegisteredClaims
}

func GenerateJWT(session *model.Session, secret string, expiration time.Duration) (string, error) {
	claims := &Claims{
		SessionID: session.ID,
		Email:     session.Email,
		IsAdmin:   session.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.CreatedAt.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrUnauthorized
}

// GetSessionFromContext returns the session the auth middleware attached.
func GetSessionFromContext(c *gin.Context) *model.Session {
	v, exists := c.Get("session")
	if !exists {
		return nil
	}
	session, ok := v.(*model.Session)
	if !ok {
		return nil
	}
	return session
}
