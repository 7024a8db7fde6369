package middleware

import (
	"context"
	"errors"
	"strings"

	"trading_academy_backend/internal/model"
	"trading_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionResolver interface {
	Resume(ctx context.Context, token string) (*model.Session, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Query("token")
}

func AuthMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		session, err := resolver.Resume(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, util.ErrUnauthorized) {
				util.Unauthorized(c)
			} else {
				util.LogInternalError(c, err)
			}
			c.Abort()
			return
		}

		c.Set("session", session)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := util.GetSessionFromContext(c)
		if session == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !session.IsAdmin {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
