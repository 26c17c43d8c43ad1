package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/repository"
	"github.com/rugstore/storefront/internal/service"
	"github.com/rugstore/storefront/pkg/errors"
)

const userContextKey = "user"

// AuthMiddleware requires a valid bearer token and stores the user in the context
func AuthMiddleware(repos *repository.Repositories, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return authenticate(repos, ttl, logger, true)
}

// OptionalAuthMiddleware resolves a bearer token when one is sent
func OptionalAuthMiddleware(repos *repository.Repositories, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return authenticate(repos, ttl, logger, false)
}

func authenticate(repos *repository.Repositories, ttl time.Duration, logger *zap.Logger, required bool) gin.HandlerFunc {
	authService := service.NewAuthService(repos, ttl, logger)

	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.Next()
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			var unauthorized *errors.ErrUnauthorized
			if stderrors.As(err, &unauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorized.Error()})
				return
			}
			logger.Error("Failed to authenticate", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireStaff rejects non-staff users. It must run after AuthMiddleware.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUserFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

// GetUserFromContext returns the authenticated user, if any
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
