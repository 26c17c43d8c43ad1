package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/config"
	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/repository"
	"github.com/rugstore/storefront/internal/service"
)

// HandleRegister handles POST /v1/auth/register
func HandleRegister(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	authService := service.NewAuthService(repos, cfg.Session.TTL, logger)

	return func(c *gin.Context) {
		var creds domain.Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			respondBindError(c, err)
			return
		}

		if _, err := authService.Register(c.Request.Context(), creds); err != nil {
			respondError(c, logger, err, "Failed to register user")
			return
		}

		tok, err := authService.Login(c.Request.Context(), creds)
		if err != nil {
			respondError(c, logger, err, "Failed to log in new user")
			return
		}

		c.JSON(http.StatusCreated, tok)
	}
}

// HandleLogin handles POST /v1/auth/login
func HandleLogin(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	authService := service.NewAuthService(repos, cfg.Session.TTL, logger)

	return func(c *gin.Context) {
		var creds domain.Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			respondBindError(c, err)
			return
		}

		tok, err := authService.Login(c.Request.Context(), creds)
		if err != nil {
			respondError(c, logger, err, "Failed to log in")
			return
		}

		c.JSON(http.StatusOK, tok)
	}
}
