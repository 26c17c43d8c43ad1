package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/api/middleware"
	"github.com/rugstore/storefront/internal/repository"
	"github.com/rugstore/storefront/internal/service"
)

// HandleGetProfile handles GET /v1/profile
func HandleGetProfile(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	profileService := service.NewProfileService(repos, logger)

	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		view, err := profileService.GetProfile(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, logger, err, "Failed to get profile")
			return
		}

		c.JSON(http.StatusOK, view)
	}
}

// HandleUpdateProfile handles PATCH /v1/profile
func HandleUpdateProfile(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	profileService := service.NewProfileService(repos, logger)

	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		// Start from the saved profile so omitted fields are kept.
		profile := user.Profile
		if err := c.ShouldBindJSON(&profile); err != nil {
			respondBindError(c, err)
			return
		}

		view, err := profileService.UpdateProfile(c.Request.Context(), user.ID, profile)
		if err != nil {
			respondError(c, logger, err, "Failed to update profile")
			return
		}

		c.JSON(http.StatusOK, view)
	}
}
