package handlers

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/service"
	"github.com/rugstore/storefront/pkg/errors"
)

// respondError maps typed service errors to HTTP responses
func respondError(c *gin.Context, logger *zap.Logger, err error, msg string) {
	var (
		notFound     *errors.ErrNotFound
		transition   *errors.ErrInvalidStateTransition
		unauthorized *errors.ErrUnauthorized
		forbidden    *errors.ErrForbidden
		validation   *errors.ErrValidation
		conflict     *errors.ErrConflict
	)

	switch {
	case stderrors.Is(err, service.ErrInvalidPage):
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid page"})
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Resource + " not found"})
	case stderrors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"error": transition.Error()})
	case stderrors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorized.Error()})
	case stderrors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden.Error()})
	case stderrors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": validation.Error()})
	case stderrors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// respondBindError reports a request body that failed binding
func respondBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fe.Namespace()+": "+fe.Tag())
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": strings.Join(details, "; ")})
}
