// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owlcart/owlcart-go/internal/domain/errs"
)

// respondError translates the domain error taxonomy into JSON notices. Every
// domain error is recoverable; nothing here ends the process.
func respondError(c *gin.Context, err error) {
	var validationErr *errs.ValidationError
	var formatErr *errs.FormatError
	var notFoundErr *errs.NotFoundError
	var throttledErr *errs.ThrottledError
	var unavailableErr *errs.UnavailableError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &formatErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": formatErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &throttledErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":        throttledErr.Error(),
			"retryAfterMs": throttledErr.Remaining.Milliseconds(),
		})
	case errors.As(err, &unavailableErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": unavailableErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
