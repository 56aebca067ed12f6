// Package handler exposes the HTTP surface with gin.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docvault-go/internal/errs"
)

// respondError maps the typed error taxonomy onto HTTP status codes:
// validation problems are the client's fault, upstream providers map to
// bad gateway, and an unreachable vector index means the service is
// temporarily unavailable.
func respondError(c *gin.Context, err error) {
	var verr *errs.ValidationError
	var xerr *errs.ExtractionError
	var eerr *errs.EmbeddingError
	var ierr *errs.IndexUnavailableError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.As(err, &xerr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": xerr.Error()})
	case errors.As(err, &eerr):
		c.JSON(http.StatusBadGateway, gin.H{"error": eerr.Error()})
	case errors.As(err, &ierr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": ierr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": data, "message": "success"})
}
