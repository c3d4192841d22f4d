// Package rest exposes the domain services over HTTP. Handlers stay
// thin: bind, extract the caller, call the service, map the error kind
// to a status. No domain rule lives here.
package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/crewlink/server/apperr"
	"github.com/gin-gonic/gin"
)

// writeError maps a domain error to its HTTP status. Anything outside
// the taxonomy is a 500 with the detail withheld.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrRuleViolation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// pathID parses a positive integer path parameter, answering 400 and
// returning false when it is malformed.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
