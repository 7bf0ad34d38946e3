package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snapfeed/snapfeed/internal/repository/postgres"
)

// Error writes the uniform error envelope used by every endpoint.
func Error(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

// Internal hides the original error from the client and lets the access
// log middleware pick it up via c.Error.
func Internal(c *gin.Context, err error) {
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "internal error")
}

// FromRepo maps storage sentinels to transport codes; anything
// unrecognized becomes a 500.
func FromRepo(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		Error(c, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, postgres.ErrConflict):
		Error(c, http.StatusConflict, "conflict")
	default:
		Internal(c, err)
	}
}
