// Package api holds the gin plumbing shared by the auth and catalog
// handlers: request binding, id parsing and error responses.
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"animehub/internal/apperr"
	"animehub/internal/logging"
	"animehub/internal/validation"
)

// RespondError writes err as {"message": ...} with the status of its kind.
// Internal errors are logged and hidden from the caller.
func RespondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"message": apperr.Message(err)})
}

func RespondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// BindJSON decodes the body into dst and validates it. Decoding and
// validation failures are both reported as validation errors.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validation("invalid json: %s", describeDecodeError(err))
	}
	return validation.Struct(dst)
}

func describeDecodeError(err error) string {
	if errors.Is(err, io.EOF) {
		return "request body is empty"
	}
	return strings.TrimPrefix(err.Error(), "json: ")
}

// ParseID reads the :id path parameter.
func ParseID(c *gin.Context) (uint, error) {
	raw := strings.TrimSpace(c.Param("id"))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Validation("invalid id %q", raw)
	}
	return uint(n), nil
}
