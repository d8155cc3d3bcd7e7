package api

import (
	"errors"   // Error unwrapping
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing

	"finance_tracker/internal/apperr" // Error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusOf maps an error kind to its HTTP status
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuthorization:
		if errors.Is(err, apperr.ErrUnauthenticated) {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConcurrency:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Internal errors are logged and never exposed.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Request failed")
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	body := gin.H{"error": err.Error()}
	var e *apperr.Error
	if errors.As(err, &e) {
		body["error"] = e.Msg // Cause stays server side
		if e.Code != "" {
			body["code"] = e.Code
		}
	}
	c.JSON(status, body)
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.Invalid("invalid_id", "invalid "+name)
	}
	return uint(v), nil
}
