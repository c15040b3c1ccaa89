package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/diya-thabet/hirfa/internal/apiresponse"
	"github.com/diya-thabet/hirfa/internal/middleware"
	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/service"
)

func ok(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, apiresponse.OK(data, message))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, apiresponse.Fail(message, nil))
}

// writeError maps service errors onto statuses and envelopes.
func (h HandlerSet) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, apiresponse.Fail("Validation failed", verr.Fields))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apiresponse.Fail("Invalid phone number or credentials", nil))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apiresponse.Fail(err.Error(), nil))
	case errors.Is(err, service.ErrInvalidOperation):
		c.JSON(http.StatusBadRequest, apiresponse.Fail(err.Error(), nil))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, apiresponse.Fail(err.Error(), nil))
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, apiresponse.Fail(err.Error(), nil))
	default:
		_ = c.Error(err)
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, apiresponse.Fail("An internal error occurred. Please try again later.", nil))
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}
