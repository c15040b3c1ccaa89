package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/service"
)

const headerAdminSecret = "X-Admin-Secret"

type registerRequest struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

type authenticateRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// tokenResponse is sent bare, outside the envelope.
type tokenResponse struct {
	Token string `json:"token"`
}

func (h HandlerSet) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed request body")
		return
	}

	result, err := h.services.Auth.Register(c.Request.Context(), service.RegisterInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Role:        models.UserRole(req.Role),
		AdminSecret: c.GetHeader(headerAdminSecret),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: result.Token})
}

func (h HandlerSet) Authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Malformed request body")
		return
	}

	result, err := h.services.Auth.Authenticate(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: result.Token})
}

func (h HandlerSet) Me(c *gin.Context) {
	ok(c, currentUser(c), "Current user")
}
