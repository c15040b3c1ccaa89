package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/diya-thabet/hirfa/internal/service"
)

func (h HandlerSet) VerifyUser(c *gin.Context) {
	userID, valid := pathID(c, "userId")
	if !valid {
		return
	}
	if err := h.services.Users.SetVerified(c.Request.Context(), userID, true); err != nil {
		h.writeError(c, service.MapRepositoryError(err))
		return
	}
	user, err := h.services.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, service.MapRepositoryError(err))
		return
	}
	ok(c, user.Public(), "User verified")
}

// RecomputeFairness queues a provider for the worker's fairness pass.
func (h HandlerSet) RecomputeFairness(c *gin.Context) {
	userID, valid := pathID(c, "userId")
	if !valid {
		return
	}
	if _, err := h.services.Users.GetByID(c.Request.Context(), userID); err != nil {
		h.writeError(c, service.MapRepositoryError(err))
		return
	}
	if err := h.services.Events.Publish(c.Request.Context(), service.EventFairnessRecompute, map[string]any{"providerId": userID}); err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, gin.H{"providerId": userID}, "Fairness recompute queued")
}
