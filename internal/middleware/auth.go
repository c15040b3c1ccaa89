package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/diya-thabet/hirfa/internal/apiresponse"
	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/security"
)

const (
	ContextAccessClaims = "access_claims"
	ContextCurrentUser  = "current_user"
)

type UserFinder interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
}

// Auth verifies the bearer token and loads the caller. The stored user wins over
// the token's claims, which may be stale after a fairness recompute.
func Auth(secret string, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiresponse.Fail("Missing bearer token", nil))
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiresponse.Fail("Invalid token", nil))
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiresponse.Fail("Invalid token", nil))
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiresponse.Fail("User not found", nil))
			return
		}

		c.Set(ContextAccessClaims, *claims)
		c.Set(ContextCurrentUser, user)

		c.Next()
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ContextCurrentUser)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
