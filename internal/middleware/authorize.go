package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diya-thabet/hirfa/internal/apiresponse"
	"github.com/diya-thabet/hirfa/internal/models"
)

func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiresponse.Fail("Unauthorized", nil))
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, apiresponse.Fail("Forbidden", nil))
			return
		}

		c.Next()
	}
}
