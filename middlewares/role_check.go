package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/utils"
)

// RoleCheck lets the request through only if RestaurantAdminAuth bound one of
// the allowed roles.
func RoleCheck(allowed ...models.RestaurantRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ContextRole)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, utils.Unauthorized("unauthorized"))
			c.Abort()
			return
		}

		role, _ := v.(models.RestaurantRole)
		for _, r := range allowed {
			if role == r {
				c.Next()
				return
			}
		}

		utils.RespondError(c, http.StatusForbidden, utils.Forbidden("Insufficient role for restaurant administration"))
		c.Abort()
	}
}
