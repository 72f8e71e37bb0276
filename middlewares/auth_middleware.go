package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/utils"
)

// Context keys set by RestaurantAdminAuth.
const (
	ContextRestaurantID = "restaurant_id"
	ContextAuthUserID   = "auth_user_id"
	ContextRole         = "role"
)

// TokenParser turns a bearer token into the identity-provider user id.
type TokenParser interface {
	ParseToken(token string) (uuid.UUID, *utils.CustomClaims, error)
}

// UserResolver looks up the restaurant membership of an authenticated user.
// The returned user must carry its Restaurant.
type UserResolver interface {
	FindUserByAuthID(ctx context.Context, authUserID uuid.UUID) (*models.RestaurantUser, error)
}

// RestaurantAdminAuth authenticates the bearer token and binds the request to
// the caller's restaurant.
func RestaurantAdminAuth(tokens TokenParser, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, utils.Unauthorized("Authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, utils.Unauthorized("Invalid token format"))
			c.Abort()
			return
		}

		authUserID, _, err := tokens.ParseToken(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, utils.Unauthorized("Invalid or expired token"))
			c.Abort()
			return
		}

		user, err := users.FindUserByAuthID(c.Request.Context(), authUserID)
		if err != nil {
			if utils.KindOf(err) != utils.KindNotFound {
				utils.RespondAppError(c, err)
				c.Abort()
				return
			}
			utils.RespondError(c, http.StatusForbidden, utils.Forbidden("User is not a member of any restaurant"))
			c.Abort()
			return
		}
		if !user.Active {
			utils.RespondError(c, http.StatusForbidden, utils.Forbidden("User is disabled"))
			c.Abort()
			return
		}
		if !user.Restaurant.Active {
			utils.RespondError(c, http.StatusForbidden, utils.Forbidden("Restaurant is disabled"))
			c.Abort()
			return
		}

		c.Set(ContextAuthUserID, authUserID)
		c.Set(ContextRestaurantID, user.RestaurantID)
		c.Set(ContextRole, user.Role)
		c.Next()
	}
}

// RestaurantID returns the restaurant bound by RestaurantAdminAuth.
func RestaurantID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get(ContextRestaurantID)
	if !ok {
		return uuid.Nil, errors.New("restaurant not bound to request")
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("restaurant not bound to request")
	}
	return id, nil
}
