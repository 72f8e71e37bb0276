package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/menux-backend/middlewares"
	"github.com/yeremiapane/menux-backend/utils"
)

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, utils.Validation(fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}

// optionalUUIDQuery parses an optional query parameter.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, utils.Validation(fmt.Sprintf("Invalid %s", name))
	}
	return &id, nil
}

// restaurantScope returns the restaurant bound by the admin auth middleware,
// responding 401 when it is missing.
func restaurantScope(c *gin.Context) (uuid.UUID, bool) {
	id, err := middlewares.RestaurantID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, utils.Unauthorized(err.Error()))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.Validation("Invalid request body: "+err.Error()))
		return false
	}
	return true
}

// bindOptionalJSON binds the body when there is one. An empty body leaves dst
// untouched; chunked bodies have no ContentLength and are still read.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, utils.Validation("Invalid request body: "+err.Error()))
		return false
	}
	return true
}
