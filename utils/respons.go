package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Kind    ErrorKind   `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Kind:    KindOf(err),
	})
}

// RespondAppError picks the status code from the error kind. Internal errors
// are logged and replaced by a generic message.
func RespondAppError(c *gin.Context, err error) {
	code := HTTPStatus(err)
	switch code {
	case http.StatusInternalServerError:
		ErrorLogger.WithField("path", c.Request.URL.Path).Errorf("request failed: %v", err)
		c.JSON(code, JSONResponse{Status: false, Message: "internal server error"})
		return
	case http.StatusGatewayTimeout:
		c.JSON(code, JSONResponse{
			Status:  false,
			Message: "request timed out before completion was confirmed; re-read the order before retrying",
		})
		return
	}
	RespondError(c, code, err)
}
