package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printware/printdesk/internal/server/http/dto"
	"github.com/printware/printdesk/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

func respondData(c *gin.Context, status int, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Envelope{Success: false, Message: "encode response"})
		return
	}
	c.JSON(status, dto.Envelope{Success: true, Data: raw})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, dto.Envelope{Success: false, Message: message})
}
