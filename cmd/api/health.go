package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

// PingResponse is the liveness answer. It never touches the FMI service.
type PingResponse struct {
	Message string `json:"message" example:"pong"`
	Version string `json:"version" example:"1.0.0"`
}

// handlePing godoc
// @Summary Ping health check
// @Description Check if the API is running. Does not contact the FMI service.
// @Tags health
// @Produce json
// @Success 200 {object} PingResponse
// @Router /ping [get]
func (app *App) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong", Version: version})
}
