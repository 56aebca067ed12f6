package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docvault-go/internal/config"
)

// Health handles GET /health.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"env":       config.Conf.Server.Env,
	})
}
