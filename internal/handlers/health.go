package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/branchmove/branch-service/internal/database"
)

var startedAt = time.Now()

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Provider      string `json:"provider"`
	Store         string `json:"store"`
	Database      string `json:"database,omitempty"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Timestamp     string `json:"timestamp"`
}

// HealthCheck handles the health check endpoint
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:        "ok",
		Provider:      "not configured",
		Store:         "not configured",
		UptimeSeconds: int64(time.Since(startedAt).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if recommender != nil {
		response.Provider = recommender.ProviderName()
	}

	if branchStore != nil {
		if err := branchStore.Ping(c.Request.Context()); err != nil {
			response.Store = branchStore.Kind() + ": unavailable"
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			response.Store = branchStore.Kind() + ": ok"
		}
	}

	// Check database connection
	if database.Pool() != nil {
		if err := database.Status(c.Request.Context()); err != nil {
			response.Database = "disconnected"
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
		} else if stats := database.Stats(); stats != nil {
			response.Database = fmt.Sprintf("connected (%d/%d conns)", stats.AcquiredConns(), stats.TotalConns())
		} else {
			response.Database = "connected"
		}
	}

	c.JSON(status, response)
}
