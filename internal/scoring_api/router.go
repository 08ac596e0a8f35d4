package scoring_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardshield-scoring/internal/scoring_api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h Handlers) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Scoring operations
		transactions := v1.Group("/transactions")
		{
			transactions.POST("/score", h.Score.Score)
			transactions.POST("/score/batch", h.Score.ScoreBatch)
		}

		// Fraud registry administration
		registry := v1.Group("/registry")
		{
			registry.POST("/fraudulent", h.Registry.UpdateFraudList)
			registry.POST("/stolen", h.Registry.ReportStolen)
			registry.GET("/suspects", h.Registry.ListSuspects)
		}

		// Card profile and verdict history
		cards := v1.Group("/cards")
		{
			cards.GET("/:id", h.Card.GetByID)
			cards.GET("/:id/verdicts", h.Card.GetVerdicts)
		}

		// Audit trail lookup
		v1.GET("/verdicts/:id", h.Card.GetVerdictByTransactionID)

		// Model metadata
		v1.GET("/model/importances", h.Model.GetImportances)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
