package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourname/fitcoach/internal/auth"
	"github.com/yourname/fitcoach/internal/metrics"
	"github.com/yourname/fitcoach/internal/service"
)

func PostProgressLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body service.ProgressLogRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		result, err := app.Ledger().LogProgress(c.Request.Context(), user.ID, &body)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to log progress")
			return
		}
		if result.PointsDelta > 0 {
			metrics.PointsAwardedTotal.WithLabelValues("progress_log").Add(float64(result.PointsDelta))
		}
		HandleSuccess(c, app.Logger(), result, nil)
	}
}

func GetProgressHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

		records, err := service.ProgressHistory(c.Request.Context(), app.Store(), user.ID, limit)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load progress history")
			return
		}
		HandleSuccess(c, app.Logger(), records, nil)
	}
}

func GetProgressStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		stats, err := service.ProgressStats(c.Request.Context(), app.Store(), user)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load progress records")
			return
		}
		HandleSuccess(c, app.Logger(), stats, nil)
	}
}
