package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yourname/fitcoach/internal/auth"
	"github.com/yourname/fitcoach/internal/metrics"
	"github.com/yourname/fitcoach/internal/service"
)

func PostCoachChat(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body service.ChatRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		reply, err := app.Coach().Chat(c.Request.Context(), user, &body)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Coach is unavailable")
			return
		}
		metrics.ChatMessagesTotal.Inc()
		HandleSuccess(c, app.Logger(), reply, nil)
	}
}

func GetCoachHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		messages, err := app.Coach().History(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load chat history")
			return
		}
		HandleSuccess(c, app.Logger(), messages, nil)
	}
}

func DeleteCoachHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		if err := app.Coach().ClearHistory(c.Request.Context(), user.ID); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to clear chat history")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"message": "Chat history cleared"}, nil)
	}
}
