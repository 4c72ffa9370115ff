package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourname/fitcoach/internal/auth"
)

var errCalendarDisabled = errors.New("google calendar integration not configured")

func GetCalendarAuthorize(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if !app.Calendar().Enabled() {
			HandleError(c, app.Logger(), errCalendarDisabled, 503, "Calendar unavailable")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"authorization_url": app.Calendar().AuthURL(user.ID)}, nil)
	}
}

// GetCalendarCallback is hit by Google's redirect, not by the SPA, so it is
// unauthenticated and finishes with a redirect back to the frontend.
func GetCalendarCallback(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Query("code")
		state := c.Query("state")
		if code == "" || state == "" {
			HandleError(c, app.Logger(), errors.New("missing code or state"), 400, "Invalid OAuth callback")
			return
		}
		if err := app.Calendar().HandleCallback(c.Request.Context(), code, state); err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to connect Google Calendar")
			return
		}
		c.Redirect(http.StatusFound, app.Config().FrontendURL+"/settings?calendar=connected")
	}
}

func GetCalendarStatus(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		HandleSuccess(c, app.Logger(), gin.H{"connected": app.Calendar().Connected(user)}, nil)
	}
}

func PostCalendarDisconnect(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if err := app.Calendar().Disconnect(c.Request.Context(), user); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to disconnect calendar")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"message": "Google Calendar disconnected"}, nil)
	}
}

func PostCalendarSyncWorkout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		result, err := app.Calendar().SyncWorkout(c.Request.Context(), user)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to sync workout plan")
			return
		}
		HandleSuccess(c, app.Logger(), result, nil)
	}
}

func PostCalendarSyncNutrition(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		result, err := app.Calendar().SyncNutrition(c.Request.Context(), user)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to sync nutrition plan")
			return
		}
		HandleSuccess(c, app.Logger(), result, nil)
	}
}
