package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/auth"
	"github.com/yourname/fitcoach/internal/service"
)

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	User        *internal.User `json:"user"`
}

func PostRegister(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.RegisterRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateRegisterRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		user, err := service.RegisterUser(c.Request.Context(), app.Store(), &body)
		if err != nil {
			if errors.Is(err, internal.ErrConflict) {
				HandleError(c, app.Logger(), err, 409, "Email or username already registered")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to register user")
			return
		}

		token, err := app.Auth().IssueToken(user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to issue token")
			return
		}
		HandleSuccess(c, app.Logger(), tokenResponse{AccessToken: token, TokenType: "bearer", User: user}, nil)
	}
}

func PostLogin(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body loginRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		user, err := service.AuthenticateUser(c.Request.Context(), app.Store(), body.Login, body.Password)
		if err != nil {
			// Same message for unknown login and bad password.
			HandleError(c, app.Logger(), err, 401, "Incorrect login or password")
			return
		}

		token, err := app.Auth().IssueToken(user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to issue token")
			return
		}
		HandleSuccess(c, app.Logger(), tokenResponse{AccessToken: token, TokenType: "bearer", User: user}, nil)
	}
}

func GetMe(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		meta := map[string]any{
			"charity_milestones":       service.CharityMilestones(user.StreakPoints),
			"points_to_next_milestone": service.PointsToNextMilestone(user.StreakPoints),
		}
		HandleSuccess(c, app.Logger(), user, meta)
	}
}

func PutMe(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body service.ProfileUpdateRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateProfileUpdateRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		updated, err := service.UpdateProfile(c.Request.Context(), app.Store(), user, &body)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to update profile")
			return
		}
		HandleSuccess(c, app.Logger(), updated, nil)
	}
}

func DeleteMe(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if err := app.Store().DeleteUser(c.Request.Context(), user.ID); err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to delete account")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"message": "Account deleted"}, nil)
	}
}
