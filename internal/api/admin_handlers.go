package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/service"
)

func GetAdminStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		total, active, err := app.Store().CountUsers(ctx)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to count users")
			return
		}
		workoutPlans, err := app.Store().CountPlans(ctx, internal.PlanWorkout)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to count workout plans")
			return
		}
		nutritionPlans, err := app.Store().CountPlans(ctx, internal.PlanNutrition)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to count nutrition plans")
			return
		}

		HandleSuccess(c, app.Logger(), gin.H{
			"total_users":     total,
			"active_users":    active,
			"workout_plans":   workoutPlans,
			"nutrition_plans": nutritionPlans,
		}, nil)
	}
}

type adminUserView struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	Username          string `json:"username"`
	FullName          string `json:"full_name"`
	Role              string `json:"role"`
	IsActive          bool   `json:"is_active"`
	StreakPoints      int    `json:"streak_points"`
	TotalWorkouts     int    `json:"total_workouts"`
	CharityMilestones int    `json:"charity_milestones"`
}

func GetAdminUsers(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := app.Store().ListUsers(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to list users")
			return
		}

		views := make([]adminUserView, 0, len(users))
		for _, u := range users {
			views = append(views, adminUserView{
				ID:                u.ID,
				Email:             u.Email,
				Username:          u.Username,
				FullName:          u.FullName,
				Role:              string(u.Role),
				IsActive:          u.IsActive,
				StreakPoints:      u.StreakPoints,
				TotalWorkouts:     u.TotalWorkouts,
				CharityMilestones: service.CharityMilestones(u.StreakPoints),
			})
		}
		HandleSuccess(c, app.Logger(), views, map[string]any{"count": len(views)})
	}
}

func DeleteAdminUser(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := app.Store().DeleteUser(c.Request.Context(), id); err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to delete user")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"message": "User deleted"}, nil)
	}
}
