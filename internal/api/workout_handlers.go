package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/auth"
	"github.com/yourname/fitcoach/internal/metrics"
	"github.com/yourname/fitcoach/internal/service"
)

func PostGenerateWorkout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body service.WorkoutGenerateRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		plan, err := app.Plans().GenerateWorkout(c.Request.Context(), user, &body)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to generate workout plan")
			return
		}
		metrics.PlansGeneratedTotal.WithLabelValues(string(internal.PlanWorkout)).Inc()
		HandleSuccess(c, app.Logger(), plan, nil)
	}
}

func GetCurrentWorkout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		plan, err := app.Plans().Current(c.Request.Context(), user.ID, internal.PlanWorkout)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "No active workout plan")
			return
		}
		completed, err := app.Plans().CompletedExercises(c.Request.Context(), plan)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load completions")
			return
		}
		HandleSuccess(c, app.Logger(), plan, map[string]any{"completed_exercises": completed})
	}
}

func GetWorkoutHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		history, err := app.Plans().History(c.Request.Context(), user.ID, internal.PlanWorkout, limit)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load plan history")
			return
		}
		HandleSuccess(c, app.Logger(), history, nil)
	}
}

type completeExerciseRequest struct {
	PlanID         string `json:"plan_id,omitempty"`
	Day            int    `json:"day"`
	ExerciseName   string `json:"exercise_name"`
	CaloriesBurned int    `json:"calories_burned,omitempty"`
}

func PostCompleteExercise(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body completeExerciseRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		unitKey := internal.ExerciseKey(body.Day, body.ExerciseName)
		result, err := app.Ledger().MarkExerciseDone(c.Request.Context(), user.ID, body.PlanID, unitKey, body.CaloriesBurned)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to complete exercise")
			return
		}
		if !result.AlreadyCounted {
			metrics.PointsAwardedTotal.WithLabelValues("exercise").Add(service.ExercisePoints)
		}
		HandleSuccess(c, app.Logger(), result, nil)
	}
}

func GetWorkoutCompletions(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		plan, err := app.Plans().Current(c.Request.Context(), user.ID, internal.PlanWorkout)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "No active workout plan")
			return
		}
		completed, err := app.Plans().CompletedExercises(c.Request.Context(), plan)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load completions")
			return
		}
		HandleSuccess(c, app.Logger(), completed, map[string]any{"plan_id": plan.ID})
	}
}
