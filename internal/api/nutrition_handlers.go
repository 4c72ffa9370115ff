package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/auth"
	"github.com/yourname/fitcoach/internal/metrics"
	"github.com/yourname/fitcoach/internal/service"
)

func PostGenerateMealPlan(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body service.MealGenerateRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		plan, err := app.Plans().GenerateMealPlan(c.Request.Context(), user, &body)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to generate nutrition plan")
			return
		}
		metrics.PlansGeneratedTotal.WithLabelValues(string(internal.PlanNutrition)).Inc()
		HandleSuccess(c, app.Logger(), plan, nil)
	}
}

func GetCurrentMealPlan(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		plan, err := app.Plans().Current(c.Request.Context(), user.ID, internal.PlanNutrition)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "No active nutrition plan")
			return
		}
		view, err := app.Plans().MealPlanView(c.Request.Context(), plan)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load completions")
			return
		}
		HandleSuccess(c, app.Logger(), view, nil)
	}
}

func GetMealPlanHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		history, err := app.Plans().History(c.Request.Context(), user.ID, internal.PlanNutrition, limit)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to load plan history")
			return
		}
		HandleSuccess(c, app.Logger(), history, nil)
	}
}

type completeMealRequest struct {
	PlanID   string `json:"plan_id,omitempty"`
	Day      int    `json:"day"`
	MealType string `json:"meal_type"`
	MealName string `json:"meal_name"`
}

func PostCompleteMeal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body completeMealRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		unitKey := internal.MealKey(body.Day, body.MealType, body.MealName)
		result, err := app.Ledger().MarkMealDone(c.Request.Context(), user.ID, body.PlanID, unitKey)
		if err != nil {
			HandleDomainError(c, app.Logger(), err, "Failed to toggle meal")
			return
		}
		if result.PointsDelta > 0 {
			metrics.PointsAwardedTotal.WithLabelValues("meal").Add(float64(result.PointsDelta))
		}
		HandleSuccess(c, app.Logger(), result, nil)
	}
}
