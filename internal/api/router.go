package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourname/fitcoach/internal/auth"
)

// NewRouter wires middleware and all route groups onto a gin engine.
func NewRouter(app App) *gin.Engine {
	if app.Config().Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(MetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config().CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", GetHealth(app))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := auth.AuthMiddleware(app.Auth())

	apiGroup := r.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", PostRegister(app))
			authGroup.POST("/login", PostLogin(app))
			authGroup.GET("/me", authed, GetMe(app))
			authGroup.PUT("/me", authed, PutMe(app))
			authGroup.DELETE("/me", authed, DeleteMe(app))
		}

		workouts := apiGroup.Group("/workouts", authed)
		{
			workouts.POST("/generate", PostGenerateWorkout(app))
			workouts.GET("/current", GetCurrentWorkout(app))
			workouts.GET("/history", GetWorkoutHistory(app))
			workouts.GET("/completed", GetWorkoutCompletions(app))
			workouts.POST("/complete-exercise", PostCompleteExercise(app))
		}

		nutrition := apiGroup.Group("/nutrition", authed)
		{
			nutrition.POST("/generate", PostGenerateMealPlan(app))
			nutrition.GET("/current", GetCurrentMealPlan(app))
			nutrition.GET("/history", GetMealPlanHistory(app))
			nutrition.POST("/complete-meal", PostCompleteMeal(app))
		}

		progress := apiGroup.Group("/progress", authed)
		{
			progress.POST("/log", PostProgressLog(app))
			progress.GET("/history", GetProgressHistory(app))
			progress.GET("/stats", GetProgressStats(app))
		}

		coach := apiGroup.Group("/coach", authed)
		{
			coach.POST("/chat", PostCoachChat(app))
			coach.GET("/history", GetCoachHistory(app))
			coach.DELETE("/history", DeleteCoachHistory(app))
		}

		calendarGroup := apiGroup.Group("/calendar")
		{
			calendarGroup.GET("/authorize", authed, GetCalendarAuthorize(app))
			// Google redirects here; the user id travels in the OAuth state.
			calendarGroup.GET("/callback", GetCalendarCallback(app))
			calendarGroup.GET("/status", authed, GetCalendarStatus(app))
			calendarGroup.POST("/disconnect", authed, PostCalendarDisconnect(app))
			calendarGroup.POST("/sync-workout", authed, PostCalendarSyncWorkout(app))
			calendarGroup.POST("/sync-nutrition", authed, PostCalendarSyncNutrition(app))
		}

		admin := apiGroup.Group("/admin", authed, auth.AdminOnly())
		{
			admin.GET("/stats", GetAdminStats(app))
			admin.GET("/users", GetAdminUsers(app))
			admin.DELETE("/users/:id", DeleteAdminUser(app))
		}
	}

	return r
}

func GetHealth(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "healthy",
			"env":    app.Config().Env,
		})
	}
}
