package internal

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type PlanKind string

const (
	PlanWorkout   PlanKind = "workout"
	PlanNutrition PlanKind = "nutrition"
)

type UnitKind string

const (
	UnitExercise UnitKind = "exercise"
	UnitMeal     UnitKind = "meal"
)

type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"`
	FullName       string `json:"full_name"`

	Age    int     `json:"age,omitempty"`
	Gender string  `json:"gender,omitempty"`
	Height float64 `json:"height,omitempty"` // cm
	Weight float64 `json:"weight,omitempty"` // kg

	FitnessLevel      string `json:"fitness_level"`
	FitnessGoal       string `json:"fitness_goal"`
	WorkoutPreference string `json:"workout_preference"`
	DietPreference    string `json:"diet_preference"`

	Role     Role `json:"role"`
	IsActive bool `json:"is_active"`

	// Gamification counters. StreakPoints only ever grows; every 100 points
	// is one charity milestone.
	StreakPoints  int `json:"streak_points"`
	TotalWorkouts int `json:"total_workouts"`

	// Serialized OAuth token for Google Calendar, empty when not connected.
	CalendarToken string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Plan is one generated workout or nutrition plan. Regenerating a plan
// deactivates the previous one of the same kind instead of deleting it, so
// only the newest plan per kind is active.
type Plan struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Kind      PlanKind     `json:"kind"`
	Title     string       `json:"title"`
	Workout   *WorkoutPlan `json:"workout,omitempty"`
	Nutrition *MealPlan    `json:"nutrition,omitempty"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
}

// CompletionRecord is the authoritative done/awarded state for one unit of a
// plan. Done mirrors the client checkbox; Awarded never flips back to false,
// which is what keeps points monotonic.
type CompletionRecord struct {
	UserID      string    `json:"user_id"`
	PlanID      string    `json:"plan_id"`
	UnitKey     string    `json:"unit_key"`
	Kind        UnitKind  `json:"kind"`
	Done        bool      `json:"done"`
	Awarded     bool      `json:"awarded"`
	CompletedAt time.Time `json:"completed_at"`
}

type ProgressRecord struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	Date   time.Time `json:"date"`

	Weight             float64 `json:"weight,omitempty"`              // kg
	BodyFatPercent     float64 `json:"body_fat_percent,omitempty"`    // %
	MuscleMass         float64 `json:"muscle_mass,omitempty"`         // kg
	WaistCircumference float64 `json:"waist_circumference,omitempty"` // cm

	CaloriesBurned int `json:"calories_burned,omitempty"`

	// Exercise name when the record was auto-logged by an exercise
	// completion; empty for manual entries.
	WorkoutCompleted string `json:"workout_completed,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// --- Plan content ---

type WorkoutPlan struct {
	Title string       `json:"title"`
	Days  []WorkoutDay `json:"days"`
}

type WorkoutDay struct {
	Day             int        `json:"day"`
	Name            string     `json:"name"`
	Focus           string     `json:"focus"`
	Exercises       []Exercise `json:"exercises"`
	DurationMinutes int        `json:"total_duration_minutes"`
	TotalCalories   int        `json:"total_calories"`
}

type Exercise struct {
	Name         string `json:"name"`
	Sets         int    `json:"sets"`
	Reps         string `json:"reps"`
	RestSeconds  int    `json:"rest_seconds"`
	Description  string `json:"description,omitempty"`
	MuscleGroup  string `json:"muscle_group,omitempty"`
	CaloriesBurn int    `json:"calories_burn"`
}

type MealPlan struct {
	Title         string    `json:"title"`
	DailyCalories int       `json:"daily_calories"`
	Macros        Macros    `json:"macros"`
	Days          []MealDay `json:"days"`
	GroceryList   []string  `json:"grocery_list,omitempty"`
}

type Macros struct {
	Protein float64 `json:"protein"` // grams
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

type MealDay struct {
	Day   int    `json:"day"`
	Meals []Meal `json:"meals"`
}

type Meal struct {
	MealType    string   `json:"meal_type"` // breakfast | lunch | dinner | snack
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Calories    int      `json:"calories"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fat         float64  `json:"fat"`
	Ingredients []string `json:"ingredients,omitempty"`
	PrepTime    string   `json:"prep_time,omitempty"`
}

// ChatMessage is one turn of the AI coach conversation.
type ChatMessage struct {
	Role      string    `json:"role"` // user | assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Messages  []ChatMessage `json:"messages"`
	UpdatedAt time.Time     `json:"updated_at"`
}
