package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/cache"
	"github.com/yourname/fitcoach/internal/service"
	"github.com/yourname/fitcoach/internal/storage"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewFileStorage(t.TempDir(), internal.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestLedger(t *testing.T) (*service.Ledger, storage.Store) {
	t.Helper()
	store := newTestStore(t)
	return service.NewLedger(store, cache.NewNop(), internal.NopLogger()), store
}

func createTestUser(t *testing.T, store storage.Store) *internal.User {
	t.Helper()
	user := &internal.User{
		ID:       uuid.NewString(),
		Email:    "alex@example.com",
		Username: "alex",
		FullName: "Alex Test",
		Role:     internal.RoleUser,
		IsActive: true,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func testWorkoutPlan(userID string) *internal.Plan {
	return &internal.Plan{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   internal.PlanWorkout,
		Title:  "Test Workout",
		Workout: &internal.WorkoutPlan{
			Title: "Test Workout",
			Days: []internal.WorkoutDay{
				{
					Day: 1, Name: "Upper Body", DurationMinutes: 30,
					Exercises: []internal.Exercise{
						{Name: "Push-ups", Sets: 3, Reps: "10", CaloriesBurn: 50},
						{Name: "Pull-ups", Sets: 3, Reps: "8", CaloriesBurn: 40},
					},
				},
				{
					Day: 2, Name: "Lower Body", DurationMinutes: 30,
					Exercises: []internal.Exercise{
						{Name: "Squats", Sets: 3, Reps: "15", CaloriesBurn: 60},
					},
				},
			},
		},
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func testMealPlan(userID string) *internal.Plan {
	return &internal.Plan{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   internal.PlanNutrition,
		Title:  "Test Nutrition",
		Nutrition: &internal.MealPlan{
			Title:         "Test Nutrition",
			DailyCalories: 2000,
			Days: []internal.MealDay{
				{
					Day: 1,
					Meals: []internal.Meal{
						{MealType: "breakfast", Name: "Oatmeal", Calories: 350},
						{MealType: "lunch", Name: "Chicken Salad", Calories: 450},
					},
				},
			},
		},
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func TestExerciseAwardsOncePerUnit(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)
	plan := testWorkoutPlan(user.ID)
	require.NoError(t, store.CreatePlan(ctx, plan))

	key := internal.ExerciseKey(1, "Push-ups")

	result, err := ledger.MarkExerciseDone(ctx, user.ID, plan.ID, key, 0)
	require.NoError(t, err)
	assert.False(t, result.AlreadyCounted)
	assert.Equal(t, 10, result.StreakPoints)
	assert.Equal(t, 1, result.TotalWorkouts)
	assert.Equal(t, 50, result.CaloriesBurned) // falls back to the plan's value

	// Repeating the same unit must not award again or touch counters,
	// and nothing was logged so the response reports zero calories.
	result, err = ledger.MarkExerciseDone(ctx, user.ID, plan.ID, key, 75)
	require.NoError(t, err)
	assert.True(t, result.AlreadyCounted)
	assert.Equal(t, 10, result.StreakPoints)
	assert.Equal(t, 1, result.TotalWorkouts)
	assert.Equal(t, 0, result.CaloriesBurned)

	// Only one auto-logged progress record exists.
	records, err := store.ListProgress(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Push-ups", records[0].WorkoutCompleted)
	assert.Equal(t, 50, records[0].CaloriesBurned)
}

func TestExerciseKeyNormalization(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)
	plan := testWorkoutPlan(user.ID)
	require.NoError(t, store.CreatePlan(ctx, plan))

	first, err := ledger.MarkExerciseDone(ctx, user.ID, plan.ID, internal.ExerciseKey(1, "Push-ups"), 0)
	require.NoError(t, err)
	assert.False(t, first.AlreadyCounted)

	// Same unit with different casing and spacing maps to the same key.
	repeat, err := ledger.MarkExerciseDone(ctx, user.ID, plan.ID, internal.ExerciseKey(1, "  PUSH-UPS "), 0)
	require.NoError(t, err)
	assert.True(t, repeat.AlreadyCounted)
	assert.Equal(t, 10, repeat.StreakPoints)
}

func TestExerciseRejectsUnknownUnitAndBadCalories(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)
	plan := testWorkoutPlan(user.ID)
	require.NoError(t, store.CreatePlan(ctx, plan))

	_, err := ledger.MarkExerciseDone(ctx, user.ID, plan.ID, internal.ExerciseKey(1, "Deadlift"), 0)
	assert.ErrorIs(t, err, internal.ErrInvalidUnit)

	// Day matters: Squats are on day 2, not day 1.
	_, err = ledger.MarkExerciseDone(ctx, user.ID, plan.ID, internal.ExerciseKey(1, "Squats"), 0)
	assert.ErrorIs(t, err, internal.ErrInvalidUnit)

	_, err = ledger.MarkExerciseDone(ctx, user.ID, plan.ID, internal.ExerciseKey(1, "Push-ups"), -5)
	assert.ErrorIs(t, err, internal.ErrOutOfRange)

	user2, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, user2.StreakPoints)
}

func TestExerciseAgainstSupersededPlanRejected(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)
	old := testWorkoutPlan(user.ID)
	require.NoError(t, store.CreatePlan(ctx, old))
	current := testWorkoutPlan(user.ID)
	require.NoError(t, store.CreatePlan(ctx, current))

	_, err := ledger.MarkExerciseDone(ctx, user.ID, old.ID, internal.ExerciseKey(1, "Push-ups"), 0)
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestMealToggleAwardsOnlyOnce(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)
	plan := testMealPlan(user.ID)
	require.NoError(t, store.CreatePlan(ctx, plan))

	key := internal.MealKey(1, "breakfast", "Oatmeal")

	// done: +2
	result, err := ledger.MarkMealDone(ctx, user.ID, plan.ID, key)
	require.NoError(t, err)
	assert.True(t, result.IsCompleted)
	assert.Equal(t, 2, result.PointsDelta)
	assert.Equal(t, 2, result.StreakPoints)

	// undone: checkbox off, points stay
	result, err = ledger.MarkMealDone(ctx, user.ID, plan.ID, key)
	require.NoError(t, err)
	assert.False(t, result.IsCompleted)
	assert.Equal(t, 0, result.PointsDelta)
	assert.Equal(t, 2, result.StreakPoints)

	// done again: no second award
	result, err = ledger.MarkMealDone(ctx, user.ID, plan.ID, key)
	require.NoError(t, err)
	assert.True(t, result.IsCompleted)
	assert.Equal(t, 0, result.PointsDelta)
	assert.Equal(t, 2, result.StreakPoints)
}

func TestMealRejectsUnknownUnit(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)
	plan := testMealPlan(user.ID)
	require.NoError(t, store.CreatePlan(ctx, plan))

	// Wrong slot for a known dish is a different unit.
	_, err := ledger.MarkMealDone(ctx, user.ID, plan.ID, internal.MealKey(1, "dinner", "Oatmeal"))
	assert.ErrorIs(t, err, internal.ErrInvalidUnit)
}

func TestManualCalorieLogAwardsOncePerDay(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)

	result, err := ledger.LogProgress(ctx, user.ID, &service.ProgressLogRequest{CaloriesBurned: 300, Weight: 72})
	require.NoError(t, err)
	assert.Equal(t, 5, result.PointsDelta)
	assert.Equal(t, 5, result.StreakPoints)

	// Second calorie-bearing log the same day: recorded, no points.
	result, err = ledger.LogProgress(ctx, user.ID, &service.ProgressLogRequest{CaloriesBurned: 200})
	require.NoError(t, err)
	assert.Equal(t, 0, result.PointsDelta)
	assert.Equal(t, 5, result.StreakPoints)

	records, err := store.ListProgress(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestManualCaloriesCapped(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)

	_, err := ledger.LogProgress(ctx, user.ID, &service.ProgressLogRequest{CaloriesBurned: 99999})
	require.NoError(t, err)

	records, err := store.ListProgress(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, service.MaxManualCalories, records[0].CaloriesBurned)
}

func TestZeroCalorieLogNeverAwards(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)

	result, err := ledger.LogProgress(ctx, user.ID, &service.ProgressLogRequest{Weight: 71.5, Notes: "weigh-in only"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.PointsDelta)

	// The weigh-in did not consume the daily award.
	result, err = ledger.LogProgress(ctx, user.ID, &service.ProgressLogRequest{CaloriesBurned: 150})
	require.NoError(t, err)
	assert.Equal(t, 5, result.PointsDelta)
}

func TestProgressValidationRejectsOutOfRange(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)

	_, err := ledger.LogProgress(ctx, user.ID, &service.ProgressLogRequest{Weight: 9999})
	assert.ErrorIs(t, err, internal.ErrOutOfRange)

	_, err = ledger.LogProgress(ctx, user.ID, &service.ProgressLogRequest{Weight: -5})
	assert.ErrorIs(t, err, internal.ErrOutOfRange)

	_, err = ledger.LogProgress(ctx, user.ID, &service.ProgressLogRequest{BodyFatPercent: 150})
	assert.ErrorIs(t, err, internal.ErrOutOfRange)
}

func TestZeroWeightTreatedAsUnmeasured(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)

	result, err := ledger.LogProgress(ctx, user.ID, &service.ProgressLogRequest{Weight: 0, Notes: "rest day"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.PointsDelta)

	records, err := store.ListProgress(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Zero(t, records[0].Weight)
}

func TestCharityMilestones(t *testing.T) {
	assert.Equal(t, 0, service.CharityMilestones(0))
	assert.Equal(t, 0, service.CharityMilestones(99))
	assert.Equal(t, 1, service.CharityMilestones(100))
	assert.Equal(t, 2, service.CharityMilestones(250))

	assert.Equal(t, 100, service.PointsToNextMilestone(0))
	assert.Equal(t, 100, service.PointsToNextMilestone(200))
	assert.Equal(t, 50, service.PointsToNextMilestone(250))
	assert.Equal(t, 1, service.PointsToNextMilestone(99))
}

func TestPointsSequence(t *testing.T) {
	// 3 exercises (+30), 2 meals (+4), 1 manual calorie log (+5) => 39.
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)
	workout := testWorkoutPlan(user.ID)
	require.NoError(t, store.CreatePlan(ctx, workout))
	meals := testMealPlan(user.ID)
	require.NoError(t, store.CreatePlan(ctx, meals))

	for _, key := range []string{
		internal.ExerciseKey(1, "Push-ups"),
		internal.ExerciseKey(1, "Pull-ups"),
		internal.ExerciseKey(2, "Squats"),
	} {
		_, err := ledger.MarkExerciseDone(ctx, user.ID, "", key, 0)
		require.NoError(t, err)
	}
	for _, key := range []string{
		internal.MealKey(1, "breakfast", "Oatmeal"),
		internal.MealKey(1, "lunch", "Chicken Salad"),
	} {
		_, err := ledger.MarkMealDone(ctx, user.ID, "", key)
		require.NoError(t, err)
	}
	result, err := ledger.LogProgress(ctx, user.ID, &service.ProgressLogRequest{CaloriesBurned: 250})
	require.NoError(t, err)

	assert.Equal(t, 39, result.StreakPoints)

	final, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 39, final.StreakPoints)
	assert.Equal(t, 3, final.TotalWorkouts)
	assert.Equal(t, 0, service.CharityMilestones(final.StreakPoints))
}

func TestPlanRegenerationResetsCompletionsNotPoints(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)

	first := testWorkoutPlan(user.ID)
	require.NoError(t, store.CreatePlan(ctx, first))
	_, err := ledger.MarkExerciseDone(ctx, user.ID, first.ID, internal.ExerciseKey(1, "Push-ups"), 0)
	require.NoError(t, err)

	// Regenerate: same content, new plan instance.
	second := testWorkoutPlan(user.ID)
	require.NoError(t, store.CreatePlan(ctx, second))

	recs, err := ledger.Completions(ctx, user.ID, second.ID)
	require.NoError(t, err)
	assert.Empty(t, recs, "new plan starts with a clean slate")

	// Same exercise on the new plan is a fresh unit and awards again.
	result, err := ledger.MarkExerciseDone(ctx, user.ID, second.ID, internal.ExerciseKey(1, "Push-ups"), 0)
	require.NoError(t, err)
	assert.False(t, result.AlreadyCounted)
	assert.Equal(t, 20, result.StreakPoints)
}

func TestNoActivePlan(t *testing.T) {
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)

	_, err := ledger.MarkExerciseDone(ctx, user.ID, "", internal.ExerciseKey(1, "Push-ups"), 0)
	assert.ErrorIs(t, err, internal.ErrNoActivePlan)

	_, err = ledger.MarkMealDone(ctx, user.ID, "", internal.MealKey(1, "breakfast", "Oatmeal"))
	assert.ErrorIs(t, err, internal.ErrNoActivePlan)
}
