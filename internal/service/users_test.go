package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/service"
)

func validRegister() *service.RegisterRequest {
	return &service.RegisterRequest{
		Email:    "jo@example.com",
		Username: "jo_fit",
		Password: "supersecret1",
		FullName: "Jo Fit",
		Age:      28,
		Gender:   "female",
		Height:   168,
		Weight:   62,
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	user, err := service.RegisterUser(ctx, store, validRegister())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, internal.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.Equal(t, 0, user.StreakPoints)
	// Profile defaults fill unset preferences.
	assert.Equal(t, "beginner", user.FitnessLevel)
	assert.Equal(t, "maintenance", user.FitnessGoal)
	assert.NotEqual(t, "supersecret1", user.HashedPassword)

	byName, err := service.AuthenticateUser(ctx, store, "jo_fit", "supersecret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := service.AuthenticateUser(ctx, store, "jo@example.com", "supersecret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = service.AuthenticateUser(ctx, store, "jo_fit", "wrongpassword")
	assert.ErrorIs(t, err, internal.ErrNotFound)

	_, err = service.AuthenticateUser(ctx, store, "stranger", "supersecret1")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*service.RegisterRequest)
	}{
		{"bad email", func(r *service.RegisterRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *service.RegisterRequest) { r.Password = "short" }},
		{"short username", func(r *service.RegisterRequest) { r.Username = "ab" }},
		{"age too low", func(r *service.RegisterRequest) { r.Age = 3 }},
		{"bad goal", func(r *service.RegisterRequest) { r.FitnessGoal = "get_swole" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegister()
			tc.mutate(req)
			assert.Error(t, service.ValidateRegisterRequest(req))
		})
	}
	assert.NoError(t, service.ValidateRegisterRequest(validRegister()))
}

func TestRegisterDuplicateConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := service.RegisterUser(ctx, store, validRegister())
	require.NoError(t, err)

	_, err = service.RegisterUser(ctx, store, validRegister())
	assert.ErrorIs(t, err, internal.ErrConflict)
}

func TestUpdateProfileAppliesNonZeroFields(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	user, err := service.RegisterUser(ctx, store, validRegister())
	require.NoError(t, err)

	updated, err := service.UpdateProfile(ctx, store, user, &service.ProfileUpdateRequest{
		Weight:      60,
		FitnessGoal: "weight_loss",
	})
	require.NoError(t, err)
	assert.Equal(t, 60.0, updated.Weight)
	assert.Equal(t, "weight_loss", updated.FitnessGoal)
	// Untouched fields survive.
	assert.Equal(t, "Jo Fit", updated.FullName)
	assert.Equal(t, 168.0, updated.Height)

	persisted, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "weight_loss", persisted.FitnessGoal)
}

func TestCalculateStats(t *testing.T) {
	user := &internal.User{StreakPoints: 117, TotalWorkouts: 9}
	records := []internal.ProgressRecord{
		{CaloriesBurned: 300, WorkoutCompleted: "Push-ups"},
		{CaloriesBurned: 250},
		{Weight: 70},
	}
	stats := service.CalculateStats(user, records)
	assert.Equal(t, 9, stats.TotalWorkouts)
	assert.Equal(t, 550, stats.TotalCaloriesBurned)
	assert.Equal(t, 117, stats.StreakPoints)
	assert.Equal(t, 1, stats.CharityMilestones)
	assert.Equal(t, 83, stats.PointsToNextMilestone)
	assert.Equal(t, 3, stats.RecordsCount)
}

func TestProgressStatsCoverAllRecords(t *testing.T) {
	// Stats must aggregate the full history, not just the windowed
	// default used by the history listing.
	ctx := context.Background()
	ledger, store := newTestLedger(t)
	user := createTestUser(t, store)

	for i := 0; i < 35; i++ {
		_, err := ledger.LogProgress(ctx, user.ID, &service.ProgressLogRequest{CaloriesBurned: 100})
		require.NoError(t, err)
	}

	fresh, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)

	stats, err := service.ProgressStats(ctx, store, fresh)
	require.NoError(t, err)
	assert.Equal(t, 35, stats.RecordsCount)
	assert.Equal(t, 3500, stats.TotalCaloriesBurned)

	// The history listing still defaults to the most recent 30.
	history, err := service.ProgressHistory(ctx, store, user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 30)
}
