package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/storage"
)

func newStore(t *testing.T) *storage.FileStorage {
	t.Helper()
	store, err := storage.NewFileStorage(t.TempDir(), internal.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedUser(t *testing.T, store *storage.FileStorage) *internal.User {
	t.Helper()
	user := &internal.User{
		ID:       uuid.NewString(),
		Email:    "sam@example.com",
		Username: "sam",
		IsActive: true,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestUserCRUDAndLoginLookup(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := seedUser(t, store)

	byEmail, err := store.GetUserByLogin(ctx, "sam@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byName, err := store.GetUserByLogin(ctx, "sam")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = store.GetUserByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, internal.ErrNotFound)

	user.FullName = "Sam Example"
	require.NoError(t, store.UpdateUser(ctx, user))
	got, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam Example", got.FullName)

	require.NoError(t, store.DeleteUser(ctx, user.ID))
	_, err = store.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestDuplicateUserConflicts(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedUser(t, store)

	dup := &internal.User{ID: uuid.NewString(), Email: "sam@example.com", Username: "other"}
	assert.ErrorIs(t, store.CreateUser(ctx, dup), internal.ErrConflict)

	dup = &internal.User{ID: uuid.NewString(), Email: "other@example.com", Username: "sam"}
	assert.ErrorIs(t, store.CreateUser(ctx, dup), internal.ErrConflict)
}

func TestCreatePlanDeactivatesPrevious(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := seedUser(t, store)

	first := &internal.Plan{
		ID: uuid.NewString(), UserID: user.ID, Kind: internal.PlanWorkout,
		Workout: &internal.WorkoutPlan{}, IsActive: true, CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreatePlan(ctx, first))

	second := &internal.Plan{
		ID: uuid.NewString(), UserID: user.ID, Kind: internal.PlanWorkout,
		Workout: &internal.WorkoutPlan{}, IsActive: true, CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreatePlan(ctx, second))

	active, err := store.GetActivePlan(ctx, user.ID, internal.PlanWorkout)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	// The old plan survives, deactivated.
	old, err := store.GetPlan(ctx, user.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)

	plans, err := store.ListPlans(ctx, user.ID, internal.PlanWorkout, 0)
	require.NoError(t, err)
	assert.Len(t, plans, 2)
}

func TestPlansAreKindScoped(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := seedUser(t, store)

	workout := &internal.Plan{
		ID: uuid.NewString(), UserID: user.ID, Kind: internal.PlanWorkout,
		Workout: &internal.WorkoutPlan{}, IsActive: true, CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreatePlan(ctx, workout))

	nutrition := &internal.Plan{
		ID: uuid.NewString(), UserID: user.ID, Kind: internal.PlanNutrition,
		Nutrition: &internal.MealPlan{}, IsActive: true, CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreatePlan(ctx, nutrition))

	// A nutrition plan must not deactivate the workout plan.
	active, err := store.GetActivePlan(ctx, user.ID, internal.PlanWorkout)
	require.NoError(t, err)
	assert.Equal(t, workout.ID, active.ID)

	_, err = store.GetActivePlan(ctx, user.ID, internal.PlanNutrition)
	require.NoError(t, err)
}

func TestGetActivePlanWhenNone(t *testing.T) {
	store := newStore(t)
	user := seedUser(t, store)

	_, err := store.GetActivePlan(context.Background(), user.ID, internal.PlanWorkout)
	assert.ErrorIs(t, err, internal.ErrNoActivePlan)
}

func TestUpdateUserStateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := seedUser(t, store)

	boom := errors.New("boom")
	err := store.UpdateUserState(ctx, user.ID, func(tx storage.LedgerTx) error {
		u, err := tx.User()
		require.NoError(t, err)
		u.StreakPoints = 500
		require.NoError(t, tx.SaveUser(u))
		require.NoError(t, tx.UpsertCompletion(&internal.CompletionRecord{
			UserID: user.ID, PlanID: "p1", UnitKey: "1|push-ups",
			Kind: internal.UnitExercise, Done: true, Awarded: true,
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StreakPoints, "user mutation rolled back")

	recs, err := store.ListCompletions(ctx, user.ID, "p1")
	require.NoError(t, err)
	assert.Empty(t, recs, "completion write rolled back")
}

func TestUpdateUserStateCommits(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := seedUser(t, store)

	err := store.UpdateUserState(ctx, user.ID, func(tx storage.LedgerTx) error {
		u, err := tx.User()
		if err != nil {
			return err
		}
		u.StreakPoints += 10
		if err := tx.SaveUser(u); err != nil {
			return err
		}
		return tx.InsertProgress(&internal.ProgressRecord{
			ID: uuid.NewString(), UserID: user.ID, Date: time.Now(), CaloriesBurned: 100,
		})
	})
	require.NoError(t, err)

	got, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.StreakPoints)

	recs, err := store.ListProgress(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestHasManualCalorieLogOnIgnoresAutoLogs(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := seedUser(t, store)

	// Auto-logged by an exercise completion: has a workout name.
	err := store.UpdateUserState(ctx, user.ID, func(tx storage.LedgerTx) error {
		return tx.InsertProgress(&internal.ProgressRecord{
			ID: uuid.NewString(), UserID: user.ID, Date: time.Now(),
			CaloriesBurned: 50, WorkoutCompleted: "Push-ups",
		})
	})
	require.NoError(t, err)

	err = store.UpdateUserState(ctx, user.ID, func(tx storage.LedgerTx) error {
		logged, err := tx.HasManualCalorieLogOn(time.Now())
		require.NoError(t, err)
		assert.False(t, logged, "auto-log must not consume the daily manual award")
		return nil
	})
	require.NoError(t, err)
}

func TestCompletionPersistenceAcrossReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := storage.NewFileStorage(dir, internal.NopLogger())
	require.NoError(t, err)
	user := seedUser(t, store)
	err = store.UpdateUserState(ctx, user.ID, func(tx storage.LedgerTx) error {
		u, _ := tx.User()
		u.StreakPoints = 12
		if err := tx.SaveUser(u); err != nil {
			return err
		}
		return tx.UpsertCompletion(&internal.CompletionRecord{
			UserID: user.ID, PlanID: "p1", UnitKey: "1|push-ups",
			Kind: internal.UnitExercise, Done: true, Awarded: true, CompletedAt: time.Now(),
		})
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reloaded, err := storage.NewFileStorage(dir, internal.NopLogger())
	require.NoError(t, err)
	defer reloaded.Close()

	got, err := reloaded.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.StreakPoints)

	recs, err := reloaded.ListCompletions(ctx, user.ID, "p1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Awarded)
}

func TestChatSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	user := seedUser(t, store)

	_, err := store.GetChatSession(ctx, user.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)

	session := &internal.ChatSession{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Messages: []internal.ChatMessage{
			{Role: "user", Content: "hi", Timestamp: time.Now()},
			{Role: "assistant", Content: "hello!", Timestamp: time.Now()},
		},
		UpdatedAt: time.Now(),
	}
	require.NoError(t, store.SaveChatSession(ctx, session))

	got, err := store.GetChatSession(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, "hello!", got.Messages[1].Content)
}
