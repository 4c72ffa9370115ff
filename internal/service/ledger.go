package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/storage"
)

// Streak point rules, enforced server-side to prevent farming:
//   - +10 pts per exercise completed, awarded once per unit key per plan.
//     Unchecking and re-checking never re-awards.
//   - +2 pts per meal completed, same award-once rule; the checkbox itself
//     toggles freely.
//   - +5 pts for the first manual calorie log on a calendar day.
//   - Every 100 pts is one charity milestone.
const (
	ExercisePoints    = 10
	MealPoints        = 2
	ProgressLogPoints = 5
	MilestoneInterval = 100

	// Manual calorie entries are capped to a realistic max.
	MaxManualCalories = 2000
)

// CharityMilestones converts streak points into earned donation milestones.
func CharityMilestones(streakPoints int) int {
	return streakPoints / MilestoneInterval
}

// PointsToNextMilestone returns how many points remain until the next
// milestone. On an exact boundary a full cycle remains, never zero.
func PointsToNextMilestone(streakPoints int) int {
	return MilestoneInterval - streakPoints%MilestoneInterval
}

// CompletionCache is a read-through view of completion records. The store is
// authoritative; entries are dropped on every write and on plan regeneration.
type CompletionCache interface {
	GetCompletions(ctx context.Context, userID, planID string) ([]internal.CompletionRecord, bool)
	SetCompletions(ctx context.Context, userID, planID string, records []internal.CompletionRecord)
	Invalidate(ctx context.Context, userID, planID string)
}

// Ledger tracks which plan units a user has completed and awards streak
// points exactly once per unit. All mutations run as a single transactional
// read-modify-write keyed by the user.
type Ledger struct {
	store  storage.Store
	cache  CompletionCache
	logger internal.Logger
}

func NewLedger(store storage.Store, cache CompletionCache, logger internal.Logger) *Ledger {
	return &Ledger{store: store, cache: cache, logger: logger}
}

type ExerciseResult struct {
	UnitKey           string `json:"unit_key"`
	AlreadyCounted    bool   `json:"already_counted"`
	CaloriesBurned    int    `json:"calories_burned"`
	StreakPoints      int    `json:"streak_points"`
	TotalWorkouts     int    `json:"total_workouts"`
	CharityMilestones int    `json:"charity_milestones"`
}

type MealResult struct {
	UnitKey           string `json:"unit_key"`
	IsCompleted       bool   `json:"is_completed"`
	PointsDelta       int    `json:"points_delta"`
	StreakPoints      int    `json:"streak_points"`
	CharityMilestones int    `json:"charity_milestones"`
}

type ProgressResult struct {
	ID           string `json:"id"`
	StreakPoints int    `json:"streak_points"`
	PointsDelta  int    `json:"points_delta"`
}

// currentPlan resolves the user's active plan of the given kind and checks
// that planID (when supplied) refers to it. Completions against superseded
// plans are rejected rather than silently recorded.
func (l *Ledger) currentPlan(ctx context.Context, userID, planID string, kind internal.PlanKind) (*internal.Plan, error) {
	plan, err := l.store.GetActivePlan(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	if planID != "" && planID != plan.ID {
		return nil, internal.ErrNotFound
	}
	return plan, nil
}

// MarkExerciseDone records an exercise completion. The first completion of a
// unit key awards points and logs a progress record; repeats return
// AlreadyCounted without touching any state.
func (l *Ledger) MarkExerciseDone(ctx context.Context, userID, planID, unitKey string, calories int) (*ExerciseResult, error) {
	if calories < 0 {
		return nil, internal.ErrOutOfRange
	}
	plan, err := l.currentPlan(ctx, userID, planID, internal.PlanWorkout)
	if err != nil {
		return nil, err
	}
	exercise, ok := findExercise(plan, unitKey)
	if !ok {
		return nil, internal.ErrInvalidUnit
	}
	if calories == 0 {
		calories = exercise.CaloriesBurn
	}

	var result ExerciseResult
	err = l.store.UpdateUserState(ctx, userID, func(tx storage.LedgerTx) error {
		user, err := tx.User()
		if err != nil {
			return err
		}

		rec, err := tx.Completion(plan.ID, unitKey)
		if err != nil && !errors.Is(err, internal.ErrNotFound) {
			return err
		}
		if rec != nil && rec.Awarded {
			// Nothing was logged this call, so report zero calories.
			result = ExerciseResult{
				UnitKey:           unitKey,
				AlreadyCounted:    true,
				CaloriesBurned:    0,
				StreakPoints:      user.StreakPoints,
				TotalWorkouts:     user.TotalWorkouts,
				CharityMilestones: CharityMilestones(user.StreakPoints),
			}
			return nil
		}

		now := time.Now()
		if err := tx.UpsertCompletion(&internal.CompletionRecord{
			UserID:      userID,
			PlanID:      plan.ID,
			UnitKey:     unitKey,
			Kind:        internal.UnitExercise,
			Done:        true,
			Awarded:     true,
			CompletedAt: now,
		}); err != nil {
			return err
		}
		if err := tx.InsertProgress(&internal.ProgressRecord{
			ID:               uuid.NewString(),
			UserID:           userID,
			Date:             now,
			CaloriesBurned:   calories,
			WorkoutCompleted: exercise.Name,
		}); err != nil {
			return err
		}

		user.StreakPoints += ExercisePoints
		user.TotalWorkouts++
		if err := tx.SaveUser(user); err != nil {
			return err
		}

		result = ExerciseResult{
			UnitKey:           unitKey,
			CaloriesBurned:    calories,
			StreakPoints:      user.StreakPoints,
			TotalWorkouts:     user.TotalWorkouts,
			CharityMilestones: CharityMilestones(user.StreakPoints),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyCounted {
		l.cache.Invalidate(ctx, userID, plan.ID)
		l.logger.Infof("exercise completed user=%s unit=%s points=%d", userID, unitKey, result.StreakPoints)
	}
	return &result, nil
}

// MarkMealDone toggles a meal's checkbox state. Points are awarded on the
// first-ever true transition only; toggling off keeps them. The asymmetry is
// deliberate: the checkbox is display state, the award is a ledger entry.
func (l *Ledger) MarkMealDone(ctx context.Context, userID, planID, unitKey string) (*MealResult, error) {
	plan, err := l.currentPlan(ctx, userID, planID, internal.PlanNutrition)
	if err != nil {
		return nil, err
	}
	if !plan.HasUnit(unitKey, internal.UnitMeal) {
		return nil, internal.ErrInvalidUnit
	}

	var result MealResult
	err = l.store.UpdateUserState(ctx, userID, func(tx storage.LedgerTx) error {
		user, err := tx.User()
		if err != nil {
			return err
		}

		rec, err := tx.Completion(plan.ID, unitKey)
		if err != nil && !errors.Is(err, internal.ErrNotFound) {
			return err
		}

		completing := rec == nil || !rec.Done
		award := completing && (rec == nil || !rec.Awarded)

		if err := tx.UpsertCompletion(&internal.CompletionRecord{
			UserID:      userID,
			PlanID:      plan.ID,
			UnitKey:     unitKey,
			Kind:        internal.UnitMeal,
			Done:        completing,
			Awarded:     award || (rec != nil && rec.Awarded),
			CompletedAt: time.Now(),
		}); err != nil {
			return err
		}

		if award {
			user.StreakPoints += MealPoints
			if err := tx.SaveUser(user); err != nil {
				return err
			}
		}

		delta := 0
		if award {
			delta = MealPoints
		}
		result = MealResult{
			UnitKey:           unitKey,
			IsCompleted:       completing,
			PointsDelta:       delta,
			StreakPoints:      user.StreakPoints,
			CharityMilestones: CharityMilestones(user.StreakPoints),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.cache.Invalidate(ctx, userID, plan.ID)
	return &result, nil
}

// Zero-valued measurements decode the same as absent ones, so omitempty
// treats an explicit 0 as "not measured" rather than rejecting it.
type ProgressLogRequest struct {
	Weight             float64 `json:"weight,omitempty" validate:"omitempty,gt=0,lte=500"`
	BodyFatPercent     float64 `json:"body_fat_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	MuscleMass         float64 `json:"muscle_mass,omitempty" validate:"omitempty,gt=0,lte=300"`
	WaistCircumference float64 `json:"waist_circumference,omitempty" validate:"omitempty,gt=0,lte=500"`
	CaloriesBurned     int     `json:"calories_burned,omitempty" validate:"omitempty,gte=0"`
	Notes              string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func ValidateProgressLogRequest(body *ProgressLogRequest) error {
	if err := validate.Struct(body); err != nil {
		return internal.ErrOutOfRange
	}
	return nil
}

// LogProgress saves a manual progress entry. The first calorie-bearing entry
// on a calendar day awards points; later entries that day never do.
func (l *Ledger) LogProgress(ctx context.Context, userID string, body *ProgressLogRequest) (*ProgressResult, error) {
	if err := ValidateProgressLogRequest(body); err != nil {
		return nil, err
	}
	if body.CaloriesBurned > MaxManualCalories {
		body.CaloriesBurned = MaxManualCalories
	}

	var result ProgressResult
	err := l.store.UpdateUserState(ctx, userID, func(tx storage.LedgerTx) error {
		user, err := tx.User()
		if err != nil {
			return err
		}

		now := time.Now()
		rec := &internal.ProgressRecord{
			ID:                 uuid.NewString(),
			UserID:             userID,
			Date:               now,
			Weight:             body.Weight,
			BodyFatPercent:     body.BodyFatPercent,
			MuscleMass:         body.MuscleMass,
			WaistCircumference: body.WaistCircumference,
			CaloriesBurned:     body.CaloriesBurned,
			Notes:              body.Notes,
		}

		delta := 0
		if body.CaloriesBurned > 0 {
			logged, err := tx.HasManualCalorieLogOn(now)
			if err != nil {
				return err
			}
			if !logged {
				delta = ProgressLogPoints
			}
		}

		if err := tx.InsertProgress(rec); err != nil {
			return err
		}
		if delta > 0 {
			user.StreakPoints += delta
			if err := tx.SaveUser(user); err != nil {
				return err
			}
		}

		result = ProgressResult{ID: rec.ID, StreakPoints: user.StreakPoints, PointsDelta: delta}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Completions returns the persisted checkbox state for a plan, served from
// the cache when warm.
func (l *Ledger) Completions(ctx context.Context, userID, planID string) ([]internal.CompletionRecord, error) {
	if records, ok := l.cache.GetCompletions(ctx, userID, planID); ok {
		return records, nil
	}
	records, err := l.store.ListCompletions(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	l.cache.SetCompletions(ctx, userID, planID, records)
	return records, nil
}

func findExercise(plan *internal.Plan, unitKey string) (*internal.Exercise, bool) {
	if plan.Workout == nil {
		return nil, false
	}
	for _, day := range plan.Workout.Days {
		for i, ex := range day.Exercises {
			if internal.ExerciseKey(day.Day, ex.Name) == unitKey {
				return &day.Exercises[i], true
			}
		}
	}
	return nil, false
}
