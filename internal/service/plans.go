package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/storage"
)

// PlanGenerator produces plan content, normally backed by a language model
// with a static fallback.
type PlanGenerator interface {
	GenerateWorkoutPlan(ctx context.Context, user *internal.User, days int) (*internal.WorkoutPlan, error)
	GenerateMealPlan(ctx context.Context, user *internal.User, days int, allergies []string) (*internal.MealPlan, error)
	Chat(ctx context.Context, user *internal.User, history []internal.ChatMessage, message string) (string, error)
}

type Plans struct {
	store     storage.Store
	generator PlanGenerator
	ledger    *Ledger
	cache     CompletionCache
	logger    internal.Logger
}

func NewPlans(store storage.Store, generator PlanGenerator, ledger *Ledger, cache CompletionCache, logger internal.Logger) *Plans {
	return &Plans{store: store, generator: generator, ledger: ledger, cache: cache, logger: logger}
}

type WorkoutGenerateRequest struct {
	Days int `json:"days" validate:"omitempty,gte=1,lte=14"`
}

type MealGenerateRequest struct {
	Days      int      `json:"days" validate:"omitempty,gte=1,lte=14"`
	Allergies []string `json:"allergies,omitempty" validate:"dive,required"`
}

// GenerateWorkout creates a fresh workout plan and supersedes the previous
// one. The superseded plan's completion cache entry is dropped so stale
// checkbox state cannot leak into the new plan.
func (p *Plans) GenerateWorkout(ctx context.Context, user *internal.User, body *WorkoutGenerateRequest) (*internal.Plan, error) {
	if err := validate.Struct(body); err != nil {
		return nil, internal.ErrOutOfRange
	}
	days := body.Days
	if days == 0 {
		days = 7
	}

	content, err := p.generator.GenerateWorkoutPlan(ctx, user, days)
	if err != nil {
		return nil, err
	}

	previous, _ := p.store.GetActivePlan(ctx, user.ID, internal.PlanWorkout)

	plan := &internal.Plan{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Kind:      internal.PlanWorkout,
		Title:     content.Title,
		Workout:   content,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := p.store.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	if previous != nil {
		p.cache.Invalidate(ctx, user.ID, previous.ID)
	}
	p.logger.Infof("workout plan generated user=%s plan=%s days=%d", user.ID, plan.ID, days)
	return plan, nil
}

func (p *Plans) GenerateMealPlan(ctx context.Context, user *internal.User, body *MealGenerateRequest) (*internal.Plan, error) {
	if err := validate.Struct(body); err != nil {
		return nil, internal.ErrOutOfRange
	}
	days := body.Days
	if days == 0 {
		days = 7
	}

	content, err := p.generator.GenerateMealPlan(ctx, user, days, body.Allergies)
	if err != nil {
		return nil, err
	}

	previous, _ := p.store.GetActivePlan(ctx, user.ID, internal.PlanNutrition)

	plan := &internal.Plan{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Kind:      internal.PlanNutrition,
		Title:     content.Title,
		Nutrition: content,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := p.store.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	if previous != nil {
		p.cache.Invalidate(ctx, user.ID, previous.ID)
	}
	p.logger.Infof("nutrition plan generated user=%s plan=%s days=%d", user.ID, plan.ID, days)
	return plan, nil
}

func (p *Plans) Current(ctx context.Context, userID string, kind internal.PlanKind) (*internal.Plan, error) {
	return p.store.GetActivePlan(ctx, userID, kind)
}

type PlanSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Plans) History(ctx context.Context, userID string, kind internal.PlanKind, limit int) ([]PlanSummary, error) {
	plans, err := p.store.ListPlans(ctx, userID, kind, limit)
	if err != nil {
		return nil, err
	}
	summaries := make([]PlanSummary, 0, len(plans))
	for _, plan := range plans {
		summaries = append(summaries, PlanSummary{
			ID:        plan.ID,
			Title:     plan.Title,
			IsActive:  plan.IsActive,
			CreatedAt: plan.CreatedAt,
		})
	}
	return summaries, nil
}

// MealView is one meal flattened out of the plan with its completion state
// merged in, shaped for the client's checkbox list.
type MealView struct {
	internal.Meal
	Day         int    `json:"day"`
	UnitKey     string `json:"unit_key"`
	IsCompleted bool   `json:"is_completed"`
}

type MealPlanView struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	DailyCalories int             `json:"daily_calories"`
	Macros        internal.Macros `json:"macros"`
	Meals         []MealView      `json:"meals"`
	GroceryList   []string        `json:"grocery_list,omitempty"`
}

// MealPlanView merges persisted completion records into the plan content.
// The server records are the source of truth; whatever the client cached is
// discarded on load.
func (p *Plans) MealPlanView(ctx context.Context, plan *internal.Plan) (*MealPlanView, error) {
	records, err := p.ledger.Completions(ctx, plan.UserID, plan.ID)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(records))
	for _, rec := range records {
		done[rec.UnitKey] = rec.Done
	}

	view := &MealPlanView{
		ID:            plan.ID,
		Title:         plan.Title,
		DailyCalories: plan.Nutrition.DailyCalories,
		Macros:        plan.Nutrition.Macros,
		GroceryList:   plan.Nutrition.GroceryList,
	}
	for _, day := range plan.Nutrition.Days {
		for _, meal := range day.Meals {
			key := internal.MealKey(day.Day, meal.MealType, meal.Name)
			view.Meals = append(view.Meals, MealView{
				Meal:        meal,
				Day:         day.Day,
				UnitKey:     key,
				IsCompleted: done[key],
			})
		}
	}
	return view, nil
}

// CompletedExercises returns the unit-key -> done map for the workout plan.
func (p *Plans) CompletedExercises(ctx context.Context, plan *internal.Plan) (map[string]bool, error) {
	records, err := p.ledger.Completions(ctx, plan.UserID, plan.ID)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.Kind == internal.UnitExercise {
			done[rec.UnitKey] = rec.Done
		}
	}
	return done, nil
}
