package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyNormalization(t *testing.T) {
	assert.Equal(t, "1|push-ups", ExerciseKey(1, "Push-ups"))
	assert.Equal(t, ExerciseKey(1, "Push-ups"), ExerciseKey(1, "  PUSH-UPS  "))
	assert.Equal(t, ExerciseKey(1, "bench press"), ExerciseKey(1, "Bench   Press"))

	// Day is part of the identity.
	assert.NotEqual(t, ExerciseKey(1, "Squats"), ExerciseKey(2, "Squats"))

	assert.Equal(t, "3|lunch|chicken salad", MealKey(3, "Lunch", "Chicken Salad"))
	// Same dish in a different slot is a different unit.
	assert.NotEqual(t, MealKey(1, "lunch", "Oatmeal"), MealKey(1, "breakfast", "Oatmeal"))
}

func TestPlanUnitKeys(t *testing.T) {
	plan := &Plan{
		Kind: PlanWorkout,
		Workout: &WorkoutPlan{
			Days: []WorkoutDay{
				{Day: 1, Exercises: []Exercise{{Name: "Push-ups"}, {Name: "Plank"}}},
				{Day: 2, Exercises: []Exercise{{Name: "Squats"}}},
			},
		},
	}

	keys := plan.UnitKeys()
	assert.Len(t, keys, 3)
	assert.Equal(t, UnitExercise, keys[ExerciseKey(1, "Push-ups")])

	assert.True(t, plan.HasUnit(ExerciseKey(2, "Squats"), UnitExercise))
	assert.False(t, plan.HasUnit(ExerciseKey(1, "Squats"), UnitExercise))
	// Right key, wrong kind.
	assert.False(t, plan.HasUnit(ExerciseKey(1, "Push-ups"), UnitMeal))
}
