package internal

import (
	"fmt"
	"strings"
)

// Unit keys identify one exercise or meal inside one plan instance. They are
// derived from the plan day and the unit name so they survive client
// re-renders; casing and stray whitespace in names must not change the key.

func normalizeKeyPart(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ExerciseKey returns the unit key for an exercise on a given plan day.
func ExerciseKey(day int, name string) string {
	return fmt.Sprintf("%d|%s", day, normalizeKeyPart(name))
}

// MealKey returns the unit key for a meal. The meal type is part of the key
// because the same dish can appear in more than one slot on the same day.
func MealKey(day int, mealType, name string) string {
	return fmt.Sprintf("%d|%s|%s", day, normalizeKeyPart(mealType), normalizeKeyPart(name))
}

// UnitKeys returns every valid unit key of the plan, used to reject
// completion requests for units the plan does not contain.
func (p *Plan) UnitKeys() map[string]UnitKind {
	keys := make(map[string]UnitKind)
	if p.Workout != nil {
		for _, day := range p.Workout.Days {
			for _, ex := range day.Exercises {
				keys[ExerciseKey(day.Day, ex.Name)] = UnitExercise
			}
		}
	}
	if p.Nutrition != nil {
		for _, day := range p.Nutrition.Days {
			for _, meal := range day.Meals {
				keys[MealKey(day.Day, meal.MealType, meal.Name)] = UnitMeal
			}
		}
	}
	return keys
}

// HasUnit reports whether unitKey references a unit present in the plan.
func (p *Plan) HasUnit(unitKey string, kind UnitKind) bool {
	k, ok := p.UnitKeys()[unitKey]
	return ok && k == kind
}
