package planner

import (
	"fmt"

	"github.com/yourname/fitcoach/internal"
)

// Static plans served when the model is unavailable or returns garbage, so a
// new user always gets something to work with.

func FallbackWorkoutPlan(days int) *internal.WorkoutPlan {
	templates := []internal.WorkoutDay{
		{
			Name:  "Full Body Strength",
			Focus: "full body",
			Exercises: []internal.Exercise{
				{Name: "Push-ups", Sets: 3, Reps: "10-15", RestSeconds: 60, Description: "Keep your core tight and lower until your chest nearly touches the floor.", MuscleGroup: "chest", CaloriesBurn: 50},
				{Name: "Bodyweight Squats", Sets: 3, Reps: "15-20", RestSeconds: 60, Description: "Sit back into your heels, knees tracking over your toes.", MuscleGroup: "legs", CaloriesBurn: 60},
				{Name: "Plank", Sets: 3, Reps: "30-60 seconds", RestSeconds: 45, Description: "Hold a straight line from head to heels.", MuscleGroup: "core", CaloriesBurn: 30},
			},
			DurationMinutes: 30,
			TotalCalories:   140,
		},
		{
			Name:  "Cardio & Core",
			Focus: "cardio",
			Exercises: []internal.Exercise{
				{Name: "Jumping Jacks", Sets: 3, Reps: "30 seconds", RestSeconds: 30, Description: "Keep a steady rhythm.", MuscleGroup: "full body", CaloriesBurn: 40},
				{Name: "Mountain Climbers", Sets: 3, Reps: "20 per leg", RestSeconds: 45, Description: "Drive knees toward your chest from a plank position.", MuscleGroup: "core", CaloriesBurn: 50},
				{Name: "Bicycle Crunches", Sets: 3, Reps: "15 per side", RestSeconds: 45, Description: "Rotate your torso and touch elbow to opposite knee.", MuscleGroup: "core", CaloriesBurn: 35},
			},
			DurationMinutes: 25,
			TotalCalories:   125,
		},
		{
			Name:  "Lower Body",
			Focus: "legs",
			Exercises: []internal.Exercise{
				{Name: "Lunges", Sets: 3, Reps: "10 per leg", RestSeconds: 60, Description: "Step forward and lower your back knee toward the floor.", MuscleGroup: "legs", CaloriesBurn: 55},
				{Name: "Glute Bridges", Sets: 3, Reps: "15", RestSeconds: 45, Description: "Squeeze your glutes at the top of each rep.", MuscleGroup: "glutes", CaloriesBurn: 40},
				{Name: "Calf Raises", Sets: 3, Reps: "20", RestSeconds: 30, Description: "Rise onto your toes with full range of motion.", MuscleGroup: "calves", CaloriesBurn: 25},
			},
			DurationMinutes: 30,
			TotalCalories:   120,
		},
	}

	plan := &internal.WorkoutPlan{Title: fmt.Sprintf("%d-Day Starter Workout Plan", days)}
	for i := 0; i < days; i++ {
		day := templates[i%len(templates)]
		day.Day = i + 1
		plan.Days = append(plan.Days, day)
	}
	return plan
}

func FallbackMealPlan(days, dailyCalories int) *internal.MealPlan {
	mealTemplates := [][]internal.Meal{
		{
			{MealType: "breakfast", Name: "Oatmeal with Berries", Description: "Rolled oats topped with mixed berries and a spoon of honey.", Calories: 350, Protein: 12, Carbs: 60, Fat: 8, Ingredients: []string{"rolled oats", "mixed berries", "honey", "milk"}, PrepTime: "10 minutes"},
			{MealType: "lunch", Name: "Grilled Chicken Salad", Description: "Grilled chicken breast over leafy greens with olive oil dressing.", Calories: 450, Protein: 40, Carbs: 20, Fat: 22, Ingredients: []string{"chicken breast", "mixed greens", "olive oil", "cherry tomatoes"}, PrepTime: "20 minutes"},
			{MealType: "dinner", Name: "Baked Salmon with Rice", Description: "Oven-baked salmon with brown rice and steamed broccoli.", Calories: 550, Protein: 38, Carbs: 50, Fat: 20, Ingredients: []string{"salmon fillet", "brown rice", "broccoli", "lemon"}, PrepTime: "30 minutes"},
			{MealType: "snack", Name: "Greek Yogurt with Nuts", Description: "Plain Greek yogurt with a handful of almonds.", Calories: 200, Protein: 15, Carbs: 12, Fat: 10, Ingredients: []string{"greek yogurt", "almonds"}, PrepTime: "2 minutes"},
		},
		{
			{MealType: "breakfast", Name: "Veggie Scramble", Description: "Eggs scrambled with spinach, peppers and onion.", Calories: 320, Protein: 20, Carbs: 10, Fat: 22, Ingredients: []string{"eggs", "spinach", "bell pepper", "onion"}, PrepTime: "15 minutes"},
			{MealType: "lunch", Name: "Lentil Soup with Bread", Description: "Hearty lentil soup served with whole grain bread.", Calories: 420, Protein: 22, Carbs: 60, Fat: 10, Ingredients: []string{"lentils", "carrot", "celery", "whole grain bread"}, PrepTime: "35 minutes"},
			{MealType: "dinner", Name: "Turkey Stir-fry", Description: "Lean turkey stir-fried with mixed vegetables over rice.", Calories: 520, Protein: 35, Carbs: 55, Fat: 15, Ingredients: []string{"ground turkey", "mixed vegetables", "rice", "soy sauce"}, PrepTime: "25 minutes"},
			{MealType: "snack", Name: "Apple with Peanut Butter", Description: "Sliced apple with a tablespoon of peanut butter.", Calories: 180, Protein: 5, Carbs: 25, Fat: 8, Ingredients: []string{"apple", "peanut butter"}, PrepTime: "2 minutes"},
		},
	}

	plan := &internal.MealPlan{
		Title:         fmt.Sprintf("%d-Day Balanced Nutrition Plan", days),
		DailyCalories: dailyCalories,
		Macros:        internal.Macros{Protein: float64(dailyCalories) * 0.30 / 4, Carbs: float64(dailyCalories) * 0.40 / 4, Fat: float64(dailyCalories) * 0.30 / 9},
		GroceryList: []string{
			"rolled oats", "mixed berries", "eggs", "spinach", "chicken breast",
			"salmon fillet", "brown rice", "lentils", "greek yogurt", "almonds",
			"mixed vegetables", "olive oil",
		},
	}
	for i := 0; i < days; i++ {
		plan.Days = append(plan.Days, internal.MealDay{
			Day:   i + 1,
			Meals: mealTemplates[i%len(mealTemplates)],
		})
	}
	return plan
}
