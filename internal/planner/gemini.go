package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/yourname/fitcoach/internal"
)

// Gemini generates plan content and coach replies through the Gemini API.
// Without an API key it runs in fallback-only mode so the app stays usable
// in development.
type Gemini struct {
	client *genai.Client
	model  string
	logger internal.Logger
}

func New(ctx context.Context, apiKey, model string, logger internal.Logger) (*Gemini, error) {
	g := &Gemini{model: model, logger: logger}
	if apiKey == "" {
		logger.Warn("no Gemini API key configured, plan generation will use fallback plans")
		return g, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gemini) generate(ctx context.Context, system, prompt string) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini client not initialized")
	}
	model := g.client.GenerativeModel(g.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty model response")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// CleanModelOutput strips markdown fences the model wraps JSON in.
func CleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// ExtractJSON cuts the first top-level JSON object out of free-form model
// output. Models occasionally prepend prose despite the prompt.
func ExtractJSON(text string) (string, bool) {
	text = CleanModelOutput(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

const workoutSystemPrompt = `You are an expert fitness trainer. Generate a detailed workout plan in JSON format.
The JSON must have this structure:
{
  "title": "Plan title",
  "days": [
    {
      "day": 1,
      "name": "Day name",
      "focus": "muscle group",
      "exercises": [
        {
          "name": "Exercise name",
          "sets": 3,
          "reps": "10-12",
          "rest_seconds": 60,
          "description": "How to perform",
          "muscle_group": "target muscle",
          "calories_burn": 50
        }
      ],
      "total_duration_minutes": 45,
      "total_calories": 300
    }
  ]
}
Return ONLY valid JSON, no other text.`

func orUnspecified(v string) string {
	if v == "" {
		return "Not specified"
	}
	return v
}

func (g *Gemini) GenerateWorkoutPlan(ctx context.Context, user *internal.User, days int) (*internal.WorkoutPlan, error) {
	prompt := fmt.Sprintf(`Create a %d-day workout plan for:
- Fitness Level: %s
- Goal: %s
- Preference: %s
- Age: %s
- Gender: %s`,
		days, user.FitnessLevel, user.FitnessGoal, user.WorkoutPreference,
		orUnspecified(ageString(user.Age)), orUnspecified(user.Gender))

	raw, err := g.generate(ctx, workoutSystemPrompt, prompt)
	if err != nil {
		g.logger.Warnf("workout generation failed, using fallback plan: %v", err)
		return FallbackWorkoutPlan(days), nil
	}

	body, ok := ExtractJSON(raw)
	if !ok {
		g.logger.Warnf("workout generation returned no JSON, using fallback plan")
		return FallbackWorkoutPlan(days), nil
	}
	var plan internal.WorkoutPlan
	if err := json.Unmarshal([]byte(body), &plan); err != nil || len(plan.Days) == 0 {
		g.logger.Warnf("workout generation returned unparseable JSON, using fallback plan: %v", err)
		return FallbackWorkoutPlan(days), nil
	}
	normalizeWorkoutDays(&plan)
	return &plan, nil
}

const mealSystemPrompt = `You are an expert nutritionist. Generate a detailed nutrition plan in JSON format.
The JSON must have this structure:
{
  "title": "Nutrition Plan title",
  "daily_calories": 2000,
  "macros": {"protein": 150, "carbs": 200, "fat": 65},
  "days": [
    {
      "day": 1,
      "meals": [
        {
          "meal_type": "breakfast",
          "name": "Meal name",
          "description": "Description",
          "calories": 400,
          "protein": 25,
          "carbs": 45,
          "fat": 12,
          "ingredients": ["item1", "item2"],
          "prep_time": "10 minutes"
        }
      ]
    }
  ],
  "grocery_list": ["item1", "item2"]
}
Return ONLY valid JSON.`

func (g *Gemini) GenerateMealPlan(ctx context.Context, user *internal.User, days int, allergies []string) (*internal.MealPlan, error) {
	calories := CalorieTarget(user)

	allergyList := "None"
	if len(allergies) > 0 {
		allergyList = strings.Join(allergies, ", ")
	}
	prompt := fmt.Sprintf(`Create a %d-day nutrition plan for:
- Diet Type: %s
- Goal: %s
- Daily Calories Target: ~%d
- Age: %s
- Allergies/Restrictions: %s`,
		days, user.DietPreference, user.FitnessGoal, calories,
		orUnspecified(ageString(user.Age)), allergyList)

	raw, err := g.generate(ctx, mealSystemPrompt, prompt)
	if err != nil {
		g.logger.Warnf("meal plan generation failed, using fallback plan: %v", err)
		return FallbackMealPlan(days, calories), nil
	}

	body, ok := ExtractJSON(raw)
	if !ok {
		g.logger.Warnf("meal plan generation returned no JSON, using fallback plan")
		return FallbackMealPlan(days, calories), nil
	}
	var plan internal.MealPlan
	if err := json.Unmarshal([]byte(body), &plan); err != nil || len(plan.Days) == 0 {
		g.logger.Warnf("meal plan generation returned unparseable JSON, using fallback plan: %v", err)
		return FallbackMealPlan(days, calories), nil
	}
	if plan.DailyCalories == 0 {
		plan.DailyCalories = calories
	}
	normalizeMealDays(&plan)
	return &plan, nil
}

// CalorieTarget estimates a daily calorie target from the profile using a
// BMR formula scaled by a moderate-activity factor, defaulting to 2000 when
// the profile is incomplete.
func CalorieTarget(user *internal.User) int {
	if user.Weight == 0 || user.Height == 0 || user.Age == 0 {
		return 2000
	}
	var bmr float64
	switch user.Gender {
	case "male":
		bmr = 88.362 + 13.397*user.Weight + 4.799*user.Height - 5.677*float64(user.Age)
	case "female":
		bmr = 447.593 + 9.247*user.Weight + 3.098*user.Height - 4.330*float64(user.Age)
	default:
		// Average of the two formulas.
		bmr = 267.978 + 11.322*user.Weight + 3.949*user.Height - 5.004*float64(user.Age)
	}
	return int(bmr * 1.55)
}

func (g *Gemini) Chat(ctx context.Context, user *internal.User, history []internal.ChatMessage, message string) (string, error) {
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	system := fmt.Sprintf(`You are an empathetic and knowledgeable AI fitness coach.
User Profile:
- Name: %s
- Fitness Level: %s
- Goal: %s
- Diet: %s
- Workout Preference: %s

Be motivational, supportive, and provide actionable fitness and nutrition advice.
Keep responses concise (2-4 paragraphs max) and engaging.`,
		name, user.FitnessLevel, user.FitnessGoal, user.DietPreference, user.WorkoutPreference)

	if g.client == nil {
		return fmt.Sprintf("Hi %s! I'm your fitness coach. Configure a Gemini API key to enable AI-powered coaching.", name), nil
	}

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	chat := model.StartChat()

	// The API requires strict user/model alternation; drop consecutive
	// messages with the same role.
	lastRole := ""
	for _, msg := range history {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		if msg.Content == "" || role == lastRole {
			continue
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
		lastRole = role
	}

	resp, err := chat.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func ageString(age int) string {
	if age == 0 {
		return ""
	}
	return fmt.Sprintf("%d", age)
}

func normalizeWorkoutDays(plan *internal.WorkoutPlan) {
	for i := range plan.Days {
		if plan.Days[i].Day == 0 {
			plan.Days[i].Day = i + 1
		}
	}
}

func normalizeMealDays(plan *internal.MealPlan) {
	for i := range plan.Days {
		if plan.Days[i].Day == 0 {
			plan.Days[i].Day = i + 1
		}
	}
}
