package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/storage"
)

var ErrNotConnected = errors.New("google calendar not connected")

var scopes = []string{gcal.CalendarEventsScope}

// Service handles the Google OAuth flow and pushes active plan schedules to
// the user's primary calendar. Tokens are stored serialized on the user
// record so a user stays connected across sessions.
type Service struct {
	oauth  *oauth2.Config
	store  storage.Store
	logger internal.Logger
}

func New(clientID, clientSecret, redirectURL string, store storage.Store, logger internal.Logger) *Service {
	return &Service{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
		store:  store,
		logger: logger,
	}
}

func (s *Service) Enabled() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// AuthURL builds the consent URL. The user id rides along as the OAuth state
// so the callback knows whose token to store.
func (s *Service) AuthURL(userID string) string {
	return s.oauth.AuthCodeURL(userID,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// HandleCallback exchanges the authorization code and stores the token on
// the user identified by the OAuth state.
func (s *Service) HandleCallback(ctx context.Context, code, state string) error {
	user, err := s.store.GetUserByID(ctx, state)
	if err != nil {
		return err
	}
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return s.saveToken(ctx, user, token)
}

func (s *Service) Connected(user *internal.User) bool {
	return user.CalendarToken != ""
}

func (s *Service) Disconnect(ctx context.Context, user *internal.User) error {
	user.CalendarToken = ""
	return s.store.UpdateUser(ctx, user)
}

func (s *Service) saveToken(ctx context.Context, user *internal.User, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to serialize oauth token: %w", err)
	}
	user.CalendarToken = string(data)
	return s.store.UpdateUser(ctx, user)
}

func (s *Service) calendarClient(ctx context.Context, user *internal.User) (*gcal.Service, error) {
	if user.CalendarToken == "" {
		return nil, ErrNotConnected
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(user.CalendarToken), &token); err != nil {
		return nil, ErrNotConnected
	}
	source := s.oauth.TokenSource(ctx, &token)
	svc, err := gcal.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	// The token source refreshes expired tokens; persist the refreshed one.
	if fresh, err := source.Token(); err == nil && fresh.AccessToken != token.AccessToken {
		if err := s.saveToken(ctx, user, fresh); err != nil {
			s.logger.Warnf("failed to persist refreshed calendar token: %v", err)
		}
	}
	return svc, nil
}

type SyncResult struct {
	Message       string `json:"message"`
	EventsCreated int    `json:"events_created"`
	WeekStarting  string `json:"week_starting"`
}

// nextMonday returns the upcoming Monday, always at least one day out.
func nextMonday(now time.Time) time.Time {
	days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, days)
}

// SyncWorkout creates one event per non-rest day of the active workout plan,
// starting next Monday.
func (s *Service) SyncWorkout(ctx context.Context, user *internal.User) (*SyncResult, error) {
	plan, err := s.store.GetActivePlan(ctx, user.ID, internal.PlanWorkout)
	if err != nil {
		return nil, err
	}
	svc, err := s.calendarClient(ctx, user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	start := nextMonday(now)
	created := 0

	for i, day := range plan.Workout.Days {
		if day.DurationMinutes == 0 {
			continue
		}
		eventDate := start.AddDate(0, 0, i)

		var lines []string
		for j, ex := range day.Exercises {
			if j == 8 {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s: %d sets x %s reps", ex.Name, ex.Sets, ex.Reps))
		}
		name := day.Name
		if name == "" {
			name = fmt.Sprintf("Day %d", i+1)
		}

		eventStart := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(),
			now.Hour(), now.Minute(), 0, 0, now.Location())
		event := &gcal.Event{
			Summary: fmt.Sprintf("Workout: %s", name),
			Description: fmt.Sprintf("Focus: %s\nDuration: %d min\n~%d calories\n\nExercises:\n%s",
				day.Focus, day.DurationMinutes, day.TotalCalories, strings.Join(lines, "\n")),
			Start:   &gcal.EventDateTime{DateTime: eventStart.Format(time.RFC3339)},
			End:     &gcal.EventDateTime{DateTime: eventStart.Add(time.Duration(day.DurationMinutes) * time.Minute).Format(time.RFC3339)},
			ColorId: "2",
			Reminders: &gcal.EventReminders{
				UseDefault:      false,
				Overrides:       []*gcal.EventReminder{{Method: "popup", Minutes: 30}},
				ForceSendFields: []string{"UseDefault"},
			},
		}
		if _, err := svc.Events.Insert("primary", event).Context(ctx).Do(); err != nil {
			return nil, fmt.Errorf("failed to create calendar event: %w", err)
		}
		created++
	}

	s.logger.Infof("synced %d workout days to calendar user=%s", created, user.ID)
	return &SyncResult{
		Message:       fmt.Sprintf("Synced %d workout days to Google Calendar", created),
		EventsCreated: created,
		WeekStarting:  start.Format("2006-01-02"),
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type mealSlot struct {
	startHour, startMin int
	endHour, endMin     int
	color               string
}

var mealSlots = map[string]mealSlot{
	"breakfast": {7, 30, 8, 0, "5"},
	"lunch":     {12, 30, 13, 0, "6"},
	"snack":     {16, 0, 16, 30, "2"},
	"dinner":    {19, 30, 20, 0, "1"},
}

// SyncNutrition creates a reminder per meal of the active nutrition plan at
// fixed time slots, starting next Monday.
func (s *Service) SyncNutrition(ctx context.Context, user *internal.User) (*SyncResult, error) {
	plan, err := s.store.GetActivePlan(ctx, user.ID, internal.PlanNutrition)
	if err != nil {
		return nil, err
	}
	svc, err := s.calendarClient(ctx, user)
	if err != nil {
		return nil, err
	}

	start := nextMonday(time.Now())
	created := 0

	for i, day := range plan.Nutrition.Days {
		eventDate := start.AddDate(0, 0, i)
		for _, meal := range day.Meals {
			mealType := strings.ToLower(meal.MealType)
			slot, ok := mealSlots[mealType]
			if !ok {
				slot = mealSlot{12, 0, 12, 30, "1"}
			}
			loc := eventDate.Location()
			eventStart := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), slot.startHour, slot.startMin, 0, 0, loc)
			eventEnd := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), slot.endHour, slot.endMin, 0, 0, loc)

			event := &gcal.Event{
				Summary: fmt.Sprintf("%s: %s", capitalize(mealType), meal.Name),
				Description: fmt.Sprintf("%s\n\n%d cal | P: %.0fg | C: %.0fg | F: %.0fg\nPrep: %s",
					meal.Description, meal.Calories, meal.Protein, meal.Carbs, meal.Fat, meal.PrepTime),
				Start:   &gcal.EventDateTime{DateTime: eventStart.Format(time.RFC3339)},
				End:     &gcal.EventDateTime{DateTime: eventEnd.Format(time.RFC3339)},
				ColorId: slot.color,
				Reminders: &gcal.EventReminders{
					UseDefault:      false,
					Overrides:       []*gcal.EventReminder{{Method: "popup", Minutes: 15}},
					ForceSendFields: []string{"UseDefault"},
				},
			}
			if _, err := svc.Events.Insert("primary", event).Context(ctx).Do(); err != nil {
				return nil, fmt.Errorf("failed to create calendar event: %w", err)
			}
			created++
		}
	}

	s.logger.Infof("synced %d meal reminders to calendar user=%s", created, user.ID)
	return &SyncResult{
		Message:       fmt.Sprintf("Synced %d meal reminders to Google Calendar", created),
		EventsCreated: created,
		WeekStarting:  start.Format("2006-01-02"),
	}, nil
}
