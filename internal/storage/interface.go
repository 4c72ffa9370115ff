package storage

import (
	"context"
	"time"

	"github.com/yourname/fitcoach/internal"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *internal.User) error
	GetUserByID(ctx context.Context, id string) (*internal.User, error)
	// GetUserByLogin resolves a username or an email address.
	GetUserByLogin(ctx context.Context, login string) (*internal.User, error)
	UpdateUser(ctx context.Context, user *internal.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]internal.User, error)
	CountUsers(ctx context.Context) (total, active int, err error)
}

type PlanRepository interface {
	// CreatePlan stores the plan and deactivates any previous plan of the
	// same kind for the user in the same write.
	CreatePlan(ctx context.Context, plan *internal.Plan) error
	GetPlan(ctx context.Context, userID, planID string) (*internal.Plan, error)
	GetActivePlan(ctx context.Context, userID string, kind internal.PlanKind) (*internal.Plan, error)
	ListPlans(ctx context.Context, userID string, kind internal.PlanKind, limit int) ([]internal.Plan, error)
	CountPlans(ctx context.Context, kind internal.PlanKind) (int, error)
}

type CompletionRepository interface {
	ListCompletions(ctx context.Context, userID, planID string) ([]internal.CompletionRecord, error)
}

type ProgressRepository interface {
	ListProgress(ctx context.Context, userID string, limit int) ([]internal.ProgressRecord, error)
}

type ChatRepository interface {
	GetChatSession(ctx context.Context, userID string) (*internal.ChatSession, error)
	SaveChatSession(ctx context.Context, session *internal.ChatSession) error
}

// LedgerTx is the state visible to one atomic ledger mutation. All reads and
// writes inside UpdateUserState happen under the same transaction (Postgres)
// or lock (file store), so a check-then-set cannot race a duplicate request.
type LedgerTx interface {
	User() (*internal.User, error)
	SaveUser(user *internal.User) error
	Completion(planID, unitKey string) (*internal.CompletionRecord, error)
	UpsertCompletion(rec *internal.CompletionRecord) error
	// HasManualCalorieLogOn reports whether a manual progress entry with a
	// positive calorie value already exists on the given calendar day.
	HasManualCalorieLogOn(day time.Time) (bool, error)
	InsertProgress(rec *internal.ProgressRecord) error
}

type LedgerStore interface {
	// UpdateUserState runs fn as a single read-modify-write over the user's
	// points, completion, and progress state. Returning an error rolls the
	// whole mutation back.
	UpdateUserState(ctx context.Context, userID string, fn func(tx LedgerTx) error) error
}

// Store aggregates every repository the application needs.
type Store interface {
	UserRepository
	PlanRepository
	CompletionRepository
	ProgressRepository
	ChatRepository
	LedgerStore
	Close() error
}
