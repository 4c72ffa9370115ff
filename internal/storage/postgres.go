package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourname/fitcoach/internal"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	full_name TEXT NOT NULL DEFAULT '',
	age INT NOT NULL DEFAULT 0,
	gender TEXT NOT NULL DEFAULT '',
	height DOUBLE PRECISION NOT NULL DEFAULT 0,
	weight DOUBLE PRECISION NOT NULL DEFAULT 0,
	fitness_level TEXT NOT NULL DEFAULT 'beginner',
	fitness_goal TEXT NOT NULL DEFAULT 'maintenance',
	workout_preference TEXT NOT NULL DEFAULT 'home',
	diet_preference TEXT NOT NULL DEFAULT 'vegetarian',
	role TEXT NOT NULL DEFAULT 'user',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	streak_points INT NOT NULL DEFAULT 0 CHECK (streak_points >= 0),
	total_workouts INT NOT NULL DEFAULT 0,
	calendar_token TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS plans (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	kind TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	plan_data JSONB NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS plans_user_kind_idx ON plans (user_id, kind, created_at DESC);

CREATE TABLE IF NOT EXISTS completions (
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	plan_id TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
	unit_key TEXT NOT NULL,
	kind TEXT NOT NULL,
	done BOOLEAN NOT NULL DEFAULT FALSE,
	awarded BOOLEAN NOT NULL DEFAULT FALSE,
	completed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, plan_id, unit_key)
);

CREATE TABLE IF NOT EXISTS progress_records (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	date TIMESTAMPTZ NOT NULL DEFAULT now(),
	weight DOUBLE PRECISION NOT NULL DEFAULT 0,
	body_fat_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
	muscle_mass DOUBLE PRECISION NOT NULL DEFAULT 0,
	waist_circumference DOUBLE PRECISION NOT NULL DEFAULT 0,
	calories_burned INT NOT NULL DEFAULT 0,
	workout_completed TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS progress_user_date_idx ON progress_records (user_id, date DESC);

CREATE TABLE IF NOT EXISTS chat_sessions (
	user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	id TEXT NOT NULL,
	messages JSONB NOT NULL DEFAULT '[]',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		logger.Errorf("failed to apply schema: %v", err)
		pool.Close()
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

const userColumns = `id, email, username, hashed_password, full_name, age, gender, height, weight,
	fitness_level, fitness_goal, workout_preference, diet_preference, role, is_active,
	streak_points, total_workouts, calendar_token, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*internal.User, error) {
	var u internal.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.FullName, &u.Age, &u.Gender,
		&u.Height, &u.Weight, &u.FitnessLevel, &u.FitnessGoal, &u.WorkoutPreference, &u.DietPreference,
		&u.Role, &u.IsActive, &u.StreakPoints, &u.TotalWorkouts, &u.CalendarToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- UserRepository ---

func (p *PostgresStorage) CreateUser(ctx context.Context, u *internal.User) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		u.ID, u.Email, u.Username, u.HashedPassword, u.FullName, u.Age, u.Gender, u.Height, u.Weight,
		u.FitnessLevel, u.FitnessGoal, u.WorkoutPreference, u.DietPreference, u.Role, u.IsActive,
		u.StreakPoints, u.TotalWorkouts, u.CalendarToken, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return internal.ErrConflict
		}
		p.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	return scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (p *PostgresStorage) GetUserByLogin(ctx context.Context, login string) (*internal.User, error) {
	return scanUser(p.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, login))
}

func (p *PostgresStorage) UpdateUser(ctx context.Context, u *internal.User) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET
		email=$2, username=$3, hashed_password=$4, full_name=$5, age=$6, gender=$7, height=$8, weight=$9,
		fitness_level=$10, fitness_goal=$11, workout_preference=$12, diet_preference=$13, role=$14,
		is_active=$15, streak_points=$16, total_workouts=$17, calendar_token=$18, updated_at=now()
		WHERE id=$1`,
		u.ID, u.Email, u.Username, u.HashedPassword, u.FullName, u.Age, u.Gender, u.Height, u.Weight,
		u.FitnessLevel, u.FitnessGoal, u.WorkoutPreference, u.DietPreference, u.Role, u.IsActive,
		u.StreakPoints, u.TotalWorkouts, u.CalendarToken)
	if err != nil {
		p.logger.Errorf("failed to update user: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) DeleteUser(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		p.logger.Errorf("failed to delete user: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) ListUsers(ctx context.Context) ([]internal.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		p.logger.Errorf("failed to query users: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []internal.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (p *PostgresStorage) CountUsers(ctx context.Context) (int, int, error) {
	var total, active int
	err := p.pool.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE is_active) FROM users`).Scan(&total, &active)
	if err != nil {
		p.logger.Errorf("failed to count users: %v", err)
		return 0, 0, err
	}
	return total, active, nil
}

// --- PlanRepository ---

func marshalPlanData(plan *internal.Plan) ([]byte, error) {
	if plan.Kind == internal.PlanWorkout {
		return json.Marshal(plan.Workout)
	}
	return json.Marshal(plan.Nutrition)
}

func unmarshalPlanData(plan *internal.Plan, data []byte) error {
	if plan.Kind == internal.PlanWorkout {
		plan.Workout = &internal.WorkoutPlan{}
		return json.Unmarshal(data, plan.Workout)
	}
	plan.Nutrition = &internal.MealPlan{}
	return json.Unmarshal(data, plan.Nutrition)
}

func (p *PostgresStorage) CreatePlan(ctx context.Context, plan *internal.Plan) error {
	data, err := marshalPlanData(plan)
	if err != nil {
		return err
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE plans SET is_active = FALSE WHERE user_id = $1 AND kind = $2`,
		plan.UserID, plan.Kind); err != nil {
		p.logger.Errorf("failed to deactivate previous plans: %v", err)
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO plans (id, user_id, kind, title, plan_data, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		plan.ID, plan.UserID, plan.Kind, plan.Title, data, plan.IsActive, plan.CreatedAt); err != nil {
		p.logger.Errorf("failed to insert plan: %v", err)
		return err
	}
	return tx.Commit(ctx)
}

func scanPlan(row rowScanner) (*internal.Plan, error) {
	var plan internal.Plan
	var data []byte
	err := row.Scan(&plan.ID, &plan.UserID, &plan.Kind, &plan.Title, &data, &plan.IsActive, &plan.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		return nil, err
	}
	if err := unmarshalPlanData(&plan, data); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (p *PostgresStorage) GetPlan(ctx context.Context, userID, planID string) (*internal.Plan, error) {
	return scanPlan(p.pool.QueryRow(ctx,
		`SELECT id, user_id, kind, title, plan_data, is_active, created_at
		 FROM plans WHERE id = $1 AND user_id = $2`, planID, userID))
}

func (p *PostgresStorage) GetActivePlan(ctx context.Context, userID string, kind internal.PlanKind) (*internal.Plan, error) {
	plan, err := scanPlan(p.pool.QueryRow(ctx,
		`SELECT id, user_id, kind, title, plan_data, is_active, created_at
		 FROM plans WHERE user_id = $1 AND kind = $2 AND is_active
		 ORDER BY created_at DESC LIMIT 1`, userID, kind))
	if errors.Is(err, internal.ErrNotFound) {
		return nil, internal.ErrNoActivePlan
	}
	return plan, err
}

func (p *PostgresStorage) ListPlans(ctx context.Context, userID string, kind internal.PlanKind, limit int) ([]internal.Plan, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, kind, title, plan_data, is_active, created_at
		 FROM plans WHERE user_id = $1 AND kind = $2 ORDER BY created_at DESC LIMIT NULLIF($3, 0)`,
		userID, kind, limit)
	if err != nil {
		p.logger.Errorf("failed to query plans: %v", err)
		return nil, err
	}
	defer rows.Close()

	var plans []internal.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

func (p *PostgresStorage) CountPlans(ctx context.Context, kind internal.PlanKind) (int, error) {
	var count int
	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM plans WHERE kind = $1`, kind).Scan(&count); err != nil {
		p.logger.Errorf("failed to count plans: %v", err)
		return 0, err
	}
	return count, nil
}

// --- CompletionRepository ---

func (p *PostgresStorage) ListCompletions(ctx context.Context, userID, planID string) ([]internal.CompletionRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT user_id, plan_id, unit_key, kind, done, awarded, completed_at
		 FROM completions WHERE user_id = $1 AND plan_id = $2 ORDER BY unit_key`,
		userID, planID)
	if err != nil {
		p.logger.Errorf("failed to query completions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []internal.CompletionRecord
	for rows.Next() {
		var c internal.CompletionRecord
		if err := rows.Scan(&c.UserID, &c.PlanID, &c.UnitKey, &c.Kind, &c.Done, &c.Awarded, &c.CompletedAt); err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	return records, rows.Err()
}

// --- ProgressRepository ---

func (p *PostgresStorage) ListProgress(ctx context.Context, userID string, limit int) ([]internal.ProgressRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, date, weight, body_fat_percent, muscle_mass, waist_circumference,
		 calories_burned, workout_completed, notes
		 FROM progress_records WHERE user_id = $1 ORDER BY date DESC LIMIT NULLIF($2, 0)`, userID, limit)
	if err != nil {
		p.logger.Errorf("failed to query progress: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []internal.ProgressRecord
	for rows.Next() {
		var r internal.ProgressRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.Date, &r.Weight, &r.BodyFatPercent, &r.MuscleMass,
			&r.WaistCircumference, &r.CaloriesBurned, &r.WorkoutCompleted, &r.Notes); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// --- ChatRepository ---

func (p *PostgresStorage) GetChatSession(ctx context.Context, userID string) (*internal.ChatSession, error) {
	var session internal.ChatSession
	var messages []byte
	err := p.pool.QueryRow(ctx,
		`SELECT user_id, id, messages, updated_at FROM chat_sessions WHERE user_id = $1`, userID).
		Scan(&session.UserID, &session.ID, &messages, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		p.logger.Errorf("failed to query chat session: %v", err)
		return nil, err
	}
	if err := json.Unmarshal(messages, &session.Messages); err != nil {
		return nil, err
	}
	return &session, nil
}

func (p *PostgresStorage) SaveChatSession(ctx context.Context, session *internal.ChatSession) error {
	messages, err := json.Marshal(session.Messages)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO chat_sessions (user_id, id, messages, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET messages = EXCLUDED.messages, updated_at = EXCLUDED.updated_at`,
		session.UserID, session.ID, messages, session.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to save chat session: %v", err)
	}
	return err
}

// --- LedgerStore ---

// pgLedgerTx runs every read and write inside one transaction that holds the
// user row lock, so duplicate submissions serialize instead of double
// awarding points.
type pgLedgerTx struct {
	ctx    context.Context
	tx     pgx.Tx
	userID string
}

func (p *PostgresStorage) UpdateUserState(ctx context.Context, userID string, fn func(tx LedgerTx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ltx := &pgLedgerTx{ctx: ctx, tx: tx, userID: userID}
	// Acquire the per-user lock up front.
	if _, err := ltx.User(); err != nil {
		return err
	}
	if err := fn(ltx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (t *pgLedgerTx) User() (*internal.User, error) {
	return scanUser(t.tx.QueryRow(t.ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, t.userID))
}

func (t *pgLedgerTx) SaveUser(u *internal.User) error {
	_, err := t.tx.Exec(t.ctx, `UPDATE users SET
		streak_points=$2, total_workouts=$3, updated_at=now() WHERE id=$1`,
		u.ID, u.StreakPoints, u.TotalWorkouts)
	return err
}

func (t *pgLedgerTx) Completion(planID, unitKey string) (*internal.CompletionRecord, error) {
	var c internal.CompletionRecord
	err := t.tx.QueryRow(t.ctx,
		`SELECT user_id, plan_id, unit_key, kind, done, awarded, completed_at
		 FROM completions WHERE user_id = $1 AND plan_id = $2 AND unit_key = $3`,
		t.userID, planID, unitKey).
		Scan(&c.UserID, &c.PlanID, &c.UnitKey, &c.Kind, &c.Done, &c.Awarded, &c.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (t *pgLedgerTx) UpsertCompletion(rec *internal.CompletionRecord) error {
	_, err := t.tx.Exec(t.ctx,
		`INSERT INTO completions (user_id, plan_id, unit_key, kind, done, awarded, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, plan_id, unit_key)
		 DO UPDATE SET done = EXCLUDED.done, awarded = EXCLUDED.awarded, completed_at = EXCLUDED.completed_at`,
		rec.UserID, rec.PlanID, rec.UnitKey, rec.Kind, rec.Done, rec.Awarded, rec.CompletedAt)
	return err
}

func (t *pgLedgerTx) HasManualCalorieLogOn(day time.Time) (bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var exists bool
	err := t.tx.QueryRow(t.ctx,
		`SELECT EXISTS (SELECT 1 FROM progress_records
		 WHERE user_id = $1 AND workout_completed = '' AND calories_burned > 0
		 AND date >= $2 AND date < $3)`,
		t.userID, dayStart, dayStart.AddDate(0, 0, 1)).Scan(&exists)
	return exists, err
}

func (t *pgLedgerTx) InsertProgress(rec *internal.ProgressRecord) error {
	_, err := t.tx.Exec(t.ctx,
		`INSERT INTO progress_records (id, user_id, date, weight, body_fat_percent, muscle_mass,
		 waist_circumference, calories_burned, workout_completed, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.UserID, rec.Date, rec.Weight, rec.BodyFatPercent, rec.MuscleMass,
		rec.WaistCircumference, rec.CaloriesBurned, rec.WorkoutCompleted, rec.Notes)
	return err
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*PostgresStorage)(nil)
