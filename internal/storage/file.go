package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/yourname/fitcoach/internal"
)

// FileStorage keeps everything in memory and persists JSON snapshots to a
// data directory with a debounced background worker. It backs development
// and tests; production uses Postgres.
type FileStorage struct {
	mu          sync.RWMutex
	users       map[string]*internal.User             // id -> user
	plans       map[string]*internal.Plan             // id -> plan
	userPlans   map[string][]*internal.Plan           // userID -> plans (newest first)
	completions map[string]*internal.CompletionRecord // userID|planID|unitKey
	progress    map[string][]*internal.ProgressRecord // userID -> records (newest first)
	chats       map[string]*internal.ChatSession      // userID -> session

	dir          string
	saveChan     chan struct{}
	shutdownChan chan struct{}
	saveDelay    time.Duration
	logger       internal.Logger
}

func NewFileStorage(dir string, logger internal.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &FileStorage{
		users:        make(map[string]*internal.User),
		plans:        make(map[string]*internal.Plan),
		userPlans:    make(map[string][]*internal.Plan),
		completions:  make(map[string]*internal.CompletionRecord),
		progress:     make(map[string][]*internal.ProgressRecord),
		chats:        make(map[string]*internal.ChatSession),
		dir:          dir,
		saveChan:     make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
		saveDelay:    500 * time.Millisecond,
		logger:       logger,
	}

	if err := s.loadAll(); err != nil {
		logger.Errorf("storage: failed to load data: %v", err)
		return nil, err
	}

	go s.saveWorker()

	return s, nil
}

func completionKey(userID, planID, unitKey string) string {
	return userID + "|" + planID + "|" + unitKey
}

// --- Loading ---

func (s *FileStorage) loadAll() error {
	var users []*internal.User
	if err := s.loadFile("users.json", &users); err != nil {
		return err
	}
	var plans []*internal.Plan
	if err := s.loadFile("plans.json", &plans); err != nil {
		return err
	}
	var completions []*internal.CompletionRecord
	if err := s.loadFile("completions.json", &completions); err != nil {
		return err
	}
	var progress []*internal.ProgressRecord
	if err := s.loadFile("progress.json", &progress); err != nil {
		return err
	}
	var chats []*internal.ChatSession
	if err := s.loadFile("chats.json", &chats); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.ID] = u
	}
	for _, p := range plans {
		s.plans[p.ID] = p
		s.userPlans[p.UserID] = append(s.userPlans[p.UserID], p)
	}
	for userID := range s.userPlans {
		sortPlansDesc(s.userPlans[userID])
	}
	for _, c := range completions {
		s.completions[completionKey(c.UserID, c.PlanID, c.UnitKey)] = c
	}
	for _, r := range progress {
		s.progress[r.UserID] = append(s.progress[r.UserID], r)
	}
	for userID := range s.progress {
		sortProgressDesc(s.progress[userID])
	}
	for _, c := range chats {
		s.chats[c.UserID] = c
	}
	return nil
}

func (s *FileStorage) loadFile(name string, out interface{}) error {
	file, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func sortPlansDesc(plans []*internal.Plan) {
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
}

func sortProgressDesc(records []*internal.ProgressRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
}

// --- Saving ---

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveAll() error {
	s.mu.RLock()
	users := make([]*internal.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	plans := make([]*internal.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		plans = append(plans, p)
	}
	completions := make([]*internal.CompletionRecord, 0, len(s.completions))
	for _, c := range s.completions {
		completions = append(completions, c)
	}
	var progress []*internal.ProgressRecord
	for _, rs := range s.progress {
		progress = append(progress, rs...)
	}
	chats := make([]*internal.ChatSession, 0, len(s.chats))
	for _, c := range s.chats {
		chats = append(chats, c)
	}
	s.mu.RUnlock()

	for name, data := range map[string]interface{}{
		"users.json":       users,
		"plans.json":       plans,
		"completions.json": completions,
		"progress.json":    progress,
		"chats.json":       chats,
	} {
		if err := atomicWriteFileJSON(filepath.Join(s.dir, name), data); err != nil {
			return err
		}
	}
	return nil
}

// saveWorker batches save operations to avoid frequent disk writes.
func (s *FileStorage) saveWorker() {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.saveAll(); err != nil {
				s.logger.Errorf("storage: error saving data: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) markDirty() {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

// --- UserRepository ---

func (s *FileStorage) CreateUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return internal.ErrConflict
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	s.markDirty()
	return nil
}

func (s *FileStorage) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *FileStorage) GetUserByLogin(ctx context.Context, login string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == login || u.Email == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, internal.ErrNotFound
}

func (s *FileStorage) UpdateUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return internal.ErrNotFound
	}
	cp := *user
	s.users[user.ID] = &cp
	s.markDirty()
	return nil
}

func (s *FileStorage) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return internal.ErrNotFound
	}
	delete(s.users, id)
	for _, p := range s.userPlans[id] {
		delete(s.plans, p.ID)
	}
	delete(s.userPlans, id)
	delete(s.progress, id)
	delete(s.chats, id)
	for key, c := range s.completions {
		if c.UserID == id {
			delete(s.completions, key)
		}
	}
	s.markDirty()
	return nil
}

func (s *FileStorage) ListUsers(ctx context.Context) ([]internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]internal.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *FileStorage) CountUsers(ctx context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := len(s.users)
	active := 0
	for _, u := range s.users {
		if u.IsActive {
			active++
		}
	}
	return total, active, nil
}

// --- PlanRepository ---

func (s *FileStorage) CreatePlan(ctx context.Context, plan *internal.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.userPlans[plan.UserID] {
		if p.Kind == plan.Kind {
			p.IsActive = false
		}
	}
	cp := *plan
	s.plans[plan.ID] = &cp
	s.userPlans[plan.UserID] = append([]*internal.Plan{&cp}, s.userPlans[plan.UserID]...)
	s.markDirty()
	return nil
}

func (s *FileStorage) GetPlan(ctx context.Context, userID, planID string) (*internal.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[planID]
	if !ok || p.UserID != userID {
		return nil, internal.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *FileStorage) GetActivePlan(ctx context.Context, userID string, kind internal.PlanKind) (*internal.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.userPlans[userID] {
		if p.Kind == kind && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, internal.ErrNoActivePlan
}

func (s *FileStorage) ListPlans(ctx context.Context, userID string, kind internal.PlanKind, limit int) ([]internal.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var plans []internal.Plan
	for _, p := range s.userPlans[userID] {
		if p.Kind != kind {
			continue
		}
		plans = append(plans, *p)
		if limit > 0 && len(plans) >= limit {
			break
		}
	}
	return plans, nil
}

func (s *FileStorage) CountPlans(ctx context.Context, kind internal.PlanKind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, p := range s.plans {
		if p.Kind == kind {
			count++
		}
	}
	return count, nil
}

// --- CompletionRepository ---

func (s *FileStorage) ListCompletions(ctx context.Context, userID, planID string) ([]internal.CompletionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []internal.CompletionRecord
	for _, c := range s.completions {
		if c.UserID == userID && c.PlanID == planID {
			records = append(records, *c)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UnitKey < records[j].UnitKey
	})
	return records, nil
}

// --- ProgressRepository ---

func (s *FileStorage) ListProgress(ctx context.Context, userID string, limit int) ([]internal.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []internal.ProgressRecord
	for _, r := range s.progress[userID] {
		records = append(records, *r)
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

// --- ChatRepository ---

func (s *FileStorage) GetChatSession(ctx context.Context, userID string) (*internal.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[userID]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *c
	cp.Messages = append([]internal.ChatMessage(nil), c.Messages...)
	return &cp, nil
}

func (s *FileStorage) SaveChatSession(ctx context.Context, session *internal.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	cp.Messages = append([]internal.ChatMessage(nil), session.Messages...)
	s.chats[session.UserID] = &cp
	s.markDirty()
	return nil
}

// --- LedgerStore ---

// fileLedgerTx stages all writes and commits them only when the mutation
// callback succeeds, mirroring the rollback behavior of the Postgres store.
type fileLedgerTx struct {
	store  *FileStorage
	userID string

	user              *internal.User
	stagedCompletions map[string]*internal.CompletionRecord
	stagedProgress    []*internal.ProgressRecord
}

func (s *FileStorage) UpdateUserState(ctx context.Context, userID string, fn func(tx LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &fileLedgerTx{
		store:             s,
		userID:            userID,
		stagedCompletions: make(map[string]*internal.CompletionRecord),
	}
	if err := fn(tx); err != nil {
		return err
	}

	// Commit staged state.
	if tx.user != nil {
		s.users[userID] = tx.user
	}
	for key, rec := range tx.stagedCompletions {
		s.completions[key] = rec
	}
	if len(tx.stagedProgress) > 0 {
		s.progress[userID] = append(tx.stagedProgress, s.progress[userID]...)
		sortProgressDesc(s.progress[userID])
	}
	s.markDirty()
	return nil
}

func (tx *fileLedgerTx) User() (*internal.User, error) {
	if tx.user != nil {
		return tx.user, nil
	}
	u, ok := tx.store.users[tx.userID]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (tx *fileLedgerTx) SaveUser(user *internal.User) error {
	cp := *user
	tx.user = &cp
	return nil
}

func (tx *fileLedgerTx) Completion(planID, unitKey string) (*internal.CompletionRecord, error) {
	key := completionKey(tx.userID, planID, unitKey)
	if rec, ok := tx.stagedCompletions[key]; ok {
		cp := *rec
		return &cp, nil
	}
	rec, ok := tx.store.completions[key]
	if !ok {
		return nil, internal.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (tx *fileLedgerTx) UpsertCompletion(rec *internal.CompletionRecord) error {
	cp := *rec
	tx.stagedCompletions[completionKey(rec.UserID, rec.PlanID, rec.UnitKey)] = &cp
	return nil
}

func (tx *fileLedgerTx) HasManualCalorieLogOn(day time.Time) (bool, error) {
	y, m, d := day.Date()
	matches := func(r *internal.ProgressRecord) bool {
		ry, rm, rd := r.Date.Date()
		return ry == y && rm == m && rd == d && r.WorkoutCompleted == "" && r.CaloriesBurned > 0
	}
	for _, r := range tx.stagedProgress {
		if matches(r) {
			return true, nil
		}
	}
	for _, r := range tx.store.progress[tx.userID] {
		if matches(r) {
			return true, nil
		}
	}
	return false, nil
}

func (tx *fileLedgerTx) InsertProgress(rec *internal.ProgressRecord) error {
	cp := *rec
	tx.stagedProgress = append(tx.stagedProgress, &cp)
	return nil
}

// Close stops the save worker and flushes pending data.
func (s *FileStorage) Close() error {
	close(s.shutdownChan)
	return s.saveAll()
}

var _ Store = (*FileStorage)(nil)
