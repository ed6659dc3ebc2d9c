// Package memory keeps every store in process memory. It backs DB_DRIVER=memory
// and the service and handler tests.
package memory

import (
	"achievify/internal/models"
	"achievify/internal/repository"
	"context"
	"sort"
	"sync"
	"time"
)

type plannerKey struct {
	userID int64
	week   string
}

type plannerEntry struct {
	grid      models.PlannerGrid
	updatedAt time.Time
}

// Store mirrors the semantics of repository.PostgresStore: unique usernames
// and emails, owner-conditioned mutations, newest-first ordering with id as
// the tie-break.
type Store struct {
	mu sync.RWMutex

	// Now is the clock used for timestamps.
	Now func() time.Time

	nextID     int64
	users      []models.User
	todos      map[int64]models.Todo
	timetables map[int64]models.TimetableEntry
	wall       map[int64]models.WallItem
	planner    map[plannerKey]plannerEntry
}

func New() *Store {
	return &Store{
		Now:        time.Now,
		todos:      make(map[int64]models.Todo),
		timetables: make(map[int64]models.TimetableEntry),
		wall:       make(map[int64]models.WallItem),
		planner:    make(map[plannerKey]plannerEntry),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) hasUser(id int64) bool {
	for _, u := range s.users {
		if u.ID == id {
			return true
		}
	}
	return false
}

// newestFirst sorts by created descending, then id descending.
func newestFirst[T any](rows []T, key func(T) (time.Time, int64)) {
	sort.Slice(rows, func(i, j int) bool {
		ti, ii := key(rows[i])
		tj, ij := key(rows[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ii > ij
	})
}

func (s *Store) UsernameExists(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return nil, &repository.DuplicateError{Field: "username"}
		}
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, &repository.DuplicateError{Field: "email"}
		}
	}
	u.ID = s.id()
	u.CreatedAt = s.Now()
	s.users = append(s.users, *u)
	return u, nil
}

func (s *Store) FindUserByLogin(_ context.Context, identifier string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == identifier || u.Email == identifier {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListTodos(_ context.Context, userID int64, done *bool) ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Todo{}
	for _, t := range s.todos {
		if t.UserID != userID || (done != nil && t.Done != *done) {
			continue
		}
		out = append(out, t)
	}
	newestFirst(out, func(t models.Todo) (time.Time, int64) { return t.CreatedAt, t.ID })
	return out, nil
}

func (s *Store) CreateTodo(_ context.Context, userID int64, title string) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasUser(userID) {
		return nil, repository.ErrUnknownOwner
	}
	now := s.Now()
	t := models.Todo{ID: s.id(), UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}
	s.todos[t.ID] = t
	return &t, nil
}

func (s *Store) TodoOwned(_ context.Context, id, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.todos[id]
	return ok && t.UserID == userID, nil
}

func (s *Store) UpdateTodo(_ context.Context, id, userID int64, patch models.TodoPatch) (*models.Todo, error) {
	if patch.Empty() {
		return nil, repository.ErrNothingToUpdate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Done != nil {
		t.Done = *patch.Done
	}
	t.UpdatedAt = s.Now()
	s.todos[id] = t
	return &t, nil
}

func (s *Store) DeleteTodo(_ context.Context, id, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.todos, id)
	return nil
}

func (s *Store) LatestTimetable(_ context.Context, userID int64) (*models.TimetableEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []models.TimetableEntry
	for _, e := range s.timetables {
		if e.UserID == userID {
			rows = append(rows, e)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	newestFirst(rows, func(e models.TimetableEntry) (time.Time, int64) { return e.UploadedAt, e.ID })
	return &rows[0], nil
}

func (s *Store) CreateTimetable(_ context.Context, userID int64, title, filePath, mime string) (*models.TimetableEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasUser(userID) {
		return nil, repository.ErrUnknownOwner
	}
	e := models.TimetableEntry{
		ID: s.id(), UserID: userID, Title: title, FilePath: filePath, Mime: mime, UploadedAt: s.Now(),
	}
	s.timetables[e.ID] = e
	return &e, nil
}

func (s *Store) DeleteTimetable(_ context.Context, id, userID int64) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.timetables[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrNotFound
	}
	delete(s.timetables, id)
	return &e.FilePath, nil
}

func (s *Store) GetPlannerWeek(_ context.Context, userID int64, week string) (*models.PlannerWeek, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.planner[plannerKey{userID, week}]
	if !ok {
		return nil, nil
	}
	updatedAt := e.updatedAt
	return &models.PlannerWeek{Week: week, Data: copyGrid(e.grid), UpdatedAt: &updatedAt}, nil
}

func (s *Store) UpsertPlannerWeek(_ context.Context, userID int64, week string, grid models.PlannerGrid) (*models.PlannerWeek, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasUser(userID) {
		return nil, repository.ErrUnknownOwner
	}
	updatedAt := s.Now()
	s.planner[plannerKey{userID, week}] = plannerEntry{grid: copyGrid(grid), updatedAt: updatedAt}
	return &models.PlannerWeek{Week: week, Data: copyGrid(grid), UpdatedAt: &updatedAt}, nil
}

func copyGrid(g models.PlannerGrid) models.PlannerGrid {
	out := make(models.PlannerGrid, len(g))
	for i := range g {
		out[i] = append([]models.PlannerCell(nil), g[i]...)
	}
	return out
}

func (s *Store) ListWallItems(_ context.Context, userID int64, kind string) ([]models.WallItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.WallItem{}
	for _, w := range s.wall {
		if w.UserID != userID || (kind != "" && w.Kind != kind) {
			continue
		}
		out = append(out, w)
	}
	newestFirst(out, func(w models.WallItem) (time.Time, int64) { return w.CreatedAt, w.ID })
	return out, nil
}

func (s *Store) CreateWallItem(_ context.Context, item models.WallItem) (*models.WallItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasUser(item.UserID) {
		return nil, repository.ErrUnknownOwner
	}
	item.ID = s.id()
	item.CreatedAt = s.Now()
	s.wall[item.ID] = item
	return &item, nil
}

func (s *Store) DeleteWallItem(_ context.Context, id, userID int64) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wall[id]
	if !ok || w.UserID != userID {
		return nil, repository.ErrNotFound
	}
	delete(s.wall, id)
	return w.FilePath, nil
}
