// Package repository owns the canonical in-memory task collection and keeps
// it in step with the persistent store: every mutation builds a new
// collection, swaps it in and writes it through before returning.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"task-tracker/internal/models"
	"task-tracker/internal/storage"
)

type Repository struct {
	mu      sync.Mutex
	store   storage.Store
	tasks   []models.Task
	lastID  int64
	now     func() time.Time
	logger  *slog.Logger
	timeout time.Duration
}

type Option func(*Repository)

// WithClock replaces the wall clock used for ids and completion dates.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// WithTimeout bounds every store call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Repository) {
		r.timeout = d
	}
}

func New(store storage.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		tasks:  []models.Task{},
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open seeds an empty store and loads the collection. A store failure is
// returned for the caller to report, but the repository stays usable with
// whatever could be loaded.
func (r *Repository) Open(ctx context.Context) error {
	initCtx, cancel := r.storeContext(ctx)
	err := storage.Initialize(initCtx, r.store)
	cancel()

	r.LoadAll(ctx)

	if err != nil {
		r.logger.Warn("store initialization failed, continuing in memory", "error", err)
		return &Error{Op: "open", Err: fmt.Errorf("%w: %w", ErrPersistence, err)}
	}
	return nil
}

// LoadAll replaces the in-memory collection with the stored one. Missing or
// unreadable data yields an empty collection; the failure is logged only.
func (r *Repository) LoadAll(ctx context.Context) []models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := r.readStore(ctx)
	r.tasks = tasks
	r.lastID = maxID(tasks)
	return cloneAll(tasks)
}

func (r *Repository) readStore(ctx context.Context) []models.Task {
	ctx, cancel := r.storeContext(ctx)
	defer cancel()

	data, found, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Error("failed to load tasks", "error", err)
		return []models.Task{}
	}
	if !found {
		return []models.Task{}
	}

	tasks, dropped, err := decodeTasks(data)
	if err != nil {
		r.logger.Error("stored tasks are unreadable, starting empty", "error", err, "bytes", len(data))
		return []models.Task{}
	}
	if dropped > 0 {
		r.logger.Warn("dropped tasks with duplicate ids", "dropped", dropped, "kept", len(tasks))
	}
	return tasks
}

// SaveAll replaces the collection with tasks and writes it. It reports false
// when the collection is rejected or the write fails.
func (r *Repository) SaveAll(ctx context.Context, tasks []models.Task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneAll(tasks)
	if err := checkCollection(next); err != nil {
		r.logger.Error("refusing to save tasks", "error", err)
		return false
	}

	r.tasks = next
	if id := maxID(next); id > r.lastID {
		r.lastID = id
	}

	if err := r.persist(ctx, next); err != nil {
		r.logger.Warn("tasks not persisted, keeping in-memory state", "error", err)
		return false
	}
	return true
}

// Tasks returns a snapshot of the collection in insertion order.
func (r *Repository) Tasks() []models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAll(r.tasks)
}

func (r *Repository) Get(id int64) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Task{}, notFound("get", id)
	}
	return r.tasks[i].Clone(), nil
}

type CreateInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	StartDate   models.Date     `json:"startDate"`
	EndDate     models.Date     `json:"endDate"`
	Category    string          `json:"category"`
	Priority    models.Priority `json:"priority"`
}

func (r *Repository) Create(ctx context.Context, in CreateInput) (models.Task, error) {
	const op = "create"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, invalid(op, 0, "title is required")
	}
	if in.StartDate.IsZero() {
		return models.Task{}, invalid(op, 0, "start date is required")
	}
	if !in.StartDate.Valid() {
		return models.Task{}, invalid(op, 0, "start date %q is not YYYY-MM-DD", in.StartDate)
	}
	if !in.EndDate.IsZero() && !in.EndDate.Valid() {
		return models.Task{}, invalid(op, 0, "end date %q is not YYYY-MM-DD", in.EndDate)
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return models.Task{}, invalid(op, 0, "unknown priority %q", in.Priority)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task := models.Task{
		ID:          r.nextID(),
		Title:       title,
		Description: in.Description,
		Status:      models.StatusPending,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Category:    strings.TrimSpace(in.Category),
		Priority:    in.Priority,
		Progress:    []models.ProgressEntry{},
	}
	task.Normalize()

	next := make([]models.Task, len(r.tasks), len(r.tasks)+1)
	copy(next, r.tasks)
	next = append(next, task)

	err := r.commit(ctx, op, task.ID, next)
	return task.Clone(), err
}

// TaskPatch carries the fields to merge; nil fields are left untouched.
type TaskPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	StartDate   *models.Date     `json:"startDate"`
	EndDate     *models.Date     `json:"endDate"`
	Category    *string          `json:"category"`
	Priority    *models.Priority `json:"priority"`
	Status      *models.Status   `json:"status"`
}

func (r *Repository) UpdateFields(ctx context.Context, id int64, patch TaskPatch) (models.Task, error) {
	const op = "update"

	return r.mutate(ctx, op, id, func(t *models.Task) error {
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return invalid(op, id, "title must not be empty")
			}
			t.Title = title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.StartDate != nil {
			if !patch.StartDate.Valid() {
				return invalid(op, id, "start date %q is not YYYY-MM-DD", *patch.StartDate)
			}
			t.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			if !patch.EndDate.IsZero() && !patch.EndDate.Valid() {
				return invalid(op, id, "end date %q is not YYYY-MM-DD", *patch.EndDate)
			}
			t.EndDate = *patch.EndDate
		}
		if patch.Category != nil {
			t.Category = strings.TrimSpace(*patch.Category)
		}
		if patch.Priority != nil {
			if !patch.Priority.Valid() {
				return invalid(op, id, "unknown priority %q", *patch.Priority)
			}
			t.Priority = *patch.Priority
		}
		if patch.Status != nil {
			if !patch.Status.Valid() {
				return invalid(op, id, "unknown status %q", *patch.Status)
			}
			applyStatus(t, *patch.Status, models.DateOf(r.now()))
		}
		t.Normalize()
		return nil
	})
}

// SetStatus moves a task to status. Entering completed stamps today's date
// when no end date is set; going from completed back to pending clears it.
func (r *Repository) SetStatus(ctx context.Context, id int64, status models.Status) (models.Task, error) {
	const op = "set-status"

	if !status.Valid() {
		return models.Task{}, invalid(op, id, "unknown status %q", status)
	}

	return r.mutate(ctx, op, id, func(t *models.Task) error {
		applyStatus(t, status, models.DateOf(r.now()))
		return nil
	})
}

// ToggleCompleted flips a task between completed and pending. Any status
// other than completed counts as not done.
func (r *Repository) ToggleCompleted(ctx context.Context, id int64) (models.Task, error) {
	return r.mutate(ctx, "toggle", id, func(t *models.Task) error {
		next := models.StatusCompleted
		if t.IsCompleted() {
			next = models.StatusPending
		}
		applyStatus(t, next, models.DateOf(r.now()))
		return nil
	})
}

// Remove deletes the task with id. It reports false, with no write, when no
// such task exists.
func (r *Repository) Remove(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}

	next := make([]models.Task, 0, len(r.tasks)-1)
	next = append(next, r.tasks[:i]...)
	next = append(next, r.tasks[i+1:]...)

	return true, r.commit(ctx, "remove", id, next)
}

func applyStatus(t *models.Task, next models.Status, today models.Date) {
	prev := t.Status
	t.Status = next

	switch {
	case next == models.StatusCompleted && t.EndDate.IsZero():
		t.EndDate = today
	case prev == models.StatusCompleted && next == models.StatusPending:
		t.EndDate = ""
	}
}

// mutate applies fn to a copy of the task and commits a new collection
// holding the copy. When fn fails nothing changes.
func (r *Repository) mutate(ctx context.Context, op string, id int64, fn func(*models.Task) error) (models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Task{}, notFound(op, id)
	}

	updated := r.tasks[i].Clone()
	if err := fn(&updated); err != nil {
		return models.Task{}, err
	}

	next := make([]models.Task, len(r.tasks))
	copy(next, r.tasks)
	next[i] = updated

	err := r.commit(ctx, op, id, next)
	return updated.Clone(), err
}

// commit swaps next in and writes it through. The swap happens even when the
// write fails: memory stays authoritative for the session.
func (r *Repository) commit(ctx context.Context, op string, id int64, next []models.Task) error {
	r.tasks = next

	if err := r.persist(ctx, next); err != nil {
		r.logger.Warn("changes not durable", "op", op, "task_id", id, "error", err)
		return &Error{Op: op, TaskID: id, Err: fmt.Errorf("%w: %w", ErrPersistence, err)}
	}

	r.logger.Debug("tasks persisted", "op", op, "task_id", id, "count", len(next))
	return nil
}

func (r *Repository) persist(ctx context.Context, tasks []models.Task) error {
	data, err := encodeTasks(tasks)
	if err != nil {
		return err
	}

	ctx, cancel := r.storeContext(ctx)
	defer cancel()

	return r.store.Save(ctx, data)
}

func (r *Repository) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return ctx, func() {}
}

func (r *Repository) indexOf(id int64) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID derives ids from the wall clock in milliseconds and bumps past the
// last issued id when two calls land in the same millisecond.
func (r *Repository) nextID() int64 {
	id := r.now().UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return id
}

func encodeTasks(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tasks); err != nil {
		return nil, fmt.Errorf("failed to encode tasks: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// decodeTasks keeps the first task for each id and reports how many later
// duplicates it dropped.
func decodeTasks(data []byte) ([]models.Task, int, error) {
	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, 0, fmt.Errorf("failed to decode tasks: %w", err)
	}
	if tasks == nil {
		return []models.Task{}, 0, nil
	}

	seen := make(map[int64]bool, len(tasks))
	out := tasks[:0]
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		t.Normalize()
		out = append(out, t)
	}
	return out, len(tasks) - len(out), nil
}

func checkCollection(tasks []models.Task) error {
	seen := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate task id %d", ErrInvalidInput, t.ID)
		}
		seen[t.ID] = true
		if !t.Status.Valid() {
			return fmt.Errorf("%w: task %d has unknown status %q", ErrInvalidInput, t.ID, t.Status)
		}
	}
	return nil
}

func maxID(tasks []models.Task) int64 {
	var max int64
	for _, t := range tasks {
		if t.ID > max {
			max = t.ID
		}
		for _, e := range t.Progress {
			if e.ID > max {
				max = e.ID
			}
		}
	}
	return max
}

func cloneAll(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
