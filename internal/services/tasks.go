package services

import (
	"context"

	"task-tracker/internal/models"
	"task-tracker/internal/projections"
	"task-tracker/internal/repository"
)

// TaskService is the query and mutation surface the HTTP API and the CLI are
// built on.
type TaskService interface {
	ListTasks(query ListQuery) TaskPage
	GetTask(id int64) (models.Task, error)
	CreateTask(ctx context.Context, input repository.CreateInput) (models.Task, error)
	UpdateTask(ctx context.Context, id int64, patch repository.TaskPatch) (models.Task, error)
	SetStatus(ctx context.Context, id int64, status models.Status) (models.Task, error)
	ToggleCompleted(ctx context.Context, id int64) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)

	Progress(taskID int64, page, size int) (ProgressPage, error)
	AddEntry(ctx context.Context, taskID int64, date models.Date, note string) (models.Task, error)
	EditEntry(ctx context.Context, taskID int64, index int, date models.Date, note string) (models.Task, error)
	RemoveEntry(ctx context.Context, taskID int64, index int) (models.Task, error)
	EditEntryByID(ctx context.Context, taskID, entryID int64, date models.Date, note string) (models.Task, error)
	RemoveEntryByID(ctx context.Context, taskID, entryID int64) (models.Task, error)

	Dashboard(recent int) Dashboard
	StatusCounts() map[models.Status]int
	Categories() []string
	TasksByCategory() map[string][]models.Task
	TasksByPriority() map[models.Priority][]models.Task
}

type ListQuery struct {
	Page     int
	PageSize int
	SortBy   projections.SortField
	Order    projections.SortOrder
	Status   models.Status
	Category string
}

type TaskPage struct {
	Tasks      []models.Task `json:"tasks"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}

type ProgressPage struct {
	TaskID     int64                  `json:"taskId"`
	Entries    []models.ProgressEntry `json:"entries"`
	Offset     int                    `json:"offset"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"pageSize"`
	Total      int                    `json:"total"`
	TotalPages int                    `json:"totalPages"`
}

type Dashboard struct {
	Total     int                   `json:"total"`
	Counts    map[models.Status]int `json:"counts"`
	Completed float64               `json:"completedRatio"`
	Recent    []models.Task         `json:"recent"`
}

type TaskServiceImpl struct {
	repo            *repository.Repository
	defaultPageSize int
}

func NewTaskService(repo *repository.Repository, defaultPageSize int) *TaskServiceImpl {
	if defaultPageSize < 1 {
		defaultPageSize = 5
	}
	return &TaskServiceImpl{repo: repo, defaultPageSize: defaultPageSize}
}

// ListTasks filters and sorts the collection, then returns the requested page
// snapped into range the way next/prev navigation does.
func (s *TaskServiceImpl) ListTasks(query ListQuery) TaskPage {
	size := query.PageSize
	if size < 1 {
		size = s.defaultPageSize
	}

	tasks := filter(s.repo.Tasks(), query.Status, query.Category)
	tasks = projections.Sort(tasks, query.SortBy, query.Order)

	totalPages := projections.Paginate(tasks, 1, size).TotalPages
	page := projections.ClampPage(query.Page, totalPages)
	result := projections.Paginate(tasks, page, size)

	return TaskPage{
		Tasks:      result.Items,
		Page:       page,
		PageSize:   size,
		Total:      len(tasks),
		TotalPages: result.TotalPages,
	}
}

func (s *TaskServiceImpl) GetTask(id int64) (models.Task, error) {
	return s.repo.Get(id)
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, input repository.CreateInput) (models.Task, error) {
	return s.repo.Create(ctx, input)
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, id int64, patch repository.TaskPatch) (models.Task, error) {
	return s.repo.UpdateFields(ctx, id, patch)
}

func (s *TaskServiceImpl) SetStatus(ctx context.Context, id int64, status models.Status) (models.Task, error) {
	return s.repo.SetStatus(ctx, id, status)
}

func (s *TaskServiceImpl) ToggleCompleted(ctx context.Context, id int64) (models.Task, error) {
	return s.repo.ToggleCompleted(ctx, id)
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id int64) (bool, error) {
	return s.repo.Remove(ctx, id)
}

// Progress pages through one task's entries. Offset is the index of the first
// returned entry, which is what index-addressed edits need.
func (s *TaskServiceImpl) Progress(taskID int64, page, size int) (ProgressPage, error) {
	task, err := s.repo.Get(taskID)
	if err != nil {
		return ProgressPage{}, err
	}
	if size < 1 {
		size = s.defaultPageSize
	}

	totalPages := projections.Paginate(task.Progress, 1, size).TotalPages
	page = projections.ClampPage(page, totalPages)
	result := projections.Paginate(task.Progress, page, size)

	return ProgressPage{
		TaskID:     taskID,
		Entries:    result.Items,
		Offset:     (page - 1) * size,
		Page:       page,
		PageSize:   size,
		Total:      len(task.Progress),
		TotalPages: result.TotalPages,
	}, nil
}

func (s *TaskServiceImpl) AddEntry(ctx context.Context, taskID int64, date models.Date, note string) (models.Task, error) {
	return s.repo.AddEntry(ctx, taskID, date, note)
}

func (s *TaskServiceImpl) EditEntry(ctx context.Context, taskID int64, index int, date models.Date, note string) (models.Task, error) {
	return s.repo.EditEntry(ctx, taskID, index, date, note)
}

func (s *TaskServiceImpl) RemoveEntry(ctx context.Context, taskID int64, index int) (models.Task, error) {
	return s.repo.RemoveEntry(ctx, taskID, index)
}

func (s *TaskServiceImpl) EditEntryByID(ctx context.Context, taskID, entryID int64, date models.Date, note string) (models.Task, error) {
	return s.repo.EditEntryByID(ctx, taskID, entryID, date, note)
}

func (s *TaskServiceImpl) RemoveEntryByID(ctx context.Context, taskID, entryID int64) (models.Task, error) {
	return s.repo.RemoveEntryByID(ctx, taskID, entryID)
}

// Dashboard summarizes the collection. Every status has a count, zero
// included, so renderers never need a fallback.
func (s *TaskServiceImpl) Dashboard(recent int) Dashboard {
	tasks := s.repo.Tasks()
	counts := s.statusCounts(tasks)

	var ratio float64
	if len(tasks) > 0 {
		ratio = float64(counts[models.StatusCompleted]) / float64(len(tasks))
	}

	return Dashboard{
		Total:     len(tasks),
		Counts:    counts,
		Completed: ratio,
		Recent:    projections.MostRecent(tasks, recent),
	}
}

func (s *TaskServiceImpl) StatusCounts() map[models.Status]int {
	return s.statusCounts(s.repo.Tasks())
}

func (s *TaskServiceImpl) statusCounts(tasks []models.Task) map[models.Status]int {
	histogram := projections.StatusHistogram(tasks)
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, status := range models.Statuses {
		counts[status] = histogram[status]
	}
	return counts
}

func (s *TaskServiceImpl) Categories() []string {
	return projections.Categories(s.repo.Tasks())
}

func (s *TaskServiceImpl) TasksByCategory() map[string][]models.Task {
	return projections.GroupByCategory(s.repo.Tasks())
}

// TasksByPriority groups tasks by priority. Every priority has a bucket,
// empty ones included.
func (s *TaskServiceImpl) TasksByPriority() map[models.Priority][]models.Task {
	groups := projections.GroupByPriority(s.repo.Tasks())
	for _, p := range models.Priorities {
		if groups[p] == nil {
			groups[p] = []models.Task{}
		}
	}
	return groups
}

func filter(tasks []models.Task, status models.Status, category string) []models.Task {
	if status == "" && category == "" {
		return tasks
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if status != "" && t.Status != status {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	return out
}
