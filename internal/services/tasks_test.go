package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"task-tracker/internal/models"
	"task-tracker/internal/projections"
	"task-tracker/internal/repository"
	"task-tracker/internal/services"
	"task-tracker/internal/storage"

	"github.com/stretchr/testify/suite"
)

type TaskServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *storage.MemoryStore
	repo    *repository.Repository
	service *services.TaskServiceImpl
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = storage.NewMemoryStore()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	suite.repo = repository.New(suite.store, repository.WithClock(func() time.Time { return now }))
	suite.Require().NoError(suite.repo.Open(suite.ctx))
	suite.service = services.NewTaskService(suite.repo, 5)
}

func (suite *TaskServiceTestSuite) create(title, category string, priority models.Priority) models.Task {
	task, err := suite.service.CreateTask(suite.ctx, repository.CreateInput{
		Title:     title,
		StartDate: "2024-05-01",
		Category:  category,
		Priority:  priority,
	})
	suite.Require().NoError(err)
	return task
}

func (suite *TaskServiceTestSuite) seed(n int) []models.Task {
	tasks := make([]models.Task, n)
	for i := range tasks {
		tasks[i] = suite.create(fmt.Sprintf("task %02d", i+1), "", "")
	}
	return tasks
}

func (suite *TaskServiceTestSuite) TestListTasks_Pages() {
	suite.seed(12)

	page := suite.service.ListTasks(services.ListQuery{Page: 3, PageSize: 5})
	suite.Equal(3, page.Page)
	suite.Equal(12, page.Total)
	suite.Equal(3, page.TotalPages)
	suite.Len(page.Tasks, 2)
	suite.Equal("task 11", page.Tasks[0].Title)
}

func (suite *TaskServiceTestSuite) TestListTasks_ClampsOutOfRangePage() {
	suite.seed(7)

	page := suite.service.ListTasks(services.ListQuery{Page: 9, PageSize: 5})
	suite.Equal(2, page.Page)
	suite.Len(page.Tasks, 2)

	page = suite.service.ListTasks(services.ListQuery{Page: 0, PageSize: 5})
	suite.Equal(1, page.Page)
	suite.Len(page.Tasks, 5)
}

func (suite *TaskServiceTestSuite) TestListTasks_EmptyCollection() {
	page := suite.service.ListTasks(services.ListQuery{Page: 4})
	suite.Equal(1, page.Page)
	suite.Equal(5, page.PageSize)
	suite.Equal(0, page.TotalPages)
	suite.Empty(page.Tasks)
}

func (suite *TaskServiceTestSuite) TestListTasks_SortAndFilter() {
	suite.create("b", "Work", models.PriorityLow)
	high := suite.create("a", "Work", models.PriorityHigh)
	suite.create("c", "Home", models.PriorityMedium)

	page := suite.service.ListTasks(services.ListQuery{
		Page: 1, PageSize: 10, SortBy: projections.SortPriority, Order: projections.Desc, Category: "Work",
	})
	suite.Require().Len(page.Tasks, 2)
	suite.Equal(high.ID, page.Tasks[0].ID)
	suite.Equal(2, page.Total)

	_, err := suite.service.SetStatus(suite.ctx, high.ID, models.StatusCancelled)
	suite.Require().NoError(err)

	page = suite.service.ListTasks(services.ListQuery{Page: 1, Status: models.StatusCancelled})
	suite.Require().Len(page.Tasks, 1)
	suite.Equal(high.ID, page.Tasks[0].ID)
}

func (suite *TaskServiceTestSuite) TestProgress_PagesWithOffset() {
	task := suite.create("x", "", "")
	for i := 0; i < 7; i++ {
		_, err := suite.service.AddEntry(suite.ctx, task.ID, "2024-05-02", fmt.Sprintf("note %d", i))
		suite.Require().NoError(err)
	}

	page, err := suite.service.Progress(task.ID, 2, 5)
	suite.Require().NoError(err)
	suite.Equal(5, page.Offset)
	suite.Equal(7, page.Total)
	suite.Equal(2, page.TotalPages)
	suite.Require().Len(page.Entries, 2)
	suite.Equal("note 5", page.Entries[0].Note)

	page, err = suite.service.Progress(task.ID, 99, 5)
	suite.Require().NoError(err)
	suite.Equal(2, page.Page)

	_, err = suite.service.Progress(1, 1, 5)
	suite.True(errors.Is(err, repository.ErrNotFound))
}

func (suite *TaskServiceTestSuite) TestDashboard_DefaultsEveryStatus() {
	tasks := suite.seed(4)
	_, err := suite.service.SetStatus(suite.ctx, tasks[0].ID, models.StatusCompleted)
	suite.Require().NoError(err)

	dashboard := suite.service.Dashboard(2)
	suite.Equal(4, dashboard.Total)
	suite.Len(dashboard.Counts, len(models.Statuses))
	suite.Equal(3, dashboard.Counts[models.StatusPending])
	suite.Equal(1, dashboard.Counts[models.StatusCompleted])
	suite.Equal(0, dashboard.Counts[models.StatusOnHold])
	suite.InDelta(0.25, dashboard.Completed, 0.0001)

	suite.Require().Len(dashboard.Recent, 2)
	suite.Equal(tasks[3].ID, dashboard.Recent[0].ID)
	suite.Equal(tasks[2].ID, dashboard.Recent[1].ID)
}

func (suite *TaskServiceTestSuite) TestDashboard_Empty() {
	dashboard := suite.service.Dashboard(2)
	suite.Equal(0, dashboard.Total)
	suite.Equal(0.0, dashboard.Completed)
	suite.Empty(dashboard.Recent)
}

func (suite *TaskServiceTestSuite) TestGroupings() {
	suite.create("a", "Work", models.PriorityHigh)
	suite.create("b", "", models.PriorityHigh)
	suite.create("c", "Work", models.PriorityLow)

	suite.Equal([]string{"Work", models.DefaultCategory}, suite.service.Categories())
	suite.Len(suite.service.TasksByCategory()["Work"], 2)
	byPriority := suite.service.TasksByPriority()
	suite.Len(byPriority, len(models.Priorities))
	suite.Len(byPriority[models.PriorityHigh], 2)
	suite.NotNil(byPriority[models.PriorityMedium])
	suite.Empty(byPriority[models.PriorityMedium])
	suite.Equal(3, suite.service.StatusCounts()[models.StatusPending])
}

func (suite *TaskServiceTestSuite) TestMutationsPassThrough() {
	task := suite.create("x", "", "")

	task, err := suite.service.AddEntry(suite.ctx, task.ID, "2024-05-02", "first")
	suite.Require().NoError(err)
	entryID := task.Progress[0].ID

	task, err = suite.service.EditEntry(suite.ctx, task.ID, 0, "2024-05-03", "edited")
	suite.Require().NoError(err)
	suite.Equal("edited", task.Progress[0].Note)

	task, err = suite.service.EditEntryByID(suite.ctx, task.ID, entryID, "2024-05-04", "by id")
	suite.Require().NoError(err)
	suite.Equal("by id", task.Progress[0].Note)

	task, err = suite.service.RemoveEntryByID(suite.ctx, task.ID, entryID)
	suite.Require().NoError(err)
	suite.Empty(task.Progress)

	_, err = suite.service.RemoveEntry(suite.ctx, task.ID, 0)
	suite.True(errors.Is(err, repository.ErrIndexOutOfRange))

	title := "renamed"
	task, err = suite.service.UpdateTask(suite.ctx, task.ID, repository.TaskPatch{Title: &title})
	suite.Require().NoError(err)
	suite.Equal("renamed", task.Title)

	task, err = suite.service.ToggleCompleted(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.StatusCompleted, task.Status)

	got, err := suite.service.GetTask(task.ID)
	suite.Require().NoError(err)
	suite.Equal(task, got)

	removed, err := suite.service.DeleteTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.True(removed)
	suite.Equal("[]", string(suite.store.Bytes()))
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
