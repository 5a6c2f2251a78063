package projections

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/models"
)

func task(id int64, title string, status models.Status, category string, priority models.Priority, start models.Date) models.Task {
	return models.Task{
		ID:        id,
		Title:     title,
		Status:    status,
		Category:  category,
		Priority:  priority,
		StartDate: start,
		Progress:  []models.ProgressEntry{},
	}
}

func sampleTasks() []models.Task {
	return []models.Task{
		task(1, "Write docs", models.StatusPending, "Work", models.PriorityLow, "2024-01-03"),
		task(2, "buy milk", models.StatusCompleted, "Home", models.PriorityHigh, "2024-01-01"),
		task(3, "Refactor", models.StatusOnProgress, "Work", models.PriorityMedium, "2024-01-02"),
		task(4, "Call bank", models.StatusPending, "", models.PriorityHigh, "2024-01-05"),
	}
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestStatusHistogram(t *testing.T) {
	tasks := []models.Task{
		{Status: models.StatusPending},
		{Status: models.StatusPending},
		{Status: models.StatusCompleted},
	}

	counts := StatusHistogram(tasks)
	assert.Equal(t, map[models.Status]int{models.StatusPending: 2, models.StatusCompleted: 1}, counts)

	_, ok := counts[models.StatusCancelled]
	assert.False(t, ok)

	assert.Empty(t, StatusHistogram(nil))
}

func TestPaginate_Formula(t *testing.T) {
	for length := 0; length <= 12; length++ {
		seq := make([]int, length)
		for i := range seq {
			seq[i] = i
		}
		for size := 1; size <= 5; size++ {
			wantTotal := (length + size - 1) / size
			for page := 1; page <= wantTotal+2; page++ {
				got := Paginate(seq, page, size)
				want := min(size, max(0, length-(page-1)*size))

				assert.Len(t, got.Items, want, "len=%d page=%d size=%d", length, page, size)
				assert.Equal(t, wantTotal, got.TotalPages, "len=%d size=%d", length, size)
				if want > 0 {
					assert.Equal(t, (page-1)*size, got.Items[0])
				}
			}
		}
	}
}

func TestPaginate_EdgeCases(t *testing.T) {
	seq := []string{"a", "b", "c", "d", "e", "f", "g"}

	page := Paginate(seq, 2, 5)
	assert.Equal(t, []string{"f", "g"}, page.Items)
	assert.Equal(t, 2, page.TotalPages)

	assert.Empty(t, Paginate(seq, 0, 5).Items)
	assert.Empty(t, Paginate(seq, -3, 5).Items)
	assert.Empty(t, Paginate(seq, 3, 5).Items)

	empty := Paginate([]string{}, 1, 5)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)

	zero := Paginate(seq, 1, 0)
	assert.Empty(t, zero.Items)
	assert.Equal(t, 0, zero.TotalPages)

	huge := Paginate(seq, 1, math.MaxInt)
	assert.Equal(t, seq, huge.Items)
	assert.Equal(t, 1, huge.TotalPages)
	assert.Empty(t, Paginate(seq, 2, math.MaxInt).Items)

	nearMax := Paginate(seq, 1, math.MaxInt-3)
	assert.Len(t, nearMax.Items, len(seq))
	assert.Equal(t, 1, nearMax.TotalPages)
}

func TestPaginate_DoesNotAliasInput(t *testing.T) {
	seq := []int{1, 2, 3}
	page := Paginate(seq, 1, 2)
	page.Items[0] = 99
	assert.Equal(t, 1, seq[0])
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		page, total, want int
	}{
		{1, 3, 1},
		{2, 3, 2},
		{4, 3, 3},
		{0, 3, 1},
		{-1, 3, 1},
		{1, 0, 1},
		{5, 0, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampPage(tt.page, tt.total), "ClampPage(%d, %d)", tt.page, tt.total)
	}
}

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory(sampleTasks())

	require.Len(t, groups, 3)
	assert.Equal(t, []int64{1, 3}, ids(groups["Work"]))
	assert.Equal(t, []int64{2}, ids(groups["Home"]))
	assert.Equal(t, []int64{4}, ids(groups[models.DefaultCategory]))
}

func TestGroupByPriority(t *testing.T) {
	tasks := append(sampleTasks(), task(5, "odd", models.StatusPending, "Work", "", "2024-01-01"))
	groups := GroupByPriority(tasks)

	assert.Equal(t, []int64{1}, ids(groups[models.PriorityLow]))
	assert.Equal(t, []int64{3, 5}, ids(groups[models.PriorityMedium]))
	assert.Equal(t, []int64{2, 4}, ids(groups[models.PriorityHigh]))
}

func TestMostRecent(t *testing.T) {
	tasks := sampleTasks()

	assert.Equal(t, []int64{4, 3}, ids(MostRecent(tasks, 2)))
	assert.Equal(t, []int64{4, 3, 2, 1}, ids(MostRecent(tasks, 10)))
	assert.Empty(t, MostRecent(tasks, 0))
	assert.Empty(t, MostRecent(tasks, -1))
	assert.Empty(t, MostRecent(nil, 2))

	assert.Equal(t, int64(1), tasks[0].ID)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Work", "Home", models.DefaultCategory}, Categories(sampleTasks()))
	assert.Equal(t, []string{}, Categories(nil))
}

func TestSort(t *testing.T) {
	tasks := sampleTasks()

	tests := []struct {
		field SortField
		order SortOrder
		want  []int64
	}{
		{SortNone, Asc, []int64{1, 2, 3, 4}},
		{SortPriority, Asc, []int64{1, 3, 2, 4}},
		{SortPriority, Desc, []int64{2, 4, 3, 1}},
		{SortStartDate, Asc, []int64{2, 3, 1, 4}},
		{SortStartDate, Desc, []int64{4, 1, 3, 2}},
		{SortTitle, Asc, []int64{2, 4, 3, 1}},
		{SortStatus, Asc, []int64{1, 4, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(string(tt.field)+"_"+string(tt.order), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(tasks, tt.field, tt.order)))
		})
	}

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(tasks))
}

func TestParseSort(t *testing.T) {
	field, order := ParseSort("priority", "DESC")
	assert.Equal(t, SortPriority, field)
	assert.Equal(t, Desc, order)

	field, order = ParseSort("start_date", "")
	assert.Equal(t, SortStartDate, field)
	assert.Equal(t, Asc, order)

	field, _ = ParseSort("created_at", "asc")
	assert.Equal(t, SortNone, field)
}
