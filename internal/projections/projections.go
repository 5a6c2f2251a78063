// Package projections derives read-only views from a task collection. Every
// function is pure: inputs are never modified and results share no slices
// with them.
package projections

import (
	"sort"
	"strings"

	"task-tracker/internal/models"
)

// StatusHistogram counts tasks per status. Statuses with no tasks are absent,
// so lookups must default to zero.
func StatusHistogram(tasks []models.Task) map[models.Status]int {
	counts := make(map[models.Status]int)
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

type Page[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"totalPages"`
}

// Paginate returns the 1-based page of seq. It does not clamp: a page outside
// [1, TotalPages] yields no items, and callers snap with ClampPage first.
func Paginate[T any](seq []T, page, size int) Page[T] {
	if size < 1 {
		return Page[T]{Items: []T{}}
	}

	total := len(seq) / size
	if len(seq)%size != 0 {
		total++
	}
	if page < 1 || page > total {
		return Page[T]{Items: []T{}, TotalPages: total}
	}

	start := (page - 1) * size
	end := start + min(size, len(seq)-start)

	items := make([]T, end-start)
	copy(items, seq[start:end])
	return Page[T]{Items: items, TotalPages: total}
}

// ClampPage snaps page into [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// GroupByCategory buckets tasks by category, keeping insertion order inside
// each bucket. An empty category is grouped as models.DefaultCategory.
func GroupByCategory(tasks []models.Task) map[string][]models.Task {
	groups := make(map[string][]models.Task)
	for _, t := range tasks {
		category := t.Category
		if strings.TrimSpace(category) == "" {
			category = models.DefaultCategory
		}
		groups[category] = append(groups[category], t.Clone())
	}
	return groups
}

// GroupByPriority buckets tasks by priority. Unknown priorities count as medium.
func GroupByPriority(tasks []models.Task) map[models.Priority][]models.Task {
	groups := make(map[models.Priority][]models.Task)
	for _, t := range tasks {
		priority := t.Priority
		if !priority.Valid() {
			priority = models.PriorityMedium
		}
		groups[priority] = append(groups[priority], t.Clone())
	}
	return groups
}

// MostRecent returns the last n tasks by insertion order, newest first.
func MostRecent(tasks []models.Task, n int) []models.Task {
	if n < 0 {
		n = 0
	}
	n = min(n, len(tasks))

	out := make([]models.Task, 0, n)
	for i := len(tasks) - 1; i >= len(tasks)-n; i-- {
		out = append(out, tasks[i].Clone())
	}
	return out
}

// Categories lists the distinct categories in first-seen order.
func Categories(tasks []models.Task) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, t := range tasks {
		category := t.Category
		if strings.TrimSpace(category) == "" {
			category = models.DefaultCategory
		}
		if !seen[category] {
			seen[category] = true
			out = append(out, category)
		}
	}
	return out
}

type SortField string

const (
	SortNone      SortField = ""
	SortPriority  SortField = "priority"
	SortStartDate SortField = "startDate"
	SortTitle     SortField = "title"
	SortStatus    SortField = "status"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSort maps query values onto a field and order. Unknown fields leave
// insertion order; anything but "desc" sorts ascending.
func ParseSort(field, order string) (SortField, SortOrder) {
	f := SortNone
	switch SortField(strings.TrimSpace(field)) {
	case SortPriority:
		f = SortPriority
	case SortStartDate, "start_date":
		f = SortStartDate
	case SortTitle:
		f = SortTitle
	case SortStatus:
		f = SortStatus
	}

	o := Asc
	if strings.EqualFold(strings.TrimSpace(order), string(Desc)) {
		o = Desc
	}
	return f, o
}

// Sort returns a stably sorted copy. SortNone keeps insertion order.
func Sort(tasks []models.Task, field SortField, order SortOrder) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}

	less := lessFunc(field)
	if less == nil {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if order == Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(field SortField) func(a, b models.Task) bool {
	switch field {
	case SortPriority:
		return func(a, b models.Task) bool { return a.Priority.Rank() < b.Priority.Rank() }
	case SortStartDate:
		return func(a, b models.Task) bool { return a.StartDate < b.StartDate }
	case SortTitle:
		return func(a, b models.Task) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortStatus:
		return func(a, b models.Task) bool { return statusRank(a.Status) < statusRank(b.Status) }
	}
	return nil
}

func statusRank(s models.Status) int {
	for i, status := range models.Statuses {
		if status == s {
			return i
		}
	}
	return len(models.Statuses)
}
