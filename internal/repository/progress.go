package repository

import (
	"context"
	"strings"

	"task-tracker/internal/models"
)

// AddEntry appends a dated note to the task's progress. Both date and note
// are required. The entry gets a stable id from the task id sequence.
func (r *Repository) AddEntry(ctx context.Context, taskID int64, date models.Date, note string) (models.Task, error) {
	const op = "add-entry"

	return r.mutate(ctx, op, taskID, func(t *models.Task) error {
		entry, err := checkEntry(op, taskID, date, note)
		if err != nil {
			return err
		}
		entry.ID = r.nextID()

		progress := make([]models.ProgressEntry, len(t.Progress), len(t.Progress)+1)
		copy(progress, t.Progress)
		t.Progress = append(progress, entry)
		return nil
	})
}

// EditEntry replaces the entry at index. Indexes are positional: any removal
// before index shifts the entry a caller meant to edit.
func (r *Repository) EditEntry(ctx context.Context, taskID int64, index int, date models.Date, note string) (models.Task, error) {
	const op = "edit-entry"

	return r.mutate(ctx, op, taskID, func(t *models.Task) error {
		entry, err := checkEntry(op, taskID, date, note)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(t.Progress) {
			return outOfRange(op, taskID, index, len(t.Progress))
		}
		entry.ID = t.Progress[index].ID
		t.Progress[index] = entry
		return nil
	})
}

// RemoveEntry drops the entry at index. Every later entry moves down by one.
func (r *Repository) RemoveEntry(ctx context.Context, taskID int64, index int) (models.Task, error) {
	const op = "remove-entry"

	return r.mutate(ctx, op, taskID, func(t *models.Task) error {
		if index < 0 || index >= len(t.Progress) {
			return outOfRange(op, taskID, index, len(t.Progress))
		}
		t.Progress = removeAt(t.Progress, index)
		return nil
	})
}

func (r *Repository) EditEntryByID(ctx context.Context, taskID, entryID int64, date models.Date, note string) (models.Task, error) {
	const op = "edit-entry"

	return r.mutate(ctx, op, taskID, func(t *models.Task) error {
		entry, err := checkEntry(op, taskID, date, note)
		if err != nil {
			return err
		}
		i := entryIndex(t.Progress, entryID)
		if i < 0 {
			return entryNotFound(op, taskID, entryID)
		}
		entry.ID = entryID
		t.Progress[i] = entry
		return nil
	})
}

func (r *Repository) RemoveEntryByID(ctx context.Context, taskID, entryID int64) (models.Task, error) {
	const op = "remove-entry"

	return r.mutate(ctx, op, taskID, func(t *models.Task) error {
		i := entryIndex(t.Progress, entryID)
		if i < 0 {
			return entryNotFound(op, taskID, entryID)
		}
		t.Progress = removeAt(t.Progress, i)
		return nil
	})
}

func checkEntry(op string, taskID int64, date models.Date, note string) (models.ProgressEntry, error) {
	if date.IsZero() {
		return models.ProgressEntry{}, invalid(op, taskID, "date is required")
	}
	if !date.Valid() {
		return models.ProgressEntry{}, invalid(op, taskID, "date %q is not YYYY-MM-DD", date)
	}
	if strings.TrimSpace(note) == "" {
		return models.ProgressEntry{}, invalid(op, taskID, "note is required")
	}
	return models.ProgressEntry{Date: date, Note: note}, nil
}

func entryIndex(progress []models.ProgressEntry, entryID int64) int {
	if entryID == 0 {
		return -1
	}
	for i := range progress {
		if progress[i].ID == entryID {
			return i
		}
	}
	return -1
}

func removeAt(progress []models.ProgressEntry, i int) []models.ProgressEntry {
	out := make([]models.ProgressEntry, 0, len(progress)-1)
	out = append(out, progress[:i]...)
	return append(out, progress[i+1:]...)
}
