package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"task-tracker/internal/models"
)

func TestTask_Normalize(t *testing.T) {
	task := models.Task{
		ID:        1,
		Title:     "Test Task",
		StartDate: "2024-01-01",
	}

	task.Normalize()

	if task.Category != models.DefaultCategory {
		t.Errorf("Expected category '%s', got '%s'", models.DefaultCategory, task.Category)
	}

	if task.Priority != models.PriorityMedium {
		t.Errorf("Expected priority 'medium', got '%s'", task.Priority)
	}

	if task.Status != models.StatusPending {
		t.Errorf("Expected status 'pending', got '%s'", task.Status)
	}

	if task.Progress == nil || len(task.Progress) != 0 {
		t.Errorf("Expected empty non-nil progress, got %#v", task.Progress)
	}
}

func TestTask_NormalizeKeepsValidFields(t *testing.T) {
	task := models.Task{
		Title:    "Keep",
		Status:   models.StatusOnHold,
		Category: "Testing",
		Priority: models.PriorityHigh,
		Progress: []models.ProgressEntry{{Date: "2024-01-02", Note: "A"}},
	}

	task.Normalize()

	if task.Status != models.StatusOnHold || task.Category != "Testing" || task.Priority != models.PriorityHigh {
		t.Errorf("Normalize changed valid fields: %+v", task)
	}
	if len(task.Progress) != 1 {
		t.Errorf("Expected progress to be preserved, got %d entries", len(task.Progress))
	}
}

func TestTask_NormalizeUnknownStatus(t *testing.T) {
	task := models.Task{Title: "Bad", Status: "archived"}
	task.Normalize()

	if task.Status != models.StatusPending {
		t.Errorf("Expected unknown status to normalize to pending, got '%s'", task.Status)
	}
}

func TestTask_CloneDoesNotShareProgress(t *testing.T) {
	original := models.Task{
		Title:    "Original",
		Progress: []models.ProgressEntry{{Date: "2024-01-01", Note: "A"}},
	}

	clone := original.Clone()
	clone.Progress[0].Note = "changed"

	if original.Progress[0].Note != "A" {
		t.Errorf("Clone shares the progress slice with the original")
	}
}

func TestTask_JSONFieldNames(t *testing.T) {
	task := models.Task{
		ID:        1704067200000,
		Title:     "Write report",
		Status:    models.StatusPending,
		StartDate: "2024-01-01",
		Category:  models.DefaultCategory,
		Priority:  models.PriorityMedium,
		Progress:  []models.ProgressEntry{{Date: "2024-01-02", Note: "B"}},
	}

	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("Failed to marshal task: %v", err)
	}

	expected := `{"id":1704067200000,"title":"Write report","description":"","status":"pending","startDate":"2024-01-01","endDate":"","category":"Uncategorized","priority":"medium","progress":[{"date":"2024-01-02","note":"B"}]}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, string(data))
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    models.Status
		wantErr bool
	}{
		{"pending", models.StatusPending, false},
		{"On-Progress", models.StatusOnProgress, false},
		{" completed ", models.StatusCompleted, false},
		{"cancelled", models.StatusCancelled, false},
		{"on-hold", models.StatusOnHold, false},
		{"done", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := models.ParseStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatus_Label(t *testing.T) {
	if got := models.StatusOnProgress.Label(); got != "On Progress" {
		t.Errorf("Expected 'On Progress', got '%s'", got)
	}
	if got := models.StatusCompleted.Label(); got != "Completed" {
		t.Errorf("Expected 'Completed', got '%s'", got)
	}
}

func TestParsePriority(t *testing.T) {
	if p, err := models.ParsePriority("HIGH"); err != nil || p != models.PriorityHigh {
		t.Errorf("Expected high priority, got %q (%v)", p, err)
	}
	if _, err := models.ParsePriority("urgent"); err == nil {
		t.Error("Expected error for unknown priority")
	}
}

func TestPriority_Rank(t *testing.T) {
	if !(models.PriorityLow.Rank() < models.PriorityMedium.Rank() && models.PriorityMedium.Rank() < models.PriorityHigh.Rank()) {
		t.Error("Expected low < medium < high")
	}
}

func TestParseDate(t *testing.T) {
	d, err := models.ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("Expected valid leap day, got %v", err)
	}
	if d != "2024-02-29" {
		t.Errorf("Expected 2024-02-29, got %s", d)
	}

	if _, err := models.ParseDate("2023-02-29"); err == nil {
		t.Error("Expected error for invalid date")
	}

	if _, err := models.ParseDate("01/02/2024"); err == nil {
		t.Error("Expected error for wrong layout")
	}

	empty, err := models.ParseDate("  ")
	if err != nil || !empty.IsZero() {
		t.Errorf("Expected empty date without error, got %q (%v)", empty, err)
	}
}

func TestDateOf(t *testing.T) {
	now := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)
	if got := models.DateOf(now); got != "2024-03-05" {
		t.Errorf("Expected 2024-03-05, got %s", got)
	}
}
