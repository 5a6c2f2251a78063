package models

import (
	"fmt"
	"strings"
	"time"
)

const DefaultCategory = "Uncategorized"

type Status string

const (
	StatusPending    Status = "pending"
	StatusOnProgress Status = "on-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusOnHold     Status = "on-hold"
)

// Statuses lists every lifecycle value in display order.
var Statuses = []Status{
	StatusPending,
	StatusOnProgress,
	StatusCompleted,
	StatusCancelled,
	StatusOnHold,
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusOnProgress, StatusCompleted, StatusCancelled, StatusOnHold:
		return true
	}
	return false
}

// Label renders the status for humans, e.g. "on-progress" -> "On Progress".
func (s Status) Label() string {
	return titleWords(strings.Split(string(s), "-"))
}

func (s Status) String() string {
	return string(s)
}

func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", value)
	}
	return s, nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities from low (0) to high (2). Unknown values rank as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	default:
		return 1
	}
}

func (p Priority) Label() string {
	return titleWords([]string{string(p)})
}

func (p Priority) String() string {
	return string(p)
}

func ParsePriority(value string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(value)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", value)
	}
	return p, nil
}

// Task is the root entity of the tracker. Field order matches the persisted layout.
type Task struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
	StartDate   Date            `json:"startDate"`
	EndDate     Date            `json:"endDate"`
	Category    string          `json:"category"`
	Priority    Priority        `json:"priority"`
	Progress    []ProgressEntry `json:"progress"`
}

// ProgressEntry is a dated note owned by exactly one task. ID is zero for
// entries written before stable ids existed; those are addressable by index only.
type ProgressEntry struct {
	ID   int64  `json:"id,omitempty"`
	Date Date   `json:"date"`
	Note string `json:"note"`
}

// Normalize fills every defaulted field so downstream readers never repeat
// the fallback logic.
func (t *Task) Normalize() {
	if strings.TrimSpace(t.Category) == "" {
		t.Category = DefaultCategory
	}
	if !t.Priority.Valid() {
		t.Priority = PriorityMedium
	}
	if !t.Status.Valid() {
		t.Status = StatusPending
	}
	if t.Progress == nil {
		t.Progress = []ProgressEntry{}
	}
}

// Clone returns a deep copy; the progress slice is never shared.
func (t Task) Clone() Task {
	c := t
	if t.Progress != nil {
		c.Progress = make([]ProgressEntry, len(t.Progress))
		copy(c.Progress, t.Progress)
	}
	return c
}

func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

func titleWords(words []string) string {
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

const dateLayout = "2006-01-02"

// Date is a calendar date stored as YYYY-MM-DD. The empty Date means unset.
type Date string

func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", value)
	}
	return Date(value), nil
}

func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func (d Date) IsZero() bool {
	return d == ""
}

func (d Date) Valid() bool {
	if d.IsZero() {
		return false
	}
	_, err := time.Parse(dateLayout, string(d))
	return err == nil
}

func (d Date) String() string {
	return string(d)
}
