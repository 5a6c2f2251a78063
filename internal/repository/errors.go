package repository

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("task not found")
	ErrIndexOutOfRange = errors.New("progress index out of range")
	ErrEntryNotFound   = errors.New("progress entry not found")
	// ErrPersistence marks a mutation that was applied in memory but could
	// not be written to the store. The returned value is still valid.
	ErrPersistence = errors.New("changes not persisted")
)

// Error describes a failed repository operation.
type Error struct {
	Op     string // "create", "update", "set-status", "add-entry", ...
	TaskID int64  // zero when the operation is not scoped to a task
	Err    error
}

func (e *Error) Error() string {
	if e.TaskID != 0 {
		return fmt.Sprintf("%s task %d: %v", e.Op, e.TaskID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalid(op string, taskID int64, format string, args ...any) error {
	return &Error{Op: op, TaskID: taskID, Err: fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))}
}

func notFound(op string, taskID int64) error {
	return &Error{Op: op, TaskID: taskID, Err: ErrNotFound}
}

// IsPersistenceFailure reports whether err only says the change is not durable.
func IsPersistenceFailure(err error) bool {
	return errors.Is(err, ErrPersistence)
}

func outOfRange(op string, taskID int64, index, length int) error {
	return &Error{Op: op, TaskID: taskID, Err: fmt.Errorf("%w: index %d, %d entries", ErrIndexOutOfRange, index, length)}
}

func entryNotFound(op string, taskID, entryID int64) error {
	return &Error{Op: op, TaskID: taskID, Err: fmt.Errorf("%w: id %d", ErrEntryNotFound, entryID)}
}
