package production

import (
	"errors"
	"fmt"

	"github.com/andrescamacho/shopfloor-go/internal/domain/shared"
)

// NewValidationError builds a client-correctable error for a single field
func NewValidationError(field, message string) *shared.ValidationError {
	return shared.NewValidationError(field, message)
}

// ErrInvalidTaskTransition indicates an invalid task state transition
type ErrInvalidTaskTransition struct {
	TaskID      string
	From        TaskStatus
	To          TaskStatus
	Description string
}

func (e *ErrInvalidTaskTransition) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("invalid task transition for %s: %s -> %s: %s",
			e.TaskID, e.From, e.To, e.Description)
	}
	return fmt.Sprintf("invalid task transition for %s: %s -> %s",
		e.TaskID, e.From, e.To)
}

// ErrTaskNotFound indicates a task could not be found
type ErrTaskNotFound struct {
	TaskID string
}

func (e *ErrTaskNotFound) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

// ErrTaskNotDeletable is returned when deleting a task that already left pending
type ErrTaskNotDeletable struct {
	TaskID string
	Status TaskStatus
}

func (e *ErrTaskNotDeletable) Error() string {
	return fmt.Sprintf("task %s cannot be deleted in status %s, cancel it instead", e.TaskID, e.Status)
}

// ErrFieldLocked is returned when editing a planning field after production started
type ErrFieldLocked struct {
	TaskID string
	Field  string
	Status TaskStatus
}

func (e *ErrFieldLocked) Error() string {
	return fmt.Sprintf("field %s of task %s is locked in status %s", e.Field, e.TaskID, e.Status)
}

// ErrRegistrationRejected is returned when a task cannot accept quantities in its current state
type ErrRegistrationRejected struct {
	TaskID string
	Status TaskStatus
	Reason string
}

func (e *ErrRegistrationRejected) Error() string {
	return fmt.Sprintf("task %s rejects registration in status %s: %s", e.TaskID, e.Status, e.Reason)
}

// ErrProductNotFound indicates an unknown product or article
type ErrProductNotFound struct {
	Reference string
}

func (e *ErrProductNotFound) Error() string {
	return fmt.Sprintf("product not found: %s", e.Reference)
}

// IsValidationError reports whether err is client-correctable input
func IsValidationError(err error) bool {
	var v *shared.ValidationError
	return errors.As(err, &v)
}

// IsStateError reports whether err means the operation is not permitted in the task's current state
func IsStateError(err error) bool {
	var transition *ErrInvalidTaskTransition
	var notDeletable *ErrTaskNotDeletable
	var locked *ErrFieldLocked
	var rejected *ErrRegistrationRejected
	return errors.As(err, &transition) ||
		errors.As(err, &notDeletable) ||
		errors.As(err, &locked) ||
		errors.As(err, &rejected)
}

// IsNotFound reports whether err refers to a missing task or product
func IsNotFound(err error) bool {
	var task *ErrTaskNotFound
	var product *ErrProductNotFound
	var generic *shared.NotFoundError
	return errors.As(err, &task) || errors.As(err, &product) || errors.As(err, &generic)
}
