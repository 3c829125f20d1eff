// Package lifecycle holds the transition table shared by entities that are
// assigned to a technician and later resolved by one.
package lifecycle

import "errors"

var (
	ErrInvalidTechnician  = errors.New("invalid_technician_id")
	ErrInvalidRating      = errors.New("invalid_rating")
	ErrInvalidResolution  = errors.New("invalid_resolution_details")
	ErrFeedbackNotAllowed = errors.New("feedback_not_allowed")
)

const (
	MinRating = 1
	MaxRating = 5
)

// Machine describes the assignment and completion rules for one status type.
type Machine[S ~string] struct {
	Initial  S
	Assigned S
	Resolved S

	// Completion statuses stamp the actual completion date.
	Completion []S
	// Feedback statuses accept customer feedback. Empty accepts any status.
	Feedback []S

	RequirePositiveAssignee bool
}

// Assign returns the status after a technician assignment. Only the initial
// status advances; every other status is kept.
func (m Machine[S]) Assign(current S, technicianID int64) (S, error) {
	if m.RequirePositiveAssignee && technicianID <= 0 {
		return current, ErrInvalidTechnician
	}
	if technicianID < 0 {
		return current, ErrInvalidTechnician
	}
	if current == m.Initial {
		return m.Assigned, nil
	}
	return current, nil
}

func (m Machine[S]) StampsCompletion(status S) bool {
	return contains(m.Completion, status)
}

func (m Machine[S]) CanAcceptFeedback(status S) bool {
	if len(m.Feedback) == 0 {
		return true
	}
	return contains(m.Feedback, status)
}

func (m Machine[S]) ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

func contains[S ~string](values []S, v S) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}
