package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/polarops/internal/lifecycle"
)

type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusResolved   Status = "RESOLVED"
	StatusCancelled  Status = "CANCELLED"
	StatusRejected   Status = "REJECTED"
)

// Lifecycle requires a real technician and only takes feedback once the work
// is done.
var Lifecycle = lifecycle.Machine[Status]{
	Initial:                 StatusCreated,
	Assigned:                StatusAssigned,
	Resolved:                StatusResolved,
	Completion:              []Status{StatusCompleted, StatusResolved},
	Feedback:                []Status{StatusCompleted, StatusResolved},
	RequirePositiveAssignee: true,
}

func ParseStatus(value string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(value))); s {
	case StatusCreated, StatusAssigned, StatusInProgress, StatusCompleted, StatusResolved, StatusCancelled, StatusRejected:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// NumberPrefix starts every work order number, followed by the creation date
// and an eight character suffix: WO-20261014-1A2B3C4D.
const NumberPrefix = "WO-"

// FormatNumber builds a work order number from the creation time and a
// random token such as a uuid.
func FormatNumber(now time.Time, token string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(token, "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return NumberPrefix + now.UTC().Format("20060102") + "-" + suffix
}

type WorkOrder struct {
	ID               snowflake.ID       `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID       `gorm:"not null;index" json:"organization_id"`
	WorkOrderNumber  string             `gorm:"size:32;not null;uniqueIndex" json:"work_order_number"`
	ServiceRequestID *snowflake.ID      `gorm:"uniqueIndex" json:"service_request_id,omitempty"`
	Title            string             `gorm:"not null" json:"title"`
	Description      string             `gorm:"not null" json:"description"`
	IssueDetails     string             `gorm:"not null" json:"issue_details"`
	CreationTime     time.Time          `gorm:"not null" json:"creation_time"`
	Status           Status             `gorm:"size:16;not null;index" json:"status"`
	Priority         lifecycle.Priority `gorm:"size:16;not null" json:"priority"`

	AssignedTechnicianID snowflake.ID `gorm:"index" json:"assigned_technician_id,omitempty"`
	EquipmentID          snowflake.ID `gorm:"not null;index" json:"equipment_id"`
	ServiceType          string       `gorm:"size:64;not null" json:"service_type"`

	ScheduledDate         *time.Time `json:"scheduled_date,omitempty"`
	TimeSlot              string     `gorm:"size:32" json:"time_slot,omitempty"`
	ServiceAddress        string     `gorm:"not null" json:"service_address"`
	DesiredCompletionDate *time.Time `json:"desired_completion_date,omitempty"`
	ActualCompletionDate  *time.Time `json:"actual_completion_date,omitempty"`

	ResolutionDetails string              `json:"resolution_details,omitempty"`
	TechnicianNotes   string              `json:"technician_notes,omitempty"`
	Cost              decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"cost"`

	CustomerFeedbackRating  *int       `json:"customer_feedback_rating,omitempty"`
	CustomerFeedbackComment string     `json:"customer_feedback_comment,omitempty"`
	FeedbackSubmissionDate  *time.Time `json:"feedback_submission_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (w *WorkOrder) AssignTechnician(technicianID snowflake.ID, now time.Time) error {
	next, err := Lifecycle.Assign(w.Status, int64(technicianID))
	if err != nil {
		return err
	}
	w.AssignedTechnicianID = technicianID
	w.Status = next
	w.UpdatedAt = now
	return nil
}

// UpdateStatus overwrites the status without checking the transition.
func (w *WorkOrder) UpdateStatus(status Status, now time.Time) {
	w.Status = status
	if Lifecycle.StampsCompletion(status) {
		completed := now
		w.ActualCompletionDate = &completed
	}
	w.UpdatedAt = now
}

func (w *WorkOrder) UpdateSchedule(date *time.Time, timeSlot string, now time.Time) {
	w.ScheduledDate = date
	w.TimeSlot = strings.TrimSpace(timeSlot)
	w.UpdatedAt = now
}

func (w *WorkOrder) UpdatePriority(priority lifecycle.Priority, now time.Time) {
	w.Priority = priority
	w.UpdatedAt = now
}

func (w *WorkOrder) AddResolutionDetails(details, notes string, cost decimal.NullDecimal, now time.Time) error {
	details = strings.TrimSpace(details)
	if details == "" {
		return lifecycle.ErrInvalidResolution
	}
	if cost.Valid && cost.Decimal.IsNegative() {
		return ErrInvalidCost
	}
	w.ResolutionDetails = details
	w.TechnicianNotes = strings.TrimSpace(notes)
	w.Cost = cost
	w.UpdateStatus(Lifecycle.Resolved, now)
	return nil
}

// AddCustomerFeedback checks the rating before the status so an out of range
// rating is always a validation failure.
func (w *WorkOrder) AddCustomerFeedback(rating int, comment string, now time.Time) error {
	if err := Lifecycle.ValidateRating(rating); err != nil {
		return err
	}
	if !Lifecycle.CanAcceptFeedback(w.Status) {
		return lifecycle.ErrFeedbackNotAllowed
	}
	submitted := now
	w.CustomerFeedbackRating = &rating
	w.CustomerFeedbackComment = strings.TrimSpace(comment)
	w.FeedbackSubmissionDate = &submitted
	w.UpdatedAt = now
	return nil
}
