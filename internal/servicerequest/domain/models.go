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
	StatusPending    Status = "PENDING"
	StatusAccepted   Status = "ACCEPTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusCancelled  Status = "CANCELLED"
	StatusRejected   Status = "REJECTED"
)

// Lifecycle accepts technician id 0 as an unassignment and takes feedback in
// any status.
var Lifecycle = lifecycle.Machine[Status]{
	Initial:    StatusPending,
	Assigned:   StatusAccepted,
	Resolved:   StatusResolved,
	Completion: []Status{StatusResolved},
}

func ParseStatus(value string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(value))); s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusResolved, StatusCancelled, StatusRejected:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

type ServiceRequest struct {
	ID           snowflake.ID       `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID       `gorm:"not null;index" json:"organization_id"`
	OrderNumber  string             `gorm:"size:26;not null;uniqueIndex" json:"order_number"`
	Title        string             `gorm:"not null" json:"title"`
	Description  string             `gorm:"not null" json:"description"`
	IssueDetails string             `json:"issue_details,omitempty"`
	RequestTime  time.Time          `gorm:"not null" json:"request_time"`
	Status       Status             `gorm:"size:16;not null;index" json:"status"`
	Priority     lifecycle.Priority `gorm:"size:16;not null" json:"priority"`
	Urgency      string             `gorm:"size:32" json:"urgency,omitempty"`
	IsEmergency  bool               `gorm:"not null" json:"is_emergency"`
	ServiceType  string             `gorm:"size:64" json:"service_type,omitempty"`

	ReportedByUserID     snowflake.ID `json:"reported_by_user_id,omitempty"`
	EquipmentID          snowflake.ID `gorm:"index" json:"equipment_id,omitempty"`
	AssignedTechnicianID snowflake.ID `gorm:"index" json:"assigned_technician_id,omitempty"`

	ScheduledDate         *time.Time `json:"scheduled_date,omitempty"`
	TimeSlot              string     `gorm:"size:32" json:"time_slot,omitempty"`
	ServiceAddress        string     `json:"service_address,omitempty"`
	DesiredCompletionDate *time.Time `json:"desired_completion_date,omitempty"`
	ActualCompletionDate  *time.Time `json:"actual_completion_date,omitempty"`

	ResolutionDetails      string              `json:"resolution_details,omitempty"`
	TechnicianNotes        string              `json:"technician_notes,omitempty"`
	Cost                   decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"cost"`
	CustomerFeedbackRating *int                `json:"customer_feedback_rating,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// AssignTechnician sets the assignee. Id 0 clears it; a pending request is
// accepted either way.
func (r *ServiceRequest) AssignTechnician(technicianID snowflake.ID, now time.Time) error {
	next, err := Lifecycle.Assign(r.Status, int64(technicianID))
	if err != nil {
		return err
	}
	r.AssignedTechnicianID = technicianID
	r.Status = next
	r.UpdatedAt = now
	return nil
}

// UpdateStatus overwrites the status without checking the transition.
func (r *ServiceRequest) UpdateStatus(status Status, now time.Time) {
	r.Status = status
	if Lifecycle.StampsCompletion(status) {
		r.stampCompletion(now)
	}
	r.UpdatedAt = now
}

func (r *ServiceRequest) AddResolutionDetails(details, notes string, cost decimal.NullDecimal, now time.Time) error {
	details = strings.TrimSpace(details)
	if details == "" {
		return lifecycle.ErrInvalidResolution
	}
	if cost.Valid && cost.Decimal.IsNegative() {
		return ErrInvalidCost
	}
	r.ResolutionDetails = details
	r.TechnicianNotes = strings.TrimSpace(notes)
	r.Cost = cost
	r.UpdateStatus(Lifecycle.Resolved, now)
	return nil
}

func (r *ServiceRequest) AddCustomerFeedback(rating int, now time.Time) error {
	if err := Lifecycle.ValidateRating(rating); err != nil {
		return err
	}
	if !Lifecycle.CanAcceptFeedback(r.Status) {
		return lifecycle.ErrFeedbackNotAllowed
	}
	r.CustomerFeedbackRating = &rating
	r.UpdatedAt = now
	return nil
}

func (r *ServiceRequest) stampCompletion(now time.Time) {
	completed := now
	r.ActualCompletionDate = &completed
}
