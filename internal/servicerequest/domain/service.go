package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
)

type CreateServiceRequestRequest struct {
	Title                 string
	Description           string
	IssueDetails          string
	RequestTime           *time.Time
	Priority              string
	Urgency               string
	IsEmergency           bool
	ServiceType           string
	ReportedByUserID      string
	EquipmentID           string
	ScheduledDate         *time.Time
	TimeSlot              string
	ServiceAddress        string
	DesiredCompletionDate *time.Time
}

// UpdateServiceRequestRequest applies the status first and then the
// technician when either is set.
type UpdateServiceRequestRequest struct {
	ID           string
	Status       string
	TechnicianID *string
}

type AssignTechnicianRequest struct {
	ID           string
	TechnicianID string
}

type AddResolutionRequest struct {
	ID                string
	ResolutionDetails string
	TechnicianNotes   string
	Cost              decimal.NullDecimal
}

type AddFeedbackRequest struct {
	ID     string
	Rating int
}

type ListServiceRequestRequest struct {
	PageToken   string
	PageSize    int32
	Status      string
	EquipmentID string
}

type ListServiceRequestFilter struct {
	Status      Status
	EquipmentID snowflake.ID
}

type ListServiceRequestResponse struct {
	pagination.PageInfo
	ServiceRequests []ServiceRequest `json:"service_requests"`
}

// Service commands return a nil request without error when the target does
// not exist.
type Service interface {
	Create(context.Context, CreateServiceRequestRequest) (ServiceRequest, error)
	GetByID(ctx context.Context, id string) (ServiceRequest, error)
	List(context.Context, ListServiceRequestRequest) (ListServiceRequestResponse, error)
	Update(context.Context, UpdateServiceRequestRequest) (*ServiceRequest, error)
	AssignTechnician(context.Context, AssignTechnicianRequest) (*ServiceRequest, error)
	AddResolutionDetails(context.Context, AddResolutionRequest) (*ServiceRequest, error)
	AddCustomerFeedback(context.Context, AddFeedbackRequest) (*ServiceRequest, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidTitle        = errors.New("invalid_title")
	ErrInvalidDescription  = errors.New("invalid_description")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidEquipmentID  = errors.New("invalid_equipment_id")
	ErrInvalidUserID       = errors.New("invalid_reported_by_user_id")
	ErrInvalidCost         = errors.New("invalid_cost")
	ErrNotFound            = errors.New("not_found")
)
