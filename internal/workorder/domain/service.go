package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
)

type CreateWorkOrderRequest struct {
	ServiceRequestID      string
	Title                 string
	Description           string
	IssueDetails          string
	Priority              string
	EquipmentID           string
	ServiceType           string
	ServiceAddress        string
	ScheduledDate         *time.Time
	TimeSlot              string
	DesiredCompletionDate *time.Time
}

type AssignTechnicianRequest struct {
	ID           string
	TechnicianID string
}

type UpdateStatusRequest struct {
	ID     string
	Status string
}

type UpdateScheduleRequest struct {
	ID            string
	ScheduledDate *time.Time
	TimeSlot      string
}

type UpdatePriorityRequest struct {
	ID       string
	Priority string
}

type AddResolutionRequest struct {
	ID                string
	ResolutionDetails string
	TechnicianNotes   string
	Cost              decimal.NullDecimal
}

type AddFeedbackRequest struct {
	ID      string
	Rating  int
	Comment string
}

type ListWorkOrderRequest struct {
	PageToken        string
	PageSize         int32
	Status           string
	ServiceRequestID string
	TechnicianID     string
}

type ListWorkOrderFilter struct {
	Status           Status
	ServiceRequestID snowflake.ID
	TechnicianID     snowflake.ID
}

type ListWorkOrderResponse struct {
	pagination.PageInfo
	WorkOrders []WorkOrder `json:"work_orders"`
}

// Service commands return a nil work order without error when the target
// does not exist.
type Service interface {
	Create(context.Context, CreateWorkOrderRequest) (WorkOrder, error)
	GetByID(ctx context.Context, id string) (WorkOrder, error)
	GetByNumber(ctx context.Context, number string) (WorkOrder, error)
	List(context.Context, ListWorkOrderRequest) (ListWorkOrderResponse, error)
	AssignTechnician(context.Context, AssignTechnicianRequest) (*WorkOrder, error)
	UpdateStatus(context.Context, UpdateStatusRequest) (*WorkOrder, error)
	UpdateSchedule(context.Context, UpdateScheduleRequest) (*WorkOrder, error)
	UpdatePriority(context.Context, UpdatePriorityRequest) (*WorkOrder, error)
	AddResolutionDetails(context.Context, AddResolutionRequest) (*WorkOrder, error)
	AddCustomerFeedback(context.Context, AddFeedbackRequest) (*WorkOrder, error)
}

var (
	ErrInvalidOrganization         = errors.New("invalid_organization")
	ErrInvalidID                   = errors.New("invalid_id")
	ErrInvalidNumber               = errors.New("invalid_work_order_number")
	ErrInvalidTitle                = errors.New("invalid_title")
	ErrInvalidDescription          = errors.New("invalid_description")
	ErrInvalidIssueDetails         = errors.New("invalid_issue_details")
	ErrInvalidEquipmentID          = errors.New("invalid_equipment_id")
	ErrInvalidServiceType          = errors.New("invalid_service_type")
	ErrInvalidServiceAddress       = errors.New("invalid_service_address")
	ErrInvalidStatus               = errors.New("invalid_status")
	ErrInvalidCost                 = errors.New("invalid_cost")
	ErrInvalidServiceRequest       = errors.New("invalid_service_request_id")
	ErrServiceRequestAlreadyLinked = errors.New("service_request_already_linked")
	ErrNotFound                    = errors.New("not_found")
)
