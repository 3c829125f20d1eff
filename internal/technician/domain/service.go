package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/polarops/pkg/db/pagination"
)

const MaxRating = 5.0

type CreateTechnicianRequest struct {
	Name           string
	Specialization string
	Phone          string
	Email          string
	Rating         float64
	Availability   string
	CompanyID      string
}

type ListTechnicianRequest struct {
	PageToken    string
	PageSize     int32
	Availability string
}

type ListTechnicianFilter struct {
	Availability Availability
}

type ListTechnicianResponse struct {
	pagination.PageInfo
	Technicians []Technician `json:"technicians"`
}

type Service interface {
	Create(context.Context, CreateTechnicianRequest) (Technician, error)
	GetByID(ctx context.Context, id string) (Technician, error)
	List(context.Context, ListTechnicianRequest) (ListTechnicianResponse, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidRating       = errors.New("invalid_rating")
	ErrInvalidAvailability = errors.New("invalid_availability")
	ErrInvalidCompanyID    = errors.New("invalid_company_id")
	ErrNotFound            = errors.New("not_found")
)
