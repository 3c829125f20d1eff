package domain

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type UserType string

const (
	UserTypeAll      UserType = ""
	UserTypeClient   UserType = "client"
	UserTypeProvider UserType = "provider"
)

func ParseUserType(value string) (UserType, error) {
	switch t := UserType(strings.ToLower(strings.TrimSpace(value))); t {
	case UserTypeAll, UserTypeClient, UserTypeProvider:
		return t, nil
	case "all":
		return UserTypeAll, nil
	default:
		return "", ErrInvalidUserType
	}
}

type CreatePlanRequest struct {
	PlanName     string
	Price        decimal.Decimal
	Currency     string
	BillingCycle string
	MaxEquipment *int
	MaxClients   *int
	Features     []string
}

type UpdatePlanRequest struct {
	ID           string
	PlanName     string
	Price        decimal.Decimal
	Currency     string
	BillingCycle string
	MaxEquipment *int
	MaxClients   *int
	Features     []string
}

type ListPlanRequest struct {
	UserType string
}

type ListPlanFilter struct {
	UserType UserType
}

type Service interface {
	Create(context.Context, CreatePlanRequest) (Plan, error)
	GetByID(ctx context.Context, id string) (Plan, error)
	List(context.Context, ListPlanRequest) ([]Plan, error)
	UpdatePlan(context.Context, UpdatePlanRequest) (*Plan, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidPlanName     = errors.New("invalid_plan_name")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidBillingCycle = errors.New("invalid_billing_cycle")
	ErrInvalidMaxEquipment = errors.New("invalid_max_equipment")
	ErrInvalidMaxClients   = errors.New("invalid_max_clients")
	ErrInvalidUserType     = errors.New("invalid_user_type")
	ErrPlanCodeExists      = errors.New("plan_code_exists")
	ErrNotFound            = errors.New("not_found")
)
