package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type BillingCycle string

const (
	BillingMonthly BillingCycle = "MONTHLY"
	BillingYearly  BillingCycle = "YEARLY"
)

const DefaultCurrency = "USD"

func ParseBillingCycle(value string) (BillingCycle, error) {
	switch c := BillingCycle(strings.ToUpper(strings.TrimSpace(value))); c {
	case "":
		return BillingMonthly, nil
	case BillingMonthly, BillingYearly:
		return c, nil
	default:
		return "", ErrInvalidBillingCycle
	}
}

// Plan is a subscription plan descriptor. Client plans cap equipment and
// provider plans cap clients.
type Plan struct {
	ID           snowflake.ID                `gorm:"primaryKey" json:"id"`
	Code         string                      `gorm:"size:128;not null;uniqueIndex" json:"code"`
	PlanName     string                      `gorm:"not null" json:"plan_name"`
	Price        decimal.Decimal             `gorm:"type:numeric(12,2);not null" json:"price"`
	Currency     string                      `gorm:"size:3;not null" json:"currency"`
	BillingCycle BillingCycle                `gorm:"size:16;not null" json:"billing_cycle"`
	MaxEquipment *int                        `json:"max_equipment,omitempty"`
	MaxClients   *int                        `json:"max_clients,omitempty"`
	Features     datatypes.JSONSlice[string] `json:"features"`
	CreatedAt    time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Plan) TableName() string {
	return "subscription_plans"
}

// PlanTerms is the full set of mutable plan attributes.
type PlanTerms struct {
	PlanName     string
	Price        decimal.Decimal
	Currency     string
	BillingCycle BillingCycle
	MaxEquipment *int
	MaxClients   *int
	Features     []string
}

// NewPlan validates the terms. The code is derived by the caller.
func NewPlan(id snowflake.ID, code string, terms PlanTerms, now time.Time) (*Plan, error) {
	terms, err := normalizeTerms(terms)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrInvalidPlanName
	}
	features := terms.Features
	if features == nil {
		features = []string{}
	}
	return &Plan{
		ID:           id,
		Code:         code,
		PlanName:     terms.PlanName,
		Price:        terms.Price,
		Currency:     terms.Currency,
		BillingCycle: terms.BillingCycle,
		MaxEquipment: terms.MaxEquipment,
		MaxClients:   terms.MaxClients,
		Features:     datatypes.JSONSlice[string](features),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UpdatePlan replaces the plan terms wholesale. Features are kept when terms
// carries none, and the code never changes.
func (p *Plan) UpdatePlan(terms PlanTerms, now time.Time) error {
	terms, err := normalizeTerms(terms)
	if err != nil {
		return err
	}
	p.PlanName = terms.PlanName
	p.Price = terms.Price
	p.Currency = terms.Currency
	p.BillingCycle = terms.BillingCycle
	p.MaxEquipment = terms.MaxEquipment
	p.MaxClients = terms.MaxClients
	if terms.Features != nil {
		p.Features = datatypes.JSONSlice[string](terms.Features)
	}
	p.UpdatedAt = now
	return nil
}

func normalizeTerms(terms PlanTerms) (PlanTerms, error) {
	terms.PlanName = strings.TrimSpace(terms.PlanName)
	if terms.PlanName == "" {
		return terms, ErrInvalidPlanName
	}
	if terms.Price.IsNegative() {
		return terms, ErrInvalidPrice
	}
	terms.Currency = strings.ToUpper(strings.TrimSpace(terms.Currency))
	if terms.Currency == "" {
		terms.Currency = DefaultCurrency
	}
	if len(terms.Currency) != 3 {
		return terms, ErrInvalidCurrency
	}
	cycle, err := ParseBillingCycle(string(terms.BillingCycle))
	if err != nil {
		return terms, err
	}
	terms.BillingCycle = cycle
	if terms.MaxEquipment != nil && *terms.MaxEquipment < 0 {
		return terms, ErrInvalidMaxEquipment
	}
	if terms.MaxClients != nil && *terms.MaxClients < 0 {
		return terms, ErrInvalidMaxClients
	}
	if terms.Features != nil {
		features := make([]string, 0, len(terms.Features))
		for _, f := range terms.Features {
			if f = strings.TrimSpace(f); f != "" {
				features = append(features, f)
			}
		}
		terms.Features = features
	}
	return terms, nil
}
