package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Availability string

const (
	AvailabilityAvailable Availability = "AVAILABLE"
	AvailabilityBusy      Availability = "BUSY"
	AvailabilityOffDuty   Availability = "OFF_DUTY"
)

func ParseAvailability(value string) (Availability, error) {
	switch a := Availability(strings.ToUpper(strings.TrimSpace(value))); a {
	case "":
		return AvailabilityAvailable, nil
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityOffDuty:
		return a, nil
	default:
		return "", ErrInvalidAvailability
	}
}

type Technician struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name           string       `gorm:"not null" json:"name"`
	Specialization string       `json:"specialization,omitempty"`
	Phone          string       `gorm:"size:32" json:"phone,omitempty"`
	Email          string       `json:"email,omitempty"`
	Rating         float64      `gorm:"not null;default:0" json:"rating"`
	Availability   Availability `gorm:"size:16;not null;index" json:"availability"`
	CompanyID      snowflake.ID `gorm:"index" json:"company_id,omitempty"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}
