package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, technician *Technician) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Technician, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListTechnicianFilter, page pagination.Pagination) ([]*Technician, error)
}
