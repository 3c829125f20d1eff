package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, request *ServiceRequest) error
	Update(ctx context.Context, db *gorm.DB, request *ServiceRequest) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*ServiceRequest, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListServiceRequestFilter, page pagination.Pagination) ([]*ServiceRequest, error)
}
