package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *WorkOrder) error
	Update(ctx context.Context, db *gorm.DB, order *WorkOrder) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*WorkOrder, error)
	FindByNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, number string) (*WorkOrder, error)
	FindByServiceRequestID(ctx context.Context, db *gorm.DB, orgID, serviceRequestID snowflake.ID) (*WorkOrder, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListWorkOrderFilter, page pagination.Pagination) ([]*WorkOrder, error)
}
