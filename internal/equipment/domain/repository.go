package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, equipment *Equipment) error
	Update(ctx context.Context, db *gorm.DB, equipment *Equipment) error
	// Delete removes the equipment together with its readings and daily
	// averages. Callers run it inside a transaction.
	Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Equipment, error)
	ExistsBySerialNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, serialNumber string, excludeID snowflake.ID) (bool, error)
	ExistsByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string, excludeID snowflake.ID) (bool, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListEquipmentFilter, page pagination.Pagination) ([]*Equipment, error)
	// ListAll pages through every organization's equipment by ascending id.
	ListAll(ctx context.Context, db *gorm.DB, afterID snowflake.ID, limit int) ([]*Equipment, error)
}
