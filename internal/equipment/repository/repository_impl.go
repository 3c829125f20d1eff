package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/internal/equipment/domain"
	"github.com/smallbiznis/polarops/pkg/db/option"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, equipment *domain.Equipment) error {
	return db.WithContext(ctx).Create(equipment).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, equipment *domain.Equipment) error {
	return db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("org_id = ? AND id = ?", equipment.OrgID, equipment.ID).
		Select("*").
		Omit("id", "org_id", "identifier", "created_at").
		Updates(equipment).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	statements := []string{
		`DELETE FROM temperature_readings WHERE equipment_id = ?`,
		`DELETE FROM energy_readings WHERE equipment_id = ?`,
		`DELETE FROM daily_temperature_averages WHERE equipment_id = ?`,
	}
	for _, stmt := range statements {
		if err := db.WithContext(ctx).Exec(stmt, id).Error; err != nil {
			return err
		}
	}
	return db.WithContext(ctx).Exec(
		`DELETE FROM equipment WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Equipment, error) {
	var equipment domain.Equipment
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&equipment).Error
	if err != nil {
		return nil, err
	}
	if equipment.ID == 0 {
		return nil, nil
	}
	return &equipment, nil
}

func (r *repo) ExistsBySerialNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, serialNumber string, excludeID snowflake.ID) (bool, error) {
	return r.exists(ctx, db, "serial_number", orgID, serialNumber, excludeID)
}

func (r *repo) ExistsByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string, excludeID snowflake.ID) (bool, error) {
	return r.exists(ctx, db, "code", orgID, code, excludeID)
}

func (r *repo) exists(ctx context.Context, db *gorm.DB, column string, orgID snowflake.ID, value string, excludeID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM equipment WHERE org_id = ? AND `+column+` = ? AND id <> ?`,
		orgID,
		value,
		excludeID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListEquipmentFilter, page pagination.Pagination) ([]*domain.Equipment, error) {
	var items []*domain.Equipment
	stmt := db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("org_id = ?", orgID)
	if filter.OwnerID != 0 {
		stmt = stmt.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, afterID snowflake.ID, limit int) ([]*domain.Equipment, error) {
	var items []*domain.Equipment
	err := db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
