package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/internal/servicerequest/domain"
	"github.com/smallbiznis/polarops/pkg/db/option"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, request *domain.ServiceRequest) error {
	return db.WithContext(ctx).Create(request).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, request *domain.ServiceRequest) error {
	return db.WithContext(ctx).
		Model(&domain.ServiceRequest{}).
		Where("org_id = ? AND id = ?", request.OrgID, request.ID).
		Select("*").
		Omit("id", "org_id", "order_number", "created_at").
		Updates(request).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.ServiceRequest, error) {
	var request domain.ServiceRequest
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&request).Error
	if err != nil {
		return nil, err
	}
	if request.ID == 0 {
		return nil, nil
	}
	return &request, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListServiceRequestFilter, page pagination.Pagination) ([]*domain.ServiceRequest, error) {
	var items []*domain.ServiceRequest
	stmt := db.WithContext(ctx).
		Model(&domain.ServiceRequest{}).
		Where("org_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.EquipmentID != 0 {
		stmt = stmt.Where("equipment_id = ?", filter.EquipmentID)
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
