package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/internal/workorder/domain"
	"github.com/smallbiznis/polarops/pkg/db/option"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.WorkOrder) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.WorkOrder) error {
	return db.WithContext(ctx).
		Model(&domain.WorkOrder{}).
		Where("org_id = ? AND id = ?", order.OrgID, order.ID).
		Select("*").
		Omit("id", "org_id", "work_order_number", "service_request_id", "created_at").
		Updates(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.WorkOrder, error) {
	return r.findOne(ctx, db, "org_id = ? AND id = ?", orgID, id)
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID, number string) (*domain.WorkOrder, error) {
	return r.findOne(ctx, db, "org_id = ? AND work_order_number = ?", orgID, number)
}

func (r *repo) FindByServiceRequestID(ctx context.Context, db *gorm.DB, orgID, serviceRequestID snowflake.ID) (*domain.WorkOrder, error) {
	return r.findOne(ctx, db, "org_id = ? AND service_request_id = ?", orgID, serviceRequestID)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.WorkOrder, error) {
	var order domain.WorkOrder
	err := db.WithContext(ctx).
		Where(query, args...).
		Limit(1).
		Find(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListWorkOrderFilter, page pagination.Pagination) ([]*domain.WorkOrder, error) {
	var items []*domain.WorkOrder
	stmt := db.WithContext(ctx).
		Model(&domain.WorkOrder{}).
		Where("org_id = ?", orgID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.ServiceRequestID != 0 {
		stmt = stmt.Where("service_request_id = ?", filter.ServiceRequestID)
	}
	if filter.TechnicianID != 0 {
		stmt = stmt.Where("assigned_technician_id = ?", filter.TechnicianID)
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
