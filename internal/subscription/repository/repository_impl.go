package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).
		Model(&domain.Plan{}).
		Where("id = ?", plan.ID).
		Select("*").
		Omit("id", "code", "created_at").
		Updates(plan).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Plan, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Plan, error) {
	return r.findOne(ctx, db, "code = ?", code)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.Plan, error) {
	var plan domain.Plan
	err := db.WithContext(ctx).Where(query, args...).Limit(1).Find(&plan).Error
	if err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, nil
	}
	return &plan, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPlanFilter) ([]*domain.Plan, error) {
	var plans []*domain.Plan
	stmt := db.WithContext(ctx).Model(&domain.Plan{})
	switch filter.UserType {
	case domain.UserTypeClient:
		stmt = stmt.Where("max_equipment IS NOT NULL")
	case domain.UserTypeProvider:
		stmt = stmt.Where("max_clients IS NOT NULL")
	}
	err := stmt.Order("price asc, id asc").Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}
