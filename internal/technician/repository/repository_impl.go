package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/polarops/internal/technician/domain"
	"github.com/smallbiznis/polarops/pkg/db/option"
	"github.com/smallbiznis/polarops/pkg/db/pagination"
	"github.com/smallbiznis/polarops/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) store(db *gorm.DB) repository.Repository[domain.Technician] {
	return repository.For[domain.Technician](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, technician *domain.Technician) error {
	return r.store(db).Create(ctx, technician)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Technician, error) {
	return r.store(db).FindOne(ctx, &domain.Technician{ID: id, OrgID: orgID})
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListTechnicianFilter, page pagination.Pagination) ([]*domain.Technician, error) {
	return r.store(db).Find(ctx,
		&domain.Technician{OrgID: orgID, Availability: filter.Availability},
		option.ApplyPagination(page),
		option.WithOrder("created_at desc, id desc"),
	)
}
