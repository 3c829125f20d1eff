package repository

import (
	"context"

	"github.com/smallbiznis/polarops/pkg/db/option"
	"gorm.io/gorm"
)

// Repository reads and writes one org-scoped model table. Filter structs are
// equality matches on their non-zero fields, so callers always set OrgID.
type Repository[T any] interface {
	Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error)
	// FindOne returns nil without error when nothing matches.
	FindOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, row *T) error
}

// For binds a Repository to db, which may be a transaction.
func For[T any](db *gorm.DB) Repository[T] {
	return table[T]{db: db}
}
