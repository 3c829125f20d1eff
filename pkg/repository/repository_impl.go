package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/polarops/pkg/db/option"
	"gorm.io/gorm"
)

type table[T any] struct {
	db *gorm.DB
}

func (t table[T]) Find(ctx context.Context, filter *T, opts ...option.QueryOption) ([]*T, error) {
	var rows []*T
	if err := t.query(ctx, filter, opts).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (t table[T]) FindOne(ctx context.Context, filter *T, opts ...option.QueryOption) (*T, error) {
	var row T
	err := t.query(ctx, filter, opts).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (t table[T]) Create(ctx context.Context, row *T) error {
	return t.db.WithContext(ctx).Create(row).Error
}

func (t table[T]) query(ctx context.Context, filter *T, opts []option.QueryOption) *gorm.DB {
	stmt := t.db.WithContext(ctx).Model(new(T)).Where(filter)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	return stmt
}
