package repository

import (
	"context"

	"gorm.io/gorm"
)

// store carries the CRUD operations shared by every mirrored entity. Entity
// repositories embed it and add their own lookups.
type store[T any] struct {
	db *gorm.DB
}

func (s store[T]) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Create inserts a new row
func (s store[T]) Create(ctx context.Context, row *T) error {
	return s.conn(ctx).Create(row).Error
}

// GetByID retrieves a row by its primary key
func (s store[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var row T
	if err := s.conn(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Update writes all fields of an existing row
func (s store[T]) Update(ctx context.Context, row *T) error {
	return s.conn(ctx).Save(row).Error
}

// List returns a page of rows ordered by id
func (s store[T]) List(ctx context.Context, offset, limit int) ([]T, error) {
	var rows []T
	err := s.conn(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}

// Count returns the total number of rows
func (s store[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var row T
	err := s.conn(ctx).Model(&row).Count(&count).Error
	return count, err
}

func (s store[T]) first(ctx context.Context, query string, args ...interface{}) (*T, error) {
	var row T
	if err := s.conn(ctx).Where(query, args...).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
