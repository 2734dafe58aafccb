package utils

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ValidateResourceId checks that a row of T with the given id exists.
func ValidateResourceId[T any](ctx context.Context, db *gorm.DB, entity string, id int) error {
	var model T
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count <= 0 {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

// FetchModel loads a row of T by id, mapping gorm's ErrRecordNotFound to a
// typed NotFoundError.
func FetchModel[T any](ctx context.Context, db *gorm.DB, entity string, id int) (*T, error) {
	var model T
	if err := db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: entity, ID: id}
		}
		return nil, err
	}
	return &model, nil
}
