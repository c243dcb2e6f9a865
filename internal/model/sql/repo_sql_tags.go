package sql

import (
	"context"
	"fmt"

	"imagetag/internal/entity"

	"gorm.io/gorm"
)

// ListTags returns all tags with their usage counts.
func (r *GormRepository) ListTags(ctx context.Context) ([]entity.DbTag, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	var tags []entity.DbTag
	query := r.db.WithContext(ctx).
		Model(&entity.DbTag{}).
		Select("tags.*, COUNT(image_tags.image_id) as usage_count").
		Joins("LEFT JOIN image_tags ON image_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name ASC")

	if err := query.Find(&tags).Error; err != nil {
		return nil, err
	}

	return tags, nil
}

// DeleteTag removes a tag and its image associations.
func (r *GormRepository) DeleteTag(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid tag id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&entity.DbImageTag{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.DbTag{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entity.ErrTagNotFound
		}
		return nil
	})
}
