package sql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"imagetag/internal/entity"

	"gorm.io/gorm"
)

// placeholderURL is stored while inserting raw image data: the final URL
// embeds the image id, which is unknown until the row exists.
const placeholderURL = "temporary"

// InsertImage creates an image together with its tags and junction rows in a
// single transaction. Tags that do not exist yet are created; any failure,
// including a failed upload of raw data, rolls everything back.
func (r *GormRepository) InsertImage(ctx context.Context, ins entity.ImageInsert) (uint, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	if len(ins.Data) > 0 && ins.Upload == nil {
		return 0, fmt.Errorf("raw image data requires an upload function")
	}

	var imageID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		names := dedupeNames(ins.TagNames)
		tagIDs := make([]uint, 0, len(names))
		for _, name := range names {
			id, err := resolveTag(tx, name)
			if err != nil {
				return err
			}
			tagIDs = append(tagIDs, id)
		}

		url := ins.URL
		if len(ins.Data) > 0 {
			url = placeholderURL
		}

		image := entity.DbImage{
			Label: buildLabel(ins.TagNames, ins.Label),
			URL:   url,
		}
		if err := tx.Create(&image).Error; err != nil {
			return fmt.Errorf("insert image: %w", err)
		}

		if len(tagIDs) > 0 {
			links := make([]entity.DbImageTag, 0, len(tagIDs))
			for _, tagID := range tagIDs {
				links = append(links, entity.DbImageTag{ImageID: image.ID, TagID: tagID})
			}
			if err := tx.Create(&links).Error; err != nil {
				return fmt.Errorf("link tags: %w", err)
			}
		}

		if len(ins.Data) > 0 {
			finalURL, err := ins.Upload(ctx, ins.Data, image.ID)
			if err != nil {
				return fmt.Errorf("upload image %d: %w", image.ID, err)
			}
			if err := tx.Model(&entity.DbImage{}).Where("id = ?", image.ID).Update("url", finalURL).Error; err != nil {
				return fmt.Errorf("update image url: %w", err)
			}
		}

		imageID = image.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imageID, nil
}

// resolveTag maps a tag name to its id, creating the tag if it does not
// exist. Names match exactly, byte for byte. When two transactions race on
// creating the same new name the unique index on tags.name fails the loser,
// which is then retried as a lookup.
func resolveTag(tx *gorm.DB, name string) (uint, error) {
	var tag entity.DbTag
	err := tx.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return tag.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	tag = entity.DbTag{Name: name}
	createErr := tx.Create(&tag).Error
	if createErr == nil {
		return tag.ID, nil
	}

	// The create may have lost a race on the unique name index. Not every
	// driver surfaces gorm.ErrDuplicatedKey, so re-read instead of
	// inspecting the error.
	if lookupErr := tx.Where("name = ?", name).First(&tag).Error; lookupErr == nil {
		return tag.ID, nil
	}
	return 0, createErr
}

// GetImage loads one image with its tags. A missing row is reported as
// entity.ErrImageNotFound, distinct from store failures.
func (r *GormRepository) GetImage(ctx context.Context, id uint) (*entity.DbImage, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	var image entity.DbImage
	err := r.db.WithContext(ctx).Preload("Tags").First(&image, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrImageNotFound
		}
		return nil, err
	}
	return &image, nil
}

// ListImages returns images matching the tag filter, each with its tags
// preloaded. The filter is evaluated in the database: matching image ids are
// aggregated from the junction table first, then the full rows are hydrated.
// An empty (non-nil) name list is a vacuous predicate and matches everything.
func (r *GormRepository) ListImages(ctx context.Context, query entity.ImageQuery) ([]entity.DbImage, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if query.ContainsAll != nil && query.ContainsAny != nil {
		return nil, entity.ErrConflictingFilter
	}

	var names []string
	requireAll := false
	switch {
	case len(query.ContainsAll) > 0:
		names = dedupeNames(query.ContainsAll)
		requireAll = true
	case len(query.ContainsAny) > 0:
		names = dedupeNames(query.ContainsAny)
	}

	var images []entity.DbImage
	if len(names) == 0 {
		if err := r.db.WithContext(ctx).Preload("Tags").Find(&images).Error; err != nil {
			return nil, err
		}
		return images, nil
	}

	ids, err := r.imageIDsMatchingTags(ctx, names, requireAll)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []entity.DbImage{}, nil
	}

	if err := r.db.WithContext(ctx).Preload("Tags").Where("id IN ?", ids).Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// imageIDsMatchingTags aggregates the junction table for images associated
// with the given tag names. With requireAll the group must cover every
// distinct requested name; counting distinct matched names (not the image's
// total tags) keeps unrelated tags out of the comparison.
func (r *GormRepository) imageIDsMatchingTags(ctx context.Context, names []string, requireAll bool) ([]uint, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.DbImageTag{}).
		Joins("JOIN tags ON tags.id = image_tags.tag_id").
		Where("tags.name IN ?", names).
		Group("image_tags.image_id")
	if requireAll {
		query = query.Having("COUNT(DISTINCT tags.name) = ?", len(names))
	}

	var ids []uint
	if err := query.Pluck("image_tags.image_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteImage removes an image and its tag associations.
func (r *GormRepository) DeleteImage(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid image id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", id).Delete(&entity.DbImageTag{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.DbImage{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entity.ErrImageNotFound
		}
		return nil
	})
}

// buildLabel falls back to a label synthesized from the tag names, in input
// order, when the caller did not supply one.
func buildLabel(tagNames []string, label *string) string {
	if label != nil {
		return *label
	}
	if len(tagNames) == 0 {
		return "An untagged image"
	}
	return fmt.Sprintf("An image containing %s.", strings.Join(tagNames, ", "))
}

// dedupeNames keeps the first occurrence of every name, preserving order.
// Names are matched exactly; no trimming or case folding.
func dedupeNames(names []string) []string {
	unique := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}
