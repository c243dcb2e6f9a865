package model

import (
	"context"

	"imagetag/internal/entity"
)

// Repository defines the persistence operations the rest of the service
// depends on. Implementations must make InsertImage a single atomic unit of
// work: either the image, its tags, and the junction rows all commit, or
// nothing does.
type Repository interface {
	// Images
	InsertImage(ctx context.Context, ins entity.ImageInsert) (uint, error)
	GetImage(ctx context.Context, id uint) (*entity.DbImage, error)
	ListImages(ctx context.Context, query entity.ImageQuery) ([]entity.DbImage, error)
	DeleteImage(ctx context.Context, id uint) error

	// Tags
	ListTags(ctx context.Context) ([]entity.DbTag, error)
	DeleteTag(ctx context.Context, id uint) error
}
