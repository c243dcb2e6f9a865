package entity

import "context"

// UploadFunc stores raw image bytes under the assigned image id and returns
// the final public URL. It is invoked inside the write transaction so a
// failed upload rolls the whole insert back.
type UploadFunc func(ctx context.Context, data []byte, imageID uint) (string, error)

// ImageInsert describes one atomic image creation. Exactly one of URL and
// Data is expected to be set; Data requires Upload.
type ImageInsert struct {
	URL       string
	Data      []byte
	Extension string

	Label    *string
	TagNames []string

	Upload UploadFunc
}

// ImageQuery selects images by their associated tag names. At most one of
// ContainsAll and ContainsAny may be non-nil; a nil value means the filter is
// absent. An empty (non-nil) name list is a vacuous predicate and matches
// every image.
type ImageQuery struct {
	ContainsAll []string
	ContainsAny []string
}

// ImageResult is the read-side projection of an image joined with the names
// of its tags. Tag order is not guaranteed.
type ImageResult struct {
	ID    uint     `json:"id"`
	URL   string   `json:"url"`
	Label string   `json:"label"`
	Tags  []string `json:"tags"`
}

// ImageListResponse is the response for listing images.
type ImageListResponse struct {
	Images []ImageResult `json:"images"`
}

// Tag is the DTO representation of a tag.
type Tag struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	UsageCount int64  `json:"usage_count,omitempty"`
}

// TagListResponse is the response for listing tags.
type TagListResponse struct {
	Tags []Tag `json:"tags"`
}

// ImageToResult converts a DbImage with preloaded tags into its projection.
func ImageToResult(img *DbImage) ImageResult {
	if img == nil {
		return ImageResult{}
	}
	tags := make([]string, 0, len(img.Tags))
	for _, t := range img.Tags {
		tags = append(tags, t.Name)
	}
	return ImageResult{
		ID:    img.ID,
		URL:   img.URL,
		Label: img.Label,
		Tags:  tags,
	}
}

// ImagesToResults converts a slice of DbImage to ImageResult.
func ImagesToResults(images []DbImage) []ImageResult {
	results := make([]ImageResult, len(images))
	for i := range images {
		results[i] = ImageToResult(&images[i])
	}
	return results
}

// TagToDTO converts a DbTag to its DTO form.
func TagToDTO(t *DbTag) Tag {
	if t == nil {
		return Tag{}
	}
	return Tag{ID: t.ID, Name: t.Name, UsageCount: t.UsageCount}
}

// TagsToDTOs converts a slice of DbTag to Tag.
func TagsToDTOs(tags []DbTag) []Tag {
	dtos := make([]Tag, len(tags))
	for i := range tags {
		dtos[i] = TagToDTO(&tags[i])
	}
	return dtos
}
