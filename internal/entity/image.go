package entity

import "time"

// DbImage represents a persisted image record.
type DbImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Label string `gorm:"column:label;type:varchar(255);not null" json:"label"`
	URL   string `gorm:"column:url;type:varchar(1024);not null" json:"url"`

	Tags []DbTag `gorm:"many2many:image_tags;foreignKey:ID;joinForeignKey:ImageID;references:ID;joinReferences:TagID" json:"tags"`
}

// TableName overrides default pluralised name.
func (DbImage) TableName() string {
	return "images"
}

// DbTag represents a detected or user-supplied tag. Each distinct name maps
// to exactly one row; the unique index makes the losing side of a concurrent
// create fail instead of duplicating the name.
type DbTag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name       string `gorm:"column:name;size:128;uniqueIndex;not null" json:"name"`
	UsageCount int64  `gorm:"->;-:migration" json:"usage_count,omitempty"`
}

// TableName overrides default pluralised name.
func (DbTag) TableName() string {
	return "tags"
}

// DbImageTag is the junction row linking an image to a tag. It has no
// lifecycle of its own: deleting either endpoint removes it.
type DbImageTag struct {
	ImageID   uint      `gorm:"primaryKey" json:"image_id"`
	TagID     uint      `gorm:"primaryKey" json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides default pluralised name.
func (DbImageTag) TableName() string {
	return "image_tags"
}
