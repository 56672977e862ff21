package domain

import (
	"time"

	"gorm.io/gorm"
)

// Blog a blog post; only published posts are visible on the public site.
type Blog struct {
	ID            int64      `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Title         string     `gorm:"size:255" json:"title"`
	Slug          string     `gorm:"size:255;uniqueIndex" json:"slug"`
	Content       string     `gorm:"type:text" json:"content"` // rich text html
	Excerpt       string     `gorm:"size:500" json:"excerpt"`
	FeaturedImage string     `gorm:"size:1024" json:"featured_image"`
	Author        string     `gorm:"size:100" json:"author"`
	IsPublished   bool       `gorm:"index" json:"is_published"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (Blog) TableName() string {
	return "blog"
}

func (b *Blog) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}
