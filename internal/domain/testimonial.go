package domain

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Testimonial struct {
	ID             int64      `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name           string     `gorm:"size:255" json:"name"`
	Rating         float64    `gorm:"type:decimal(2,1)" json:"rating"`
	Comment        string     `gorm:"type:text" json:"comment"`
	Date           *time.Time `gorm:"type:date" json:"date"`
	IsGoogleReview bool       `json:"is_google_review"` // show the Google icon
	IsPublished    bool       `gorm:"index" json:"is_published"`
	SortOrder      int        `json:"sort_order"` // lower first
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (Testimonial) TableName() string {
	return "testimonial"
}

func (t *Testimonial) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}

// RatingStars number of full stars
func (t *Testimonial) RatingStars() int {
	return int(t.Rating)
}

func (t *Testimonial) String() string {
	return fmt.Sprintf("%s - %.1f/5.0", t.Name, t.Rating)
}
