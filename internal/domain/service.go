package domain

import (
	"time"

	"gorm.io/gorm"
)

// Service an optical-care service offered in store (eye test, lens fitting...)
type Service struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string" form:"id"`
	Name               string    `gorm:"size:255" json:"name" form:"name"`
	Description        string    `gorm:"type:text" json:"description" form:"description"`
	Image              string    `gorm:"size:1024" json:"image" form:"-"` // relative media path
	DetailsTitle       string    `gorm:"size:255" json:"details_title" form:"details_title"`
	DetailsDescription string    `gorm:"type:text" json:"details_description" form:"details_description"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Service) TableName() string {
	return "service"
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

func (s *Service) String() string {
	return s.Name
}
