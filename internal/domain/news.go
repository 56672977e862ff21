package domain

import (
	"time"

	"gorm.io/gorm"
)

type NewsType string

const (
	NewsAnnouncement NewsType = "announcement"
	NewsEvent        NewsType = "event"
	NewsUpdate       NewsType = "update"
	NewsCareer       NewsType = "career"
)

var NewsTypeChoices = []Choice{
	{Value: string(NewsAnnouncement), Label: "Announcement"},
	{Value: string(NewsEvent), Label: "Event"},
	{Value: string(NewsUpdate), Label: "Update"},
	{Value: string(NewsCareer), Label: "Career"},
}

func (t NewsType) Valid() bool {
	_, ok := choiceLabel(NewsTypeChoices, string(t))
	return ok
}

func (t NewsType) Label() string {
	l, _ := choiceLabel(NewsTypeChoices, string(t))
	return l
}

// News an announcement, event, update or career posting
type News struct {
	ID            int64      `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Title         string     `gorm:"size:255" json:"title"`
	Slug          string     `gorm:"size:255;uniqueIndex" json:"slug"`
	Subtitle      string     `gorm:"size:255" json:"subtitle"`
	NewsType      NewsType   `gorm:"size:20;index" json:"news_type"`
	Location      string     `gorm:"size:255" json:"location"`
	Content       string     `gorm:"type:text" json:"content"`
	FeaturedImage string     `gorm:"size:1024" json:"featured_image"`
	IsPublished   bool       `gorm:"index" json:"is_published"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (News) TableName() string {
	return "news"
}

func (n *News) BeforeCreate(*gorm.DB) error {
	assignID(&n.ID)
	if n.NewsType == "" {
		n.NewsType = NewsAnnouncement
	}
	return nil
}
