package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryEyeglasses    ProductCategory = "eyeglasses"
	CategorySunglasses    ProductCategory = "sunglasses"
	CategoryContactLenses ProductCategory = "contact_lenses"
	CategoryAccessories   ProductCategory = "accessories"
	CategoryOther         ProductCategory = "other"
)

var ProductCategoryChoices = []Choice{
	{Value: string(CategoryEyeglasses), Label: "Eyeglasses"},
	{Value: string(CategorySunglasses), Label: "Sunglasses"},
	{Value: string(CategoryContactLenses), Label: "Contact Lenses"},
	{Value: string(CategoryAccessories), Label: "Accessories"},
	{Value: string(CategoryOther), Label: "Other"},
}

func (c ProductCategory) Valid() bool {
	_, ok := choiceLabel(ProductCategoryChoices, string(c))
	return ok
}

func (c ProductCategory) Label() string {
	l, _ := choiceLabel(ProductCategoryChoices, string(c))
	return l
}

// Product a catalog item with an optional main image and an ordered gallery
type Product struct {
	ID               int64               `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	Name             string              `gorm:"size:255;index" json:"name"`
	Slug             string              `gorm:"size:255;uniqueIndex" json:"slug"`
	Sku              string              `gorm:"size:64" json:"sku"`
	Category         ProductCategory     `gorm:"size:32;index" json:"category"`
	Brand            string              `gorm:"size:120;index" json:"brand"`
	Size             string              `gorm:"size:64" json:"size"`
	ShortDescription string              `gorm:"size:400" json:"short_description"`
	Description      string              `gorm:"type:text" json:"description"`
	Price            decimal.Decimal     `gorm:"type:decimal(8,2)" json:"price"`
	SalePrice        decimal.NullDecimal `gorm:"type:decimal(8,2)" json:"sale_price"`
	Rating           float64             `gorm:"type:decimal(2,1)" json:"rating"`
	Stock            uint                `json:"stock"`
	MainImage        string              `gorm:"size:1024" json:"main_image"`
	IsActive         bool                `gorm:"index" json:"is_active"`
	CreatedAt        time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Gallery          []ProductImage      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"gallery,omitempty"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	if p.Category == "" {
		p.Category = CategoryEyeglasses
	}
	return nil
}

func (p *Product) String() string {
	return p.Name
}

// OnSale reports whether a sale price below the list price is set.
func (p *Product) OnSale() bool {
	return p.SalePrice.Valid && p.SalePrice.Decimal.LessThan(p.Price)
}

// sortedGallery returns the gallery ordered by sort_order, ties on id.
func (p *Product) sortedGallery() []ProductImage {
	g := make([]ProductImage, len(p.Gallery))
	copy(g, p.Gallery)
	sort.SliceStable(g, func(i, j int) bool {
		if g[i].SortOrder != g[j].SortOrder {
			return g[i].SortOrder < g[j].SortOrder
		}
		return g[i].ID < g[j].ID
	})
	return g
}

// PrimaryGalleryImage returns the gallery image flagged primary with the
// lowest sort order, falling back to the first gallery image.
// The gallery must be preloaded.
func (p *Product) PrimaryGalleryImage() *ProductImage {
	g := p.sortedGallery()
	for i := range g {
		if g[i].IsPrimary {
			return &g[i]
		}
	}
	if len(g) > 0 {
		return &g[0]
	}
	return nil
}

// MainImageURL is the default thumbnail: the main image, else the primary
// gallery image, else "".
func (p *Product) MainImageURL(mediaURL string) string {
	if p.MainImage != "" {
		return MediaURL(mediaURL, p.MainImage)
	}
	if primary := p.PrimaryGalleryImage(); primary != nil {
		return MediaURL(mediaURL, primary.Image)
	}
	return ""
}

// HoverImageURL is the alternate thumbnail: the first gallery image that is
// not the primary one, else the primary, else the main image, else "".
func (p *Product) HoverImageURL(mediaURL string) string {
	primary := p.PrimaryGalleryImage()
	for _, img := range p.sortedGallery() {
		if primary != nil && img.ID == primary.ID {
			continue
		}
		return MediaURL(mediaURL, img.Image)
	}
	if primary != nil {
		return MediaURL(mediaURL, primary.Image)
	}
	if p.MainImage != "" {
		return MediaURL(mediaURL, p.MainImage)
	}
	return ""
}

// ProductImage a gallery entry, deleted together with its product
type ProductImage struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	ProductID int64  `gorm:"index" json:"product_id,string"`
	Image     string `gorm:"size:1024" json:"image"`
	AltText   string `gorm:"size:255" json:"alt_text"`
	IsPrimary bool   `json:"is_primary"`
	SortOrder uint   `json:"sort_order"`
}

// TableName Specify table name
func (ProductImage) TableName() string {
	return "product_image"
}

func (pi *ProductImage) BeforeCreate(*gorm.DB) error {
	assignID(&pi.ID)
	return nil
}
