package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/media"
	"github.com/visionmark/visionmark/internal/webserver"
	"gorm.io/gorm"
)

// maxPrice exclusive upper bound of a decimal(8,2) price column
var maxPrice = decimal.New(1, 6)

type productPayload struct {
	Name             string       `json:"name" form:"name" validate:"required,max=255"`
	Slug             string       `json:"slug" form:"slug" validate:"omitempty,max=255"`
	Sku              string       `json:"sku" form:"sku" validate:"omitempty,max=64"`
	Category         string       `json:"category" form:"category"`
	Brand            string       `json:"brand" form:"brand" validate:"omitempty,max=120"`
	Size             string       `json:"size" form:"size" validate:"omitempty,max=64"`
	ShortDescription string       `json:"short_description" form:"short_description" validate:"omitempty,max=400"`
	Description      string       `json:"description" form:"description"`
	Price            decimalInput `json:"price" form:"price"`
	SalePrice        decimalInput `json:"sale_price" form:"sale_price"`
	Rating           float64      `json:"rating" form:"rating" validate:"gte=0,lte=5"`
	Stock            int          `json:"stock" form:"stock" validate:"gte=0"`
	IsActive         bool         `json:"is_active" form:"is_active"`
}

type productRow struct {
	domain.Product
	CategoryLabel string `json:"category_label"`
	OnSale        bool   `json:"on_sale"`
	ImagePreview  string `json:"main_image_preview"`
	HoverPreview  string `json:"hover_image_preview"`
}

// productCSV one line of the catalog export
type productCSV struct {
	ID        int64   `csv:"id"`
	Name      string  `csv:"name"`
	Slug      string  `csv:"slug"`
	Sku       string  `csv:"sku"`
	Category  string  `csv:"category"`
	Brand     string  `csv:"brand"`
	Size      string  `csv:"size"`
	Price     string  `csv:"price"`
	SalePrice string  `csv:"sale_price"`
	Rating    float64 `csv:"rating"`
	Stock     uint    `csv:"stock"`
	IsActive  bool    `csv:"is_active"`
	Images    int     `csv:"gallery_images"`
	MainImage string  `csv:"main_image_url"`
	CreatedAt string  `csv:"created_at"`
}

func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/brands", listProductBrands)
	webserver.ApiGET("/products/categories", listProductCategories)
	webserver.ApiGET("/products/export", exportProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)

	webserver.ApiGET("/products/:id/images", listProductImages)
	webserver.ApiPOST("/products/:id/images", createProductImage)
	webserver.ApiPUT("/products/:id/images/:imageId", updateProductImage)
	webserver.ApiDELETE("/products/:id/images/:imageId", deleteProductImage)
}

func galleryOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order").Order("id")
}

func toProductRow(c echo.Context, p domain.Product) productRow {
	prefix := GetAppContext(c).Media().URLPrefix()
	return productRow{
		Product:       p,
		CategoryLabel: p.Category.Label(),
		OnSale:        p.OnSale(),
		ImagePreview:  p.MainImageURL(prefix),
		HoverPreview:  p.HoverImageURL(prefix),
	}
}

// filterProducts applies the list filters shared by listing and export.
func filterProducts(c echo.Context) *gorm.DB {
	db := searchLike(GetDB(c).Model(&domain.Product{}), c.QueryParam("q"), "name", "sku", "brand", "description")
	if cat := strings.TrimSpace(c.QueryParam("category")); cat != "" {
		db = db.Where("category = ?", cat)
	}
	if brand := strings.TrimSpace(c.QueryParam("brand")); brand != "" {
		db = db.Where("brand = ?", brand)
	}
	return boolFilter(c, db, "is_active", "is_active")
}

var productSorts = map[string]string{
	"name":       "name",
	"category":   "category",
	"brand":      "brand",
	"price":      "price",
	"stock":      "stock",
	"rating":     "rating",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := filterProducts(c)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var products []domain.Product
	err := db.Preload("Gallery", galleryOrder).
		Order(parseSort(c, productSorts, "created_at DESC")).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&products).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	rows := make([]productRow, len(products))
	for i, p := range products {
		rows[i] = toProductRow(c, p)
	}
	return paged(c, rows, total, page, pageSize)
}

// listProductBrands feeds the brand datalist of the product form.
func listProductBrands(c echo.Context) error {
	brands := make([]string, 0)
	err := GetDB(c).Model(&domain.Product{}).
		Where("brand <> ''").
		Distinct("brand").Order("brand").
		Pluck("brand", &brands).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query brands", err.Error())
	}
	return ok(c, brands)
}

func listProductCategories(c echo.Context) error {
	return ok(c, domain.ProductCategoryChoices)
}

func exportProducts(c echo.Context) error {
	var products []domain.Product
	err := filterProducts(c).Preload("Gallery", galleryOrder).
		Order(parseSort(c, productSorts, "created_at DESC")).
		Find(&products).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	base := GetAppContext(c).Config().Web.BaseURL
	prefix := GetAppContext(c).Media().URLPrefix()
	lines := make([]*productCSV, len(products))
	for i := range products {
		p := &products[i]
		line := &productCSV{
			ID:        p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			Sku:       p.Sku,
			Category:  string(p.Category),
			Brand:     p.Brand,
			Size:      p.Size,
			Price:     p.Price.StringFixed(2),
			Rating:    p.Rating,
			Stock:     p.Stock,
			IsActive:  p.IsActive,
			Images:    len(p.Gallery),
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		}
		if p.SalePrice.Valid {
			line.SalePrice = p.SalePrice.Decimal.StringFixed(2)
		}
		if u := p.MainImageURL(prefix); u != "" && strings.HasPrefix(u, "/") {
			line.MainImage = base + u
		} else {
			line.MainImage = u
		}
		lines[i] = line
	}

	filename := fmt.Sprintf("products_%s.csv", time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(&lines, c.Response())
}

func findProduct(c echo.Context, withGallery bool) (*domain.Product, error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	db := GetDB(c)
	if withGallery {
		db = db.Preload("Gallery", galleryOrder)
	}
	var p domain.Product
	if err := db.Where("id = ?", id).First(&p).Error; isNotFound(err) {
		return nil, fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return nil, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}
	return &p, nil
}

func getProduct(c echo.Context) error {
	p, err := findProduct(c, true)
	if p == nil {
		return err
	}
	return ok(c, toProductRow(c, *p))
}

func applyProductPayload(c echo.Context, payload *productPayload, p *domain.Product) (bool, error) {
	if err := c.Validate(payload); err != nil {
		return false, handleValidationError(c, err)
	}
	category := domain.ProductCategory(strings.TrimSpace(payload.Category))
	if category == "" {
		category = domain.CategoryEyeglasses
	}
	if !category.Valid() {
		return false, fieldError(c, "category", "oneof")
	}
	if !payload.Price.Valid {
		return false, fieldError(c, "price", "required")
	}
	if payload.Price.Decimal.IsNegative() {
		return false, fieldError(c, "price", "gte=0")
	}
	if payload.Price.Decimal.GreaterThanOrEqual(maxPrice) {
		return false, fieldError(c, "price", "lt="+maxPrice.String())
	}
	if payload.SalePrice.Valid && payload.SalePrice.Decimal.IsNegative() {
		return false, fieldError(c, "sale_price", "gte=0")
	}
	if payload.SalePrice.Valid && payload.SalePrice.Decimal.GreaterThanOrEqual(maxPrice) {
		return false, fieldError(c, "sale_price", "lt="+maxPrice.String())
	}
	slug := resolveSlug(payload.Slug, payload.Name)
	if slug == "" {
		return false, fieldError(c, "slug", "required")
	}
	taken, err := slugTaken(c, &domain.Product{}, slug, p.ID)
	if err != nil {
		return false, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to check slug", err.Error())
	}
	if taken {
		return false, fail(c, http.StatusConflict, "SLUG_EXISTS", "Product slug already exists", nil)
	}

	p.Name = strings.TrimSpace(payload.Name)
	p.Slug = slug
	p.Sku = strings.TrimSpace(payload.Sku)
	p.Category = category
	p.Brand = strings.TrimSpace(payload.Brand)
	p.Size = strings.TrimSpace(payload.Size)
	p.ShortDescription = payload.ShortDescription
	p.Description = payload.Description
	p.Price = payload.Price.Decimal.Round(2)
	p.SalePrice = payload.SalePrice.NullDecimal
	if p.SalePrice.Valid {
		p.SalePrice.Decimal = p.SalePrice.Decimal.Round(2)
	}
	p.Rating = payload.Rating
	p.Stock = uint(payload.Stock)
	p.IsActive = payload.IsActive
	return true, nil
}

// saveGalleryUploads stores the inline "gallery" files of a multipart
// product form as new gallery entries after the existing ones.
func saveGalleryUploads(c echo.Context, tx *gorm.DB, p *domain.Product) ([]string, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	files := form.File["gallery"]
	if len(files) == 0 {
		return nil, nil
	}
	var next uint
	var last domain.ProductImage
	if err := tx.Where("product_id = ?", p.ID).Order("sort_order DESC").First(&last).Error; err == nil {
		next = last.SortOrder + 1
	} else if !isNotFound(err) {
		return nil, err
	}

	store := GetAppContext(c).Media()
	var stored []string
	for i, fh := range files {
		rel, err := store.SaveFileHeader(media.DirProductGallery, fh)
		if err != nil {
			return stored, err
		}
		stored = append(stored, rel)
		img := domain.ProductImage{ProductID: p.ID, Image: rel, SortOrder: next + uint(i)}
		if err := tx.Create(&img).Error; err != nil {
			return stored, err
		}
	}
	return stored, nil
}

func createProduct(c echo.Context) error {
	payload := productPayload{
		Rating:   4.8,
		IsActive: true,
		Category: string(domain.CategoryEyeglasses),
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", err.Error())
	}
	var p domain.Product
	if valid, err := applyProductPayload(c, &payload, &p); !valid {
		return err
	}

	image, err := saveUpload(c, "main_image", media.DirProducts)
	if err != nil {
		return uploadFailed(c, "main_image", err)
	}
	p.MainImage = image

	var gallery []string
	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		gallery, err = saveGalleryUploads(c, tx, &p)
		return err
	})
	if err != nil {
		discardUpload(c, image)
		for _, rel := range gallery {
			discardUpload(c, rel)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	GetDB(c).Preload("Gallery", galleryOrder).First(&p, p.ID)
	logOperation(c, "create_product", "created product "+p.Slug)
	return created(c, toProductRow(c, p))
}

func updateProduct(c echo.Context) error {
	p, err := findProduct(c, false)
	if p == nil {
		return err
	}
	payload := productPayload{
		Name:             p.Name,
		Slug:             p.Slug,
		Sku:              p.Sku,
		Category:         string(p.Category),
		Brand:            p.Brand,
		Size:             p.Size,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		Price:            newDecimalInput(decimal.NewNullDecimal(p.Price)),
		SalePrice:        newDecimalInput(p.SalePrice),
		Rating:           p.Rating,
		Stock:            int(p.Stock),
		IsActive:         p.IsActive,
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product parameters", err.Error())
	}
	if valid, err := applyProductPayload(c, &payload, p); !valid {
		return err
	}

	image, replaced, err := replaceUpload(c, "main_image", media.DirProducts)
	if err != nil {
		return uploadFailed(c, "main_image", err)
	}
	oldImage := p.MainImage
	if replaced {
		p.MainImage = image
	}
	p.UpdatedAt = time.Now()

	var gallery []string
	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Gallery").Save(p).Error; err != nil {
			return err
		}
		gallery, err = saveGalleryUploads(c, tx, p)
		return err
	})
	if err != nil {
		discardUpload(c, image)
		for _, rel := range gallery {
			discardUpload(c, rel)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	if replaced {
		discardUpload(c, oldImage)
	}
	GetDB(c).Preload("Gallery", galleryOrder).First(p, p.ID)
	logOperation(c, "update_product", "updated product "+p.Slug)
	return ok(c, toProductRow(c, *p))
}

// deleteProduct removes the product together with its gallery.
func deleteProduct(c echo.Context) error {
	p, err := findProduct(c, true)
	if p == nil {
		return err
	}
	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", p.ID).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, p.ID).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete product", err.Error())
	}
	discardUpload(c, p.MainImage)
	for _, img := range p.Gallery {
		discardUpload(c, img.Image)
	}
	logOperation(c, "delete_product", "deleted product "+p.Slug)
	return ok(c, map[string]interface{}{"id": p.ID})
}
