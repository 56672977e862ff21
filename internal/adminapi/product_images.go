package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/media"
)

type productImagePayload struct {
	AltText   string `json:"alt_text" form:"alt_text" validate:"omitempty,max=255"`
	IsPrimary bool   `json:"is_primary" form:"is_primary"`
	SortOrder int    `json:"sort_order" form:"sort_order" validate:"gte=0"`
}

type productImageRow struct {
	domain.ProductImage
	ImagePreview string `json:"image_preview"`
}

func toProductImageRow(c echo.Context, img domain.ProductImage) productImageRow {
	return productImageRow{ProductImage: img, ImagePreview: imagePreview(c, img.Image)}
}

func findProductImage(c echo.Context, p *domain.Product) (*domain.ProductImage, error) {
	id, err := parseIDParam(c, "imageId")
	if err != nil {
		return nil, fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid image ID", nil)
	}
	var img domain.ProductImage
	err = GetDB(c).Where("id = ? AND product_id = ?", id, p.ID).First(&img).Error
	if isNotFound(err) {
		return nil, fail(c, http.StatusNotFound, "IMAGE_NOT_FOUND", "Product image not found", nil)
	}
	if err != nil {
		return nil, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product image", err.Error())
	}
	return &img, nil
}

func listProductImages(c echo.Context) error {
	p, err := findProduct(c, true)
	if p == nil {
		return err
	}
	rows := make([]productImageRow, len(p.Gallery))
	for i, img := range p.Gallery {
		rows[i] = toProductImageRow(c, img)
	}
	return ok(c, rows)
}

func createProductImage(c echo.Context) error {
	p, err := findProduct(c, false)
	if p == nil {
		return err
	}
	var payload productImagePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse image parameters", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	rel, err := saveUpload(c, "image", media.DirProductGallery)
	if err != nil {
		return uploadFailed(c, "image", err)
	}
	if rel == "" {
		return fieldError(c, "image", "required")
	}

	img := domain.ProductImage{
		ProductID: p.ID,
		Image:     rel,
		AltText:   strings.TrimSpace(payload.AltText),
		IsPrimary: payload.IsPrimary,
		SortOrder: uint(payload.SortOrder),
	}
	if err := GetDB(c).Create(&img).Error; err != nil {
		discardUpload(c, rel)
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add product image", err.Error())
	}
	logOperation(c, "create_product_image", "added gallery image to "+p.Slug)
	return created(c, toProductImageRow(c, img))
}

func updateProductImage(c echo.Context) error {
	p, err := findProduct(c, false)
	if p == nil {
		return err
	}
	img, err := findProductImage(c, p)
	if img == nil {
		return err
	}
	payload := productImagePayload{
		AltText:   img.AltText,
		IsPrimary: img.IsPrimary,
		SortOrder: int(img.SortOrder),
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse image parameters", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	rel, replaced, err := replaceUpload(c, "image", media.DirProductGallery)
	if err != nil {
		return uploadFailed(c, "image", err)
	}
	old := img.Image
	if replaced {
		img.Image = rel
	}
	img.AltText = strings.TrimSpace(payload.AltText)
	img.IsPrimary = payload.IsPrimary
	img.SortOrder = uint(payload.SortOrder)
	if err := GetDB(c).Save(img).Error; err != nil {
		discardUpload(c, rel)
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product image", err.Error())
	}
	if replaced {
		discardUpload(c, old)
	}
	logOperation(c, "update_product_image", "updated gallery image of "+p.Slug)
	return ok(c, toProductImageRow(c, *img))
}

func deleteProductImage(c echo.Context) error {
	p, err := findProduct(c, false)
	if p == nil {
		return err
	}
	img, err := findProductImage(c, p)
	if img == nil {
		return err
	}
	if err := GetDB(c).Delete(img).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete product image", err.Error())
	}
	discardUpload(c, img.Image)
	logOperation(c, "delete_product_image", "removed gallery image of "+p.Slug)
	return ok(c, map[string]interface{}{"id": img.ID})
}
