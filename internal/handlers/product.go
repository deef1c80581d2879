package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/msvetlov/shopping_api/internal/imagestore"
	"github.com/msvetlov/shopping_api/internal/logging"
	"github.com/msvetlov/shopping_api/internal/models"
	"github.com/msvetlov/shopping_api/internal/mykafka"
	"github.com/msvetlov/shopping_api/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Images   *imagestore.Store
	Producer *mykafka.Producer
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	product := models.Product{}
	if err := h.DB.WithContext(ctx).Preload("Images").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_product_error", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("get_product_error", "status", 500, "reason", "cannot load product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}

	l.Info("get_product_success", "product_id", id)
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot count products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot count products")
	}
	if total == 0 {
		l.Warn("get_products_error", "status", 404, "reason", "no products found")
		return echo.NewHTTPError(http.StatusNotFound, "no products found")
	}

	var items []models.Product
	if err := h.DB.WithContext(ctx).Preload("Images").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot load products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load products")
	}

	l.Info("get_products_success", "count", len(items))
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	prod, err := h.bindProductForm(c, &models.Product{})
	if err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.DB.WithContext(ctx).Create(prod).Error; err != nil {
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add product to db")
	}

	if err := h.saveImages(c, prod); err != nil {
		l.Error("product_create_error", "status", 500, "reason", "cannot save images", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save images")
	}

	h.publish(c, fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

// PutProduct replaces the product named by the form's id field. When
// new images are uploaded the old ones are removed, files included.
func (h *ProductHandler) PutProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.put_product")

	id := parseIntDefault(c.FormValue("id"), 0)
	if id <= 0 {
		l.Warn("product_put_error", "status", 400, "reason", "id is not integer")
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var prod models.Product
	if err := h.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("product_put_error", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("product_put_error", "status", 500, "reason", "cannot load product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}

	if _, err := h.bindProductForm(c, &prod); err != nil {
		l.Warn("product_put_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.DB.WithContext(ctx).Omit("Images").Save(&prod).Error; err != nil {
		l.Error("product_put_error", "status", 500, "reason", "cannot save product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save product")
	}

	if uploads := formImages(c); len(uploads) > 0 {
		if err := h.removeImages(ctx, prod.ID); err != nil {
			l.Error("product_put_error", "status", 500, "reason", "cannot remove old images", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot remove old images")
		}
		if err := h.saveImages(c, &prod); err != nil {
			l.Error("product_put_error", "status", 500, "reason", "cannot save images", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot save images")
		}
	} else if err := h.DB.WithContext(ctx).Where("product_id = ?", prod.ID).Order("id ASC").Find(&prod.Images).Error; err != nil {
		l.Error("product_put_error", "status", 500, "reason", "cannot load images", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load images")
	}

	h.publish(c, fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	l.Info("put_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var prod models.Product
	if err := h.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("product_delete_error", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("product_delete_error", "status", 500, "reason", "cannot load product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}

	if err := h.removeImages(ctx, prod.ID); err != nil {
		l.Error("product_delete_error", "status", 500, "reason", "cannot remove images", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot remove images")
	}

	if err := h.DB.WithContext(ctx).Delete(&models.Product{}, id).Error; err != nil {
		l.Error("product_delete_error", "status", 500, "reason", "cannot delete product from db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product from db")
	}

	h.publish(c, fmt.Sprint(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) bindProductForm(c echo.Context, prod *models.Product) (*models.Product, error) {
	prod.Name = c.FormValue("name")
	if prod.Name == "" {
		return nil, errors.New("name is required")
	}
	prod.Description = c.FormValue("description")

	price, err := strconv.ParseInt(c.FormValue("price"), 10, 64)
	if err != nil || price < 0 {
		return nil, errors.New("price must be a non-negative integer")
	}
	prod.Price = price

	qty, err := strconv.Atoi(c.FormValue("quantity"))
	if err != nil || qty < 0 {
		return nil, errors.New("quantity must be a non-negative integer")
	}
	prod.Quantity = qty

	prod.Type = models.ProductType(c.FormValue("type"))
	if !prod.Type.Valid() {
		return nil, errors.New("unknown product type")
	}

	prod.Height = parseFloatDefault(c.FormValue("height"))
	prod.Width = parseFloatDefault(c.FormValue("width"))
	prod.Length = parseFloatDefault(c.FormValue("length"))
	return prod, nil
}

func parseFloatDefault(s string) float64 {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return 0
}

func formImages(c echo.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["images"]
}

// saveImages stores every uploaded file and records it against the
// product, flagging the first one as the default image.
func (h *ProductHandler) saveImages(c echo.Context, prod *models.Product) error {
	uploads := formImages(c)
	if len(uploads) == 0 {
		return nil
	}

	ctx := c.Request().Context()
	prod.Images = prod.Images[:0]
	for i, file := range uploads {
		if file.Size == 0 {
			continue
		}
		path, err := h.Images.Save(file)
		if err != nil {
			return err
		}
		img := models.ProductImage{
			ProductID: prod.ID,
			ImagePath: path,
			IsDefault: i == 0,
		}
		if err := h.DB.WithContext(ctx).Create(&img).Error; err != nil {
			return err
		}
		prod.Images = append(prod.Images, img)
	}
	return nil
}

func (h *ProductHandler) removeImages(ctx context.Context, productID uint) error {
	var images []models.ProductImage
	if err := h.DB.WithContext(ctx).Where("product_id = ?", productID).Find(&images).Error; err != nil {
		return err
	}
	for _, img := range images {
		if err := h.Images.Remove(img.ImagePath); err != nil {
			return err
		}
	}
	return h.DB.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error
}
