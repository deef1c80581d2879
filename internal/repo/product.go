package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/msvetlov/shopping_api/internal/models"
)

type productRepo struct {
	db *gorm.DB
}

func (r *productRepo) All(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *productRepo) ByID(ctx context.Context, id uint) (*models.Product, error) {
	product := models.Product{}
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Save(ctx context.Context, prod *models.Product) error {
	return r.db.WithContext(ctx).Omit("Images").Save(prod).Error
}
