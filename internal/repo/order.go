package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/msvetlov/shopping_api/internal/models"
)

type orderRepo struct {
	db *gorm.DB
}

func (r *orderRepo) All(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Preload("Items").Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) ByID(ctx context.Context, id uint) (*models.Order, error) {
	order := models.Order{}
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Update replaces the order row and its full item set. gorm does not
// diff owned associations on Save, so the old items go first.
func (r *orderRepo) Update(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}

	items := order.Items
	order.Items = nil
	if err := r.db.WithContext(ctx).Omit("Items").Save(order).Error; err != nil {
		return err
	}

	for i := range items {
		items[i].ID = 0
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Delete(&models.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
