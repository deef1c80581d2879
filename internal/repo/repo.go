package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/msvetlov/shopping_api/internal/service/order"
)

// GormRepo implements the store contracts consumed by the order
// workflow on top of a single gorm connection (or transaction).
type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) Products() order.ProductStore { return &productRepo{db: r.DB} }
func (r *GormRepo) Orders() order.OrderStore     { return &orderRepo{db: r.DB} }

// InTx runs fn against stores bound to one database transaction, so a
// multi-step stock adjustment either lands completely or not at all.
func (r *GormRepo) InTx(ctx context.Context, fn func(order.Stores) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}
