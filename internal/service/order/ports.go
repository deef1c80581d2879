package order

import (
	"context"

	"github.com/msvetlov/shopping_api/internal/models"
)

// ProductStore is the workflow's only channel of truth for stock
// levels; nothing is cached across requests.
type ProductStore interface {
	All(ctx context.Context) ([]models.Product, error)
	ByID(ctx context.Context, id uint) (*models.Product, error)
	Save(ctx context.Context, prod *models.Product) error
}

type OrderStore interface {
	All(ctx context.Context) ([]models.Order, error)
	ByID(ctx context.Context, id uint) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uint) error
}

// Stores bundles both stores with a transaction boundary. InTx hands
// fn stores bound to one transaction; returning an error rolls back
// every mutation made through them.
type Stores interface {
	Products() ProductStore
	Orders() OrderStore
	InTx(ctx context.Context, fn func(Stores) error) error
}
