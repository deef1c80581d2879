package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/msvetlov/shopping_api/internal/models"
	"github.com/msvetlov/shopping_api/internal/repo"
	"github.com/msvetlov/shopping_api/internal/service/order"
	"github.com/msvetlov/shopping_api/internal/transport"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.ProductImage{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func newService(t *testing.T) (*order.Service, *gorm.DB) {
	db := newTestDB(t)
	return order.New(repo.New(db)), db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, qty int) models.Product {
	p := models.Product{
		Name:     name,
		Price:    price,
		Quantity: qty,
		Type:     models.TypeElectronics,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Quantity
}

func validRequest(items ...transport.CreateOrderItem) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		CustomerName:    "Jordan Reyes",
		ShippingAddress: "12 Harbor Lane",
		BillingAddress:  "12 Harbor Lane",
		PhoneNumber:     "+1 555 010 2233",
		Email:           "jordan@example.com",
		Items:           items,
	}
}

func TestCreateOrderFreezesTotals(t *testing.T) {
	svc, db := newService(t)
	prod := seedProduct(t, db, "headphones", 999, 10)

	created, err := svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: prod.ID, Quantity: 3},
	))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.EqualValues(t, 2997, created.TotalPrice)
	require.Len(t, created.Items, 1)
	require.EqualValues(t, 2997, created.Items[0].LineTotal)
	require.Equal(t, 7, stockOf(t, db, prod.ID))

	// a later price change must not touch the stored totals
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", prod.ID).Update("price", 50000).Error)

	var stored models.Order
	require.NoError(t, db.Preload("Items").First(&stored, created.ID).Error)
	require.EqualValues(t, 2997, stored.TotalPrice)
	require.EqualValues(t, 2997, stored.Items[0].LineTotal)
}

func TestCreateOrderOnlyTouchesReferencedProducts(t *testing.T) {
	svc, db := newService(t)
	a := seedProduct(t, db, "keyboard", 400, 5)
	b := seedProduct(t, db, "mouse", 200, 9)

	_, err := svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: a.ID, Quantity: 2},
	))
	require.NoError(t, err)
	require.Equal(t, 3, stockOf(t, db, a.ID))
	require.Equal(t, 9, stockOf(t, db, b.ID))
}

func TestCreateOrderInsufficientStockLeavesAllStockUnchanged(t *testing.T) {
	svc, db := newService(t)
	a := seedProduct(t, db, "keyboard", 400, 5)
	b := seedProduct(t, db, "mouse", 200, 1)

	_, err := svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: a.ID, Quantity: 2},
		transport.CreateOrderItem{ProductID: b.ID, Quantity: 4},
	))
	require.ErrorIs(t, err, order.ErrInsufficientStock)
	require.Equal(t, 5, stockOf(t, db, a.ID))
	require.Equal(t, 1, stockOf(t, db, b.ID))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	svc, db := newService(t)
	seedProduct(t, db, "keyboard", 400, 5)

	_, err := svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: 777, Quantity: 1},
	))
	require.ErrorIs(t, err, order.ErrProductReference)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _ := newService(t)

	req := transport.CreateOrderRequest{
		CustomerName: "Jordan Reyes",
		PhoneNumber:  "not-a-phone",
		Email:        "not-an-email",
	}
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, order.ErrValidation)

	var ve *order.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, "shipping_address is required")
	require.Contains(t, ve.Fields, "billing_address is required")
	require.Contains(t, ve.Fields, "phone_number is not a valid phone number")
	require.Contains(t, ve.Fields, "email is not a valid email address")
	require.Contains(t, ve.Fields, "order_items must not be empty")
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	svc, db := newService(t)
	prod := seedProduct(t, db, "lamp", 1500, 6)

	created, err := svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: prod.ID, Quantity: 4},
	))
	require.NoError(t, err)
	require.Equal(t, 2, stockOf(t, db, prod.ID))

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.Equal(t, 6, stockOf(t, db, prod.ID))

	var items int64
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	require.Zero(t, items)

	// re-creating the same order lands back on the post-create level
	_, err = svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: prod.ID, Quantity: 4},
	))
	require.NoError(t, err)
	require.Equal(t, 2, stockOf(t, db, prod.ID))
}

func TestDeleteOrderNotFound(t *testing.T) {
	svc, _ := newService(t)
	require.ErrorIs(t, svc.Delete(context.Background(), 41), order.ErrNotFound)
}

func TestUpdateOrderRestoresThenDeducts(t *testing.T) {
	svc, db := newService(t)
	prod := seedProduct(t, db, "lamp", 1500, 10)

	created, err := svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: prod.ID, Quantity: 2},
	))
	require.NoError(t, err)
	require.Equal(t, 8, stockOf(t, db, prod.ID))

	upd := transport.UpdateOrderRequest{
		ID: created.ID,
		CreateOrderRequest: validRequest(
			transport.CreateOrderItem{ProductID: prod.ID, Quantity: 5},
		),
	}
	require.NoError(t, svc.Update(context.Background(), created.ID, upd))

	// net change from the pre-update level is -3: +2 restored, -5 deducted
	require.Equal(t, 5, stockOf(t, db, prod.ID))

	var stored models.Order
	require.NoError(t, db.Preload("Items").First(&stored, created.ID).Error)
	require.Len(t, stored.Items, 1)
	require.Equal(t, 5, stored.Items[0].Quantity)
	require.EqualValues(t, 7500, stored.TotalPrice)
}

func TestUpdateOrderNotFound(t *testing.T) {
	svc, _ := newService(t)

	upd := transport.UpdateOrderRequest{
		ID: 12,
		CreateOrderRequest: validRequest(
			transport.CreateOrderItem{ProductID: 1, Quantity: 1},
		),
	}
	require.ErrorIs(t, svc.Update(context.Background(), 12, upd), order.ErrNotFound)
}

func TestGetOrderEnrichment(t *testing.T) {
	svc, db := newService(t)
	prod := seedProduct(t, db, "lamp", 1500, 10)

	created, err := svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: prod.ID, Quantity: 2},
	))
	require.NoError(t, err)

	// rename and reprice: enrichment shows current values, line total stays
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", prod.ID).
		Updates(map[string]any{"name": "desk lamp", "price": 2000}).Error)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.Equal(t, "desk lamp", got.Items[0].ProductName)
	require.EqualValues(t, 2000, got.Items[0].ProductPrice)
	require.EqualValues(t, 3000, got.Items[0].LineTotal)
	require.EqualValues(t, 3000, got.TotalPrice)
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestListOrdersEmpty(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestProductSummary(t *testing.T) {
	svc, db := newService(t)
	a := seedProduct(t, db, "keyboard", 400, 20)
	b := seedProduct(t, db, "mouse", 200, 20)

	_, err := svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: a.ID, Quantity: 2},
		transport.CreateOrderItem{ProductID: b.ID, Quantity: 1},
	))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: a.ID, Quantity: 3},
	))
	require.NoError(t, err)

	rows, err := svc.ProductSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, []transport.ProductSummaryRow{
		{ProductName: "keyboard", TotalOrdered: 5},
		{ProductName: "mouse", TotalOrdered: 1},
	}, rows)
}

func TestProductSummaryUnknownProduct(t *testing.T) {
	svc, db := newService(t)
	a := seedProduct(t, db, "keyboard", 400, 20)

	_, err := svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: a.ID, Quantity: 2},
	))
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.Product{}, a.ID).Error)

	rows, err := svc.ProductSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, []transport.ProductSummaryRow{
		{ProductName: "Unknown", TotalOrdered: 2},
	}, rows)
}

func TestProductSummaryEmpty(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.ProductSummary(context.Background())
	require.ErrorIs(t, err, order.ErrNotFound)
	require.False(t, errors.Is(err, order.ErrValidation))
}

func TestCatalogScenario(t *testing.T) {
	// catalog has one product: stock 10, price 9.99 (999 cents)
	svc, db := newService(t)
	prod := seedProduct(t, db, "speaker", 999, 10)

	first, err := svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: prod.ID, Quantity: 3},
	))
	require.NoError(t, err)
	require.EqualValues(t, 2997, first.TotalPrice)
	require.Equal(t, 7, stockOf(t, db, prod.ID))

	_, err = svc.Create(context.Background(), validRequest(
		transport.CreateOrderItem{ProductID: prod.ID, Quantity: 8},
	))
	require.ErrorIs(t, err, order.ErrInsufficientStock)
	require.Equal(t, 7, stockOf(t, db, prod.ID))
}
