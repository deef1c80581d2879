// Package order holds the inventory reconciliation workflow: every
// order mutation adjusts product stock so that quantity-on-hand always
// equals initial stock minus the units reserved by live order items.
package order

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/msvetlov/shopping_api/internal/models"
	"github.com/msvetlov/shopping_api/internal/transport"
)

const unknownProduct = "Unknown"

type Service struct {
	stores Stores
}

func New(stores Stores) *Service {
	return &Service{stores: stores}
}

// Create validates the request, checks every item against the catalog
// before touching anything, then deducts stock and persists the order
// with totals frozen from the catalog price at this moment.
func (s *Service) Create(ctx context.Context, req transport.CreateOrderRequest) (*models.Order, error) {
	if fields := validateOrder(req); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var created *models.Order
	err := s.stores.InTx(ctx, func(st Stores) error {
		byID, err := catalogByID(ctx, st)
		if err != nil {
			return err
		}

		// all-or-nothing precondition pass: no stock moves unless
		// every item clears both checks
		for _, it := range req.Items {
			prod, ok := byID[it.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %d", ErrProductReference, it.ProductID)
			}
			if it.Quantity > prod.Quantity {
				return fmt.Errorf("%w: product %d has %d on hand, requested %d",
					ErrInsufficientStock, prod.ID, prod.Quantity, it.Quantity)
			}
		}

		order := &models.Order{
			CustomerName:    req.CustomerName,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			PhoneNumber:     req.PhoneNumber,
			Email:           req.Email,
		}

		for _, it := range req.Items {
			prod := byID[it.ProductID]
			line := prod.Price * int64(it.Quantity)
			order.Items = append(order.Items, models.OrderItem{
				ProductID: prod.ID,
				Quantity:  it.Quantity,
				LineTotal: line,
			})
			order.TotalPrice += line

			prod.Quantity -= it.Quantity
			if err := st.Products().Save(ctx, prod); err != nil {
				return fmt.Errorf("adjust stock for product %d: %w", prod.ID, err)
			}
		}

		if err := st.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("persist order: %w", err)
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update restores stock for every item of the stored order, then
// deducts stock for the requested item set. There is deliberately no
// sufficiency re-check against the restored baseline; the non-negative
// stock constraint at the storage layer is the only guard. Line totals
// are recomputed from the current catalog price and frozen again.
func (s *Service) Update(ctx context.Context, id uint, req transport.UpdateOrderRequest) error {
	if fields := validateOrder(req.CreateOrderRequest); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return s.stores.InTx(ctx, func(st Stores) error {
		existing, err := st.Orders().ByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load order %d: %w", id, err)
		}

		for _, it := range existing.Items {
			prod, err := st.Products().ByID(ctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("restore stock for product %d: %w", it.ProductID, err)
			}
			prod.Quantity += it.Quantity
			if err := st.Products().Save(ctx, prod); err != nil {
				return fmt.Errorf("restore stock for product %d: %w", it.ProductID, err)
			}
		}

		existing.CustomerName = req.CustomerName
		existing.ShippingAddress = req.ShippingAddress
		existing.BillingAddress = req.BillingAddress
		existing.PhoneNumber = req.PhoneNumber
		existing.Email = req.Email
		existing.TotalPrice = 0
		existing.Items = nil

		for _, it := range req.Items {
			prod, err := st.Products().ByID(ctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("deduct stock for product %d: %w", it.ProductID, err)
			}
			prod.Quantity -= it.Quantity
			if err := st.Products().Save(ctx, prod); err != nil {
				return fmt.Errorf("deduct stock for product %d: %w", it.ProductID, err)
			}

			line := prod.Price * int64(it.Quantity)
			existing.Items = append(existing.Items, models.OrderItem{
				ProductID: prod.ID,
				Quantity:  it.Quantity,
				LineTotal: line,
			})
			existing.TotalPrice += line
		}

		if err := st.Orders().Update(ctx, existing); err != nil {
			return fmt.Errorf("persist order %d: %w", id, err)
		}
		return nil
	})
}

// Delete restores stock for every item of the order, then removes the
// order and its items. Products deleted since the order was placed are
// skipped.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.stores.InTx(ctx, func(st Stores) error {
		existing, err := st.Orders().ByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load order %d: %w", id, err)
		}

		for _, it := range existing.Items {
			prod, err := st.Products().ByID(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return fmt.Errorf("restore stock for product %d: %w", it.ProductID, err)
			}
			prod.Quantity += it.Quantity
			if err := st.Products().Save(ctx, prod); err != nil {
				return fmt.Errorf("restore stock for product %d: %w", it.ProductID, err)
			}
		}

		if err := st.Orders().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete order %d: %w", id, err)
		}
		return nil
	})
}

// Get returns one order with each item enriched with the referenced
// product's current name and price. The enrichment is a read-time
// projection; the stored line total stays frozen.
func (s *Service) Get(ctx context.Context, id uint) (*transport.OrderResponse, error) {
	order, err := s.stores.Orders().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load order %d: %w", id, err)
	}

	byID, err := catalogByID(ctx, s.stores)
	if err != nil {
		return nil, err
	}
	resp := enrich(order, byID)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]transport.OrderResponse, error) {
	orders, err := s.stores.Orders().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: no orders", ErrNotFound)
	}

	byID, err := catalogByID(ctx, s.stores)
	if err != nil {
		return nil, err
	}

	resp := make([]transport.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, enrich(&orders[i], byID))
	}
	return resp, nil
}

// ProductSummary groups all order items across all orders by product
// and sums the ordered quantities. Products that have been deleted
// since appear under the "Unknown" sentinel name.
func (s *Service) ProductSummary(ctx context.Context) ([]transport.ProductSummaryRow, error) {
	orders, err := s.stores.Orders().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: no orders", ErrNotFound)
	}

	byID, err := catalogByID(ctx, s.stores)
	if err != nil {
		return nil, err
	}

	totals := make(map[uint]int)
	var seen []uint
	for i := range orders {
		for _, it := range orders[i].Items {
			if _, ok := totals[it.ProductID]; !ok {
				seen = append(seen, it.ProductID)
			}
			totals[it.ProductID] += it.Quantity
		}
	}

	rows := make([]transport.ProductSummaryRow, 0, len(seen))
	for _, pid := range seen {
		name := unknownProduct
		if prod, ok := byID[pid]; ok {
			name = prod.Name
		}
		rows = append(rows, transport.ProductSummaryRow{
			ProductName:  name,
			TotalOrdered: totals[pid],
		})
	}
	return rows, nil
}

func catalogByID(ctx context.Context, st Stores) (map[uint]*models.Product, error) {
	products, err := st.Products().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

func enrich(o *models.Order, byID map[uint]*models.Product) transport.OrderResponse {
	resp := transport.OrderResponse{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PhoneNumber:     o.PhoneNumber,
		Email:           o.Email,
		TotalPrice:      o.TotalPrice,
		Items:           make([]transport.OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		item := transport.OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal,
		}
		if prod, ok := byID[it.ProductID]; ok {
			item.ProductName = prod.Name
			item.ProductPrice = prod.Price
		} else {
			item.ProductName = unknownProduct
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
