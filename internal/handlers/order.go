package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/msvetlov/shopping_api/internal/logging"
	"github.com/msvetlov/shopping_api/internal/mykafka"
	"github.com/msvetlov/shopping_api/internal/service/order"
	"github.com/msvetlov/shopping_api/internal/transport"
)

type OrderHandler struct {
	Svc      *order.Service
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	orders, err := h.Svc.List(ctx)
	if err != nil {
		return h.mapError(c, l, "get_orders_error", err)
	}

	l.Info("get_orders_success", "count", len(orders))
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	resp, err := h.Svc.Get(ctx, uint(id))
	if err != nil {
		return h.mapError(c, l, "get_order_error", err)
	}

	l.Info("get_order_success", "order_id", id)
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	created, err := h.Svc.Create(ctx, req)
	if err != nil {
		return h.mapError(c, l, "create_order_error", err)
	}

	h.publish(c, fmt.Sprint(created.ID), map[string]any{
		"type":    "order_created",
		"orderID": created.ID,
		"total":   created.TotalPrice,
	})
	l.Info("create_order_success", "order_id", created.ID, "total", created.TotalPrice)
	return c.JSON(http.StatusCreated, created)
}

func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ID != uint(id) {
		l.Warn("update_order_error", "status", 400, "reason", "order id mismatch")
		return echo.NewHTTPError(http.StatusBadRequest, "order id mismatch")
	}

	if err := h.Svc.Update(ctx, uint(id), req); err != nil {
		return h.mapError(c, l, "update_order_error", err)
	}

	h.publish(c, fmt.Sprint(id), map[string]any{
		"type":    "order_updated",
		"orderID": id,
	})
	l.Info("update_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("delete_order_error", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	if err := h.Svc.Delete(ctx, uint(id)); err != nil {
		return h.mapError(c, l, "delete_order_error", err)
	}

	h.publish(c, fmt.Sprint(id), map[string]any{
		"type":    "order_deleted",
		"orderID": id,
	})
	l.Info("delete_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) ProductSummary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.product_summary")

	rows, err := h.Svc.ProductSummary(ctx)
	if err != nil {
		return h.mapError(c, l, "product_summary_error", err)
	}

	l.Info("product_summary_success", "rows", len(rows))
	return c.JSON(http.StatusOK, rows)
}

// mapError translates workflow errors to HTTP statuses: bad input and
// stock failures are the client's fault, unresolved ids are 404, and
// anything else is a storage fault surfaced as 500.
func (h *OrderHandler) mapError(c echo.Context, l *slog.Logger, op string, err error) error {
	var ve *order.ValidationError
	switch {
	case errors.As(err, &ve):
		l.Warn(op, "status", 400, "reason", "validation failed", "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "validation failed",
			"details": ve.Fields,
		})
	case errors.Is(err, order.ErrProductReference):
		l.Warn(op, "status", 400, "reason", "invalid product reference", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product ID")
	case errors.Is(err, order.ErrInsufficientStock):
		l.Warn(op, "status", 400, "reason", "insufficient stock", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "insufficient product quantity")
	case errors.Is(err, order.ErrNotFound):
		l.Warn(op, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	default:
		l.Error(op, "status", 500, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
