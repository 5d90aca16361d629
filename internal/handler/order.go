package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/middleware"
	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/queue"
	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/response"
)

// OrderPublisher announces order events.  The real implementation publishes
// to RabbitMQ; tests capture the event.  Publish failures never fail the
// request.
type OrderPublisher struct {
	Placed func(ctx context.Context, ev queue.OrderPlacedEvent) error
	Status func(ctx context.Context, ev queue.OrderStatusEvent) error
}

// OrderHandler manages the order lifecycle inside one eatery.  The chain
// middleware has already proven :orderId belongs to :eateryId; the table a
// new order is opened on is checked here because it arrives in the body,
// not the path.
type OrderHandler struct {
	Orders  *repository.OrderRepo
	Tables  *repository.TableRepo
	Publish OrderPublisher
}

func NewOrderHandler(orders *repository.OrderRepo, tables *repository.TableRepo, pub OrderPublisher) *OrderHandler {
	return &OrderHandler{Orders: orders, Tables: tables, Publish: pub}
}

// Create handles POST /v1/eatery/:eateryId/orders.  The table must belong
// to the eatery in the path; a foreign table gets the same 403 as any other
// cross-tenant probe.
func (h *OrderHandler) Create(c echo.Context) error {
	auth, ok := middleware.Auth(c)
	if !ok {
		return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "authentication required")
	}
	eateryID, err := pathID(c, "eateryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid eatery id")
	}
	var body struct {
		TableID uint64 `json:"tableId"`
	}
	if err := c.Bind(&body); err != nil || body.TableID == 0 {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "tableId is required")
	}

	reqCtx := c.Request().Context()
	owner, err := h.Tables.EateryID(reqCtx, body.TableID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return response.Internal(c)
	}
	if err != nil || owner != eateryID {
		return response.Fail(c, http.StatusForbidden, response.CodeOwnershipMismatch,
			"access to resources that are unrelated or do not exist")
	}

	o := &model.Order{TableID: body.TableID}
	if err := h.Orders.Create(reqCtx, o); err != nil {
		return response.Internal(c)
	}

	if h.Publish.Placed != nil {
		_ = h.Publish.Placed(reqCtx, queue.OrderPlacedEvent{
			OrderID:  o.ID,
			EateryID: eateryID,
			TableID:  o.TableID,
			PlacedBy: auth.UserID,
			At:       time.Now().UTC(),
		})
	}
	return c.JSON(http.StatusCreated, o)
}

// List handles GET /v1/eatery/:eateryId/orders.
func (h *OrderHandler) List(c echo.Context) error {
	eateryID, err := pathID(c, "eateryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid eatery id")
	}
	items, err := h.Orders.ListByEatery(c.Request().Context(), eateryID)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/eatery/:eateryId/order/:orderId.
func (h *OrderHandler) Get(c echo.Context) error {
	id, err := pathID(c, "orderId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid order id")
	}
	o, err := h.Orders.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "order not found")
		}
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, o)
}

// UpdateStatus handles PUT /v1/eatery/:eateryId/order/:orderId/status.
// Each role owns its step of the flow; an eatery admin may set anything.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	auth, ok := middleware.Auth(c)
	if !ok {
		return response.Fail(c, http.StatusUnauthorized, response.CodeTokenInvalid, "authentication required")
	}
	id, err := pathID(c, "orderId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid order id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid body")
	}
	status, ok := model.ParseOrderStatus(body.Status)
	if !ok {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "unknown status")
	}
	if !model.CanSetStatus(auth.Roles, status) {
		return response.Fail(c, http.StatusForbidden, response.CodeAccessDenied, "role may not set this status")
	}

	reqCtx := c.Request().Context()
	if err := h.Orders.UpdateStatus(reqCtx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "order not found")
		}
		return response.Internal(c)
	}

	if h.Publish.Status != nil {
		eateryID, _ := pathID(c, "eateryId")
		_ = h.Publish.Status(reqCtx, queue.OrderStatusEvent{
			OrderID:  id,
			EateryID: eateryID,
			Status:   string(status),
			By:       auth.UserID,
			At:       time.Now().UTC(),
		})
	}

	o, err := h.Orders.GetByID(reqCtx, id)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, o)
}
