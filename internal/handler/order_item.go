package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/response"
)

// OrderItemHandler manages the dish lines of an order.  :orderId and
// :itemId are validated against :eateryId by the chain middleware; the dish
// referenced in the body is checked here because it is not a path param.
type OrderItemHandler struct {
	Items  *repository.OrderItemRepo
	Dishes *repository.DishRepo
}

func NewOrderItemHandler(items *repository.OrderItemRepo, dishes *repository.DishRepo) *OrderItemHandler {
	return &OrderItemHandler{Items: items, Dishes: dishes}
}

// Create handles POST /v1/eatery/:eateryId/order/:orderId/items.  The dish
// must come from the same eatery's menu.
func (h *OrderItemHandler) Create(c echo.Context) error {
	eateryID, err := pathID(c, "eateryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid eatery id")
	}
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid order id")
	}
	var body struct {
		DishID   uint64 `json:"dishId"`
		Quantity uint32 `json:"quantity"`
		Note     string `json:"note"`
	}
	if err := c.Bind(&body); err != nil || body.DishID == 0 {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "dishId is required")
	}
	if body.Quantity == 0 {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "quantity must be positive")
	}

	reqCtx := c.Request().Context()
	owner, err := h.Dishes.EateryID(reqCtx, body.DishID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return response.Internal(c)
	}
	if err != nil || owner != eateryID {
		return response.Fail(c, http.StatusForbidden, response.CodeOwnershipMismatch,
			"access to resources that are unrelated or do not exist")
	}

	it := &model.OrderItem{OrderID: orderID, DishID: body.DishID, Quantity: body.Quantity, Note: strings.TrimSpace(body.Note)}
	if err := h.Items.Create(reqCtx, it); err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusCreated, it)
}

// List handles GET /v1/eatery/:eateryId/order/:orderId/items.
func (h *OrderItemHandler) List(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid order id")
	}
	items, err := h.Items.ListByOrder(c.Request().Context(), orderID)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Update handles PUT /v1/eatery/:eateryId/order-item/:orderItemId.
func (h *OrderItemHandler) Update(c echo.Context) error {
	id, err := pathID(c, "orderItemId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid order item id")
	}
	var body struct {
		Quantity uint32 `json:"quantity"`
		Note     string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid body")
	}
	if body.Quantity == 0 {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "quantity must be positive")
	}
	if err := h.Items.Update(c.Request().Context(), id, body.Quantity, strings.TrimSpace(body.Note)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "order item not found")
		}
		return response.Internal(c)
	}
	it, err := h.Items.GetByID(c.Request().Context(), id)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, it)
}

// Delete handles DELETE /v1/eatery/:eateryId/order-item/:orderItemId.
func (h *OrderItemHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "orderItemId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid order item id")
	}
	if err := h.Items.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "order item not found")
		}
		return response.Internal(c)
	}
	return response.OK(c, "order item deleted")
}
