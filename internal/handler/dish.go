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

// DishHandler manages dishes under a category.  The chain middleware has
// already proven :categoryId belongs to :eateryId and :dishId to
// :categoryId by the time these run.
type DishHandler struct {
	Dishes *repository.DishRepo
}

func NewDishHandler(dishes *repository.DishRepo) *DishHandler {
	return &DishHandler{Dishes: dishes}
}

// Create handles POST /v1/eatery/:eateryId/category/:categoryId/dishes.
func (h *DishHandler) Create(c echo.Context) error {
	categoryID, err := pathID(c, "categoryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid category id")
	}
	var body struct {
		Name         string  `json:"name"`
		PriceCents   uint32  `json:"priceCents"`
		DepartmentID *uint64 `json:"departmentId"`
	}
	if err := c.Bind(&body); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "name is required")
	}
	if body.PriceCents == 0 {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "priceCents must be positive")
	}

	d := &model.Dish{CategoryID: categoryID, Name: name, PriceCents: body.PriceCents, DepartmentID: body.DepartmentID}
	if err := h.Dishes.Create(c.Request().Context(), d); err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusCreated, d)
}

// List handles GET /v1/eatery/:eateryId/category/:categoryId/dishes.
func (h *DishHandler) List(c echo.Context) error {
	categoryID, err := pathID(c, "categoryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid category id")
	}
	items, err := h.Dishes.ListByCategory(c.Request().Context(), categoryID)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET .../dish/:dishId.
func (h *DishHandler) Get(c echo.Context) error {
	id, err := pathID(c, "dishId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid dish id")
	}
	d, err := h.Dishes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "dish not found")
		}
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, d)
}

// Update handles PUT .../dish/:dishId.
func (h *DishHandler) Update(c echo.Context) error {
	id, err := pathID(c, "dishId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid dish id")
	}
	var body struct {
		Name       string `json:"name"`
		PriceCents uint32 `json:"priceCents"`
	}
	if err := c.Bind(&body); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" || body.PriceCents == 0 {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "name and positive priceCents required")
	}
	if err := h.Dishes.Update(c.Request().Context(), id, name, body.PriceCents); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "dish not found")
		}
		return response.Internal(c)
	}
	updated, err := h.Dishes.GetByID(c.Request().Context(), id)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE .../dish/:dishId.  A dish referenced by an open
// order cannot be removed.
func (h *DishHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "dishId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid dish id")
	}
	if err := h.Dishes.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "dish not found")
		}
		if errors.Is(err, repository.ErrConflict) {
			return response.Fail(c, http.StatusConflict, response.CodeConflict, "dish is referenced by open orders")
		}
		return response.Internal(c)
	}
	return response.OK(c, "dish deleted")
}
