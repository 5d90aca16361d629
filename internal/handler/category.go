package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/response"
)

// CategoryHandler manages menu categories inside one eatery.  Ownership of
// :categoryId against :eateryId is enforced by the chain middleware before
// any of these run.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(categories *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: categories}
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// Create handles POST /v1/eatery/:eateryId/categories.
func (h *CategoryHandler) Create(c echo.Context) error {
	eateryID, err := pathID(c, "eateryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid eatery id")
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "name is required")
	}

	cat := &model.Category{EateryID: eateryID, Name: name}
	if err := h.Categories.Create(c.Request().Context(), cat); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return response.Fail(c, http.StatusConflict, response.CodeConflict, "category name already exists")
		}
		return response.Internal(c)
	}
	return c.JSON(http.StatusCreated, cat)
}

// List handles GET /v1/eatery/:eateryId/categories.
func (h *CategoryHandler) List(c echo.Context) error {
	eateryID, err := pathID(c, "eateryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid eatery id")
	}
	items, err := h.Categories.ListByEatery(c.Request().Context(), eateryID)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/eatery/:eateryId/category/:categoryId.
func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := pathID(c, "categoryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid category id")
	}
	cat, err := h.Categories.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "category not found")
		}
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, cat)
}

// Update handles PUT /v1/eatery/:eateryId/category/:categoryId.
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "categoryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid category id")
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "name is required")
	}
	if err := h.Categories.UpdateName(c.Request().Context(), id, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "category not found")
		}
		if errors.Is(err, repository.ErrConflict) {
			return response.Fail(c, http.StatusConflict, response.CodeConflict, "category name already exists")
		}
		return response.Internal(c)
	}
	updated, err := h.Categories.GetByID(c.Request().Context(), id)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/eatery/:eateryId/category/:categoryId.
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "categoryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid category id")
	}
	if err := h.Categories.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "category not found")
		}
		return response.Internal(c)
	}
	return response.OK(c, "category deleted")
}
