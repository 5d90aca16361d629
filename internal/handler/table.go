package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/model"
	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/response"
)

// TableHandler manages the physical tables of an eatery.  Each table gets a
// random QR token at creation; the token is what the printed code encodes
// and it never changes for the life of the table.
type TableHandler struct {
	Tables *repository.TableRepo
}

func NewTableHandler(tables *repository.TableRepo) *TableHandler {
	return &TableHandler{Tables: tables}
}

// Create handles POST /v1/eatery/:eateryId/tables.
func (h *TableHandler) Create(c echo.Context) error {
	eateryID, err := pathID(c, "eateryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid eatery id")
	}
	var body struct {
		Label string `json:"label"`
	}
	if err := c.Bind(&body); err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid body")
	}
	label := strings.TrimSpace(body.Label)
	if label == "" {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "label is required")
	}

	t := &model.Table{EateryID: eateryID, Label: label, QRToken: uuid.NewString()}
	if err := h.Tables.Create(c.Request().Context(), t); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return response.Fail(c, http.StatusConflict, response.CodeConflict, "table label already exists")
		}
		return response.Internal(c)
	}
	return c.JSON(http.StatusCreated, t)
}

// List handles GET /v1/eatery/:eateryId/tables.
func (h *TableHandler) List(c echo.Context) error {
	eateryID, err := pathID(c, "eateryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid eatery id")
	}
	items, err := h.Tables.ListByEatery(c.Request().Context(), eateryID)
	if err != nil {
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/eatery/:eateryId/table/:tableId.
func (h *TableHandler) Get(c echo.Context) error {
	id, err := pathID(c, "tableId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid table id")
	}
	t, err := h.Tables.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "table not found")
		}
		return response.Internal(c)
	}
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /v1/eatery/:eateryId/table/:tableId.  A table with
// unfinished orders cannot be removed.
func (h *TableHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "tableId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid table id")
	}
	if err := h.Tables.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "table not found")
		}
		if errors.Is(err, repository.ErrConflict) {
			return response.Fail(c, http.StatusConflict, response.CodeConflict, "table still has open orders")
		}
		return response.Internal(c)
	}
	return response.OK(c, "table deleted")
}
