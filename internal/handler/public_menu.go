package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrfood/eatery-backend/internal/repository"
	"github.com/qrfood/eatery-backend/internal/response"
)

// PublicMenuHandler serves the unauthenticated menu view guests load after
// scanning a table code.  The route sits behind the redis response cache.
type PublicMenuHandler struct {
	Eateries   *repository.EateryRepo
	Categories *repository.CategoryRepo
	Dishes     *repository.DishRepo
}

func NewPublicMenuHandler(eateries *repository.EateryRepo, categories *repository.CategoryRepo, dishes *repository.DishRepo) *PublicMenuHandler {
	return &PublicMenuHandler{Eateries: eateries, Categories: categories, Dishes: dishes}
}

type menuCategory struct {
	ID     uint64     `json:"id"`
	Name   string     `json:"name"`
	Dishes []menuDish `json:"dishes"`
}

type menuDish struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	PriceCents uint32 `json:"priceCents"`
}

// Menu handles GET /v1/eatery/:eateryId/menu.
func (h *PublicMenuHandler) Menu(c echo.Context) error {
	eateryID, err := pathID(c, "eateryId")
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid eatery id")
	}

	reqCtx := c.Request().Context()
	eatery, err := h.Eateries.GetByID(reqCtx, eateryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.Fail(c, http.StatusNotFound, response.CodeNotFound, "eatery not found")
		}
		return response.Internal(c)
	}

	cats, err := h.Categories.ListByEatery(reqCtx, eateryID)
	if err != nil {
		return response.Internal(c)
	}

	out := make([]menuCategory, 0, len(cats))
	for _, cat := range cats {
		dishes, err := h.Dishes.ListByCategory(reqCtx, cat.ID)
		if err != nil {
			return response.Internal(c)
		}
		mc := menuCategory{ID: cat.ID, Name: cat.Name, Dishes: make([]menuDish, 0, len(dishes))}
		for _, d := range dishes {
			mc.Dishes = append(mc.Dishes, menuDish{ID: d.ID, Name: d.Name, PriceCents: d.PriceCents})
		}
		out = append(out, mc)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"eatery":     echo.Map{"id": eatery.ID, "name": eatery.Name},
		"categories": out,
	})
}
