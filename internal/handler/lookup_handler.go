package handler

import (
	"net/http"

	"movie-catalog/internal/store"
	"movie-catalog/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LookupHandler serves the reference collections used by forms.
type LookupHandler struct {
	lookups store.LookupStore
}

// NewLookupHandler creates a LookupHandler.
func NewLookupHandler(lookups store.LookupStore) *LookupHandler {
	return &LookupHandler{lookups: lookups}
}

func (h *LookupHandler) Genres(c echo.Context) error {
	genres, err := h.lookups.Genres()
	if err != nil {
		logger.FromContext(c).Error("Failed to list genres", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve genres"})
	}
	return c.JSON(http.StatusOK, genres)
}

func (h *LookupHandler) Countries(c echo.Context) error {
	countries, err := h.lookups.Countries()
	if err != nil {
		logger.FromContext(c).Error("Failed to list countries", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve countries"})
	}
	return c.JSON(http.StatusOK, countries)
}

func (h *LookupHandler) Images(c echo.Context) error {
	images, err := h.lookups.Images()
	if err != nil {
		logger.FromContext(c).Error("Failed to list images", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve images"})
	}
	return c.JSON(http.StatusOK, images)
}
