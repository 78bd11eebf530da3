package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pilates-studio/internal/service"
)

// ClassHandler serves the public class catalog.
type ClassHandler struct {
	Catalog *service.CatalogService
	Logger  *zap.Logger
}

func NewClassHandler(catalog *service.CatalogService, logger *zap.Logger) *ClassHandler {
	return &ClassHandler{Catalog: catalog, Logger: logger}
}

// ListClasses handles GET /v1/classes?date=YYYY-MM-DD.
func (h *ClassHandler) ListClasses(c echo.Context) error {
	var date *time.Time
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
		if err != nil {
			return badRequest(c, "date must be formatted as YYYY-MM-DD")
		}
		date = &d
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Catalog.ListClasses(ctx, date)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return items(c, list)
}

// GetClass handles GET /v1/classes/:id.
func (h *ClassHandler) GetClass(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid class id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Catalog.GetClass(ctx, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": v})
}
