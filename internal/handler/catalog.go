package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pilates-studio/internal/service"
)

// CatalogHandler serves reference data: class types, instructors, studios
// and packages.
type CatalogHandler struct {
	Catalog *service.CatalogService
	Logger  *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog, Logger: logger}
}

func (h *CatalogHandler) ClassTypes(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Catalog.ListClassTypes(ctx)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return items(c, list)
}

func (h *CatalogHandler) Instructors(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Catalog.ListInstructors(ctx)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return items(c, list)
}

func (h *CatalogHandler) Studios(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Catalog.ListStudios(ctx)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return items(c, list)
}

func (h *CatalogHandler) Packages(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Catalog.ListPackages(ctx)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return items(c, list)
}

// MyPackages handles GET /v1/me/packages.
func (h *CatalogHandler) MyPackages(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Catalog.ListUserPackages(ctx, userID)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return items(c, list)
}
