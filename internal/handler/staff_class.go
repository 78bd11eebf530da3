package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pilates-studio/internal/export"
	"github.com/iliyamo/pilates-studio/internal/service"
)

// StaffHandler serves class management for instructors and admins.
type StaffHandler struct {
	Catalog *service.CatalogService
	Logger  *zap.Logger
}

func NewStaffHandler(catalog *service.CatalogService, logger *zap.Logger) *StaffHandler {
	return &StaffHandler{Catalog: catalog, Logger: logger}
}

type classReq struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	MaxCapacity  int       `json:"max_capacity"`
	ClassTypeID  uint64    `json:"class_type_id"`
	InstructorID uint64    `json:"instructor_id"`
	StudioID     uint64    `json:"studio_id"`
}

func (r classReq) input() service.ClassInput {
	return service.ClassInput{
		Name:         r.Name,
		Description:  r.Description,
		StartsAt:     r.StartTime,
		EndsAt:       r.EndTime,
		Capacity:     r.MaxCapacity,
		ClassTypeID:  r.ClassTypeID,
		InstructorID: r.InstructorID,
		StudioID:     r.StudioID,
	}
}

// CreateClass handles POST /v1/staff/classes.
func (h *StaffHandler) CreateClass(c echo.Context) error {
	var req classReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Catalog.CreateClass(ctx, req.input())
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": v})
}

// UpdateClass handles PUT /v1/staff/classes/:id.
func (h *StaffHandler) UpdateClass(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid class id")
	}
	var req classReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Catalog.UpdateClass(ctx, id, req.input())
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": v})
}

// DeactivateClass handles DELETE /v1/staff/classes/:id.
func (h *StaffHandler) DeactivateClass(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid class id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Catalog.DeactivateClass(ctx, id); err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Roster handles GET /v1/staff/classes/:id/bookings.
func (h *StaffHandler) Roster(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid class id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	_, entries, err := h.Catalog.ClassRoster(ctx, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return items(c, entries)
}

// RosterXLSX handles GET /v1/staff/classes/:id/roster.xlsx.
func (h *StaffHandler) RosterXLSX(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid class id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	class, entries, err := h.Catalog.ClassRoster(ctx, id)
	if err != nil {
		return respondError(c, h.Logger, err)
	}

	var buf bytes.Buffer
	if err := export.WriteRoster(&buf, class, entries); err != nil {
		return writeError(c, h.Logger, http.StatusInternalServerError, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="class-%d-roster.xlsx"`, class.ID))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
