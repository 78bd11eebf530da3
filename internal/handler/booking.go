package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pilates-studio/internal/service"
)

// BookingHandler serves the authenticated customer's bookings.
type BookingHandler struct {
	Bookings *service.BookingService
	Logger   *zap.Logger
}

func NewBookingHandler(bookings *service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Logger: logger}
}

type createBookingReq struct {
	ClassID uint64  `json:"class_id"`
	Notes   *string `json:"notes"`
}

// CreateBooking handles POST /v1/bookings. Every rejection, including an
// unknown class, is a 400: the request body named the class.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.ClassID == 0 {
		return badRequest(c, "class_id is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Bookings.CreateBooking(ctx, userID, req.ClassID, req.Notes)
	if err != nil {
		status := statusFor(service.KindOf(err))
		if status == http.StatusNotFound {
			status = http.StatusBadRequest
		}
		return writeError(c, h.Logger, status, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": b})
}

// ListBookings handles GET /v1/bookings.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Bookings.GetUserBookings(ctx, userID)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return items(c, list)
}

// GetBooking handles GET /v1/bookings/:id. Bookings of other users are
// reported as not found.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Bookings.GetBookingByID(ctx, id, userID)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// CancelBooking handles DELETE /v1/bookings/:id.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Bookings.CancelBooking(ctx, id, userID); err != nil {
		return respondError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
