package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/travelconnec/backend/internal/http/dto"
	"github.com/travelconnec/backend/internal/middleware"
	"github.com/travelconnec/backend/internal/models"
	"github.com/travelconnec/backend/internal/repositories"
	"github.com/travelconnec/backend/internal/services"
	"go.uber.org/zap"
)

type BookingHandler struct {
	settlement  *services.SettlementService
	bookingRepo *repositories.BookingRepo
	log         *zap.Logger
}

func NewBookingHandler(settlement *services.SettlementService, bookingRepo *repositories.BookingRepo, log *zap.Logger) *BookingHandler {
	return &BookingHandler{settlement: settlement, bookingRepo: bookingRepo, log: log}
}

// settlementError maps the typed service errors onto HTTP statuses. Unknown
// errors become 500s without leaking detail.
func (h *BookingHandler) settlementError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrBookingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "booking not found"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "not allowed to perform this action"})
	case errors.Is(err, services.ErrBookingCannotCancel), errors.Is(err, services.ErrCheckInNotAllowed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	h.log.Error("settlement operation failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid booking id"})
	}

	details, err := h.bookingRepo.GetDetails(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "booking not found"})
	}

	userID := middleware.GetUserID(c)
	if details.GuestUserID != userID && details.HostUserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "not allowed to view this booking"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: details})
}

func (h *BookingHandler) ListBookings(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	filter := repositories.BookingFilter{
		Limit:  20,
		Offset: 0,
	}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}

	switch c.Query("role") {
	case "host":
		filter.HostUserID = &userID
	default:
		filter.GuestUserID = &userID
	}

	bookings, err := h.bookingRepo.List(c.Context(), filter)
	if err != nil {
		h.log.Error("list bookings failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: bookings})
}

func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid booking id"})
	}

	var req dto.CancelBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.CancelledBy != models.CancelledByGuest && req.CancelledBy != models.CancelledByHost {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "cancelled_by must be guest or host"})
	}

	result, err := h.settlement.CancelBooking(c.Context(), services.CancelBookingInput{
		BookingID:   bookingID,
		Reason:      req.Reason,
		CancelledBy: req.CancelledBy,
		ActorUserID: middleware.GetUserID(c),
	})
	if err != nil {
		return h.settlementError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: result.Success, Data: result})
}

// RefundPreview is the read-only calculation. An optional as_of query
// parameter (RFC 3339) lets clients preview a future cancellation.
func (h *BookingHandler) RefundPreview(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid booking id"})
	}

	var asOf time.Time
	if v := c.Query("as_of"); v != "" {
		asOf, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "as_of must be RFC 3339"})
		}
	}

	calc, err := h.settlement.CalculateRefund(c.Context(), bookingID, asOf)
	if err != nil {
		return h.settlementError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: calc})
}

func (h *BookingHandler) CompleteCheckIn(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid booking id"})
	}

	result, err := h.settlement.CompleteCheckIn(c.Context(), bookingID, middleware.GetUserID(c))
	if err != nil {
		return h.settlementError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: result.Available, Data: result})
}

func (h *BookingHandler) CheckInAvailability(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid booking id"})
	}

	availability, err := h.settlement.CheckInAvailability(c.Context(), bookingID)
	if err != nil {
		return h.settlementError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: availability})
}
