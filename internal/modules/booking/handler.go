package booking

import (
	"errors"
	"net/http"
	"strings"

	"hostelcore/internal/domain"
	"hostelcore/internal/middleware"
	"hostelcore/internal/modules/guest"
	"hostelcore/internal/pkg/apperror"
	"hostelcore/internal/pkg/response"
	"hostelcore/internal/pkg/utils"
	"hostelcore/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.GET("/bookings/:id/history", middleware.StaffOnly(), h.History)
	rg.GET("/rooms/:id/bookings", middleware.StaffOnly(), h.ListRoomBookings)
	rg.PUT("/bookings/:id/status", middleware.StaffOnly(), h.UpdateStatus)
	rg.DELETE("/bookings/:id", middleware.StaffOnly(), h.DeleteBooking)
}

// CreateBooking handles POST /bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.loggerf("level=warn msg=\"invalid booking payload\" err=%v", err)
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := validator.Struct(req); err != nil {
		response.FromError(c, err)
		return
	}
	if msg := guestRestriction(c, req); msg != "" {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", msg)
		return
	}

	checkin, err := utils.ParseOptionalDate("checkin", req.Checkin)
	if err != nil {
		response.FromError(c, err)
		return
	}
	checkout, err := utils.ParseOptionalDate("checkout", req.Checkout)
	if err != nil {
		response.FromError(c, err)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), CreateRequest{
		RoomID:        req.RoomID,
		Guest:         guest.Ref{ID: req.GuestID, New: req.NewGuest},
		Checkin:       checkin,
		Checkout:      checkout,
		BookingType:   req.BookingType,
		Price:         req.Price,
		Notes:         req.Notes,
		PaymentMethod: req.PaymentMethod,
		Confirm:       req.Confirm,
		ActorID:       utils.ActorID(c),
	})
	if err != nil {
		h.loggerf("level=warn msg=\"create booking failed\" room_id=%d err=%v", req.RoomID, err)
		if errors.Is(err, apperror.ErrConflict) {
			response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", apperror.Message(err))
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

// guestRestriction limits a GUEST caller to a plain booking for themselves.
// It returns the refusal message, or "" when the request may proceed.
func guestRestriction(c *gin.Context, req CreateBookingRequest) string {
	if middleware.IsStaff(c) {
		return ""
	}
	switch {
	case req.NewGuest != nil:
		return "Access denied: guests cannot register other guests"
	case req.GuestID != utils.ActorID(c):
		return "Access denied: guests can only book for themselves"
	case req.Price != nil:
		return "Access denied: price override requires staff"
	case req.Confirm:
		return "Access denied: confirmation requires staff"
	}
	return ""
}

// GetBooking handles GET /bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if !middleware.IsStaff(c) && b.GuestID != utils.ActorID(c) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: booking belongs to another guest")
		return
	}
	response.Success(c, http.StatusOK, b)
}

// History handles GET /bookings/:id/history
func (h *Handler) History(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	entries, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entries": entries})
}

// ListRoomBookings handles GET /rooms/:id/bookings?status=CONFIRMED,CHECKED_IN
func (h *Handler) ListRoomBookings(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	var statuses []domain.BookingStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st, err := domain.ParseBookingStatus(strings.ToUpper(strings.TrimSpace(part)))
			if err != nil {
				response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
				return
			}
			statuses = append(statuses, st)
		}
	}

	bookings, err := h.service.ListRoomBookings(c.Request.Context(), id, statuses)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

// UpdateStatus handles PUT /bookings/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := validator.Struct(req); err != nil {
		response.FromError(c, err)
		return
	}

	b, err := h.service.TransitionStatus(c.Request.Context(), id, req.Status, utils.ActorID(c))
	if err != nil {
		h.loggerf("level=warn msg=\"booking transition failed\" booking_id=%d target=%s err=%v", id, req.Status, err)
		if errors.Is(err, apperror.ErrConflict) {
			response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", apperror.Message(err))
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// DeleteBooking handles DELETE /bookings/:id
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.service.DeleteBooking(c.Request.Context(), id, utils.ActorID(c)); err != nil {
		h.loggerf("level=warn msg=\"delete booking failed\" booking_id=%d err=%v", id, err)
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
