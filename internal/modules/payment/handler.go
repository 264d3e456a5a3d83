package payment

import (
	"errors"
	"io"
	"net/http"

	"hostelcore/internal/domain"
	"hostelcore/internal/middleware"
	"hostelcore/internal/pkg/response"
	"hostelcore/internal/pkg/utils"
	"hostelcore/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	ledger      *Ledger
	coordinator *Coordinator
	loggerf     func(format string, args ...interface{})
}

func NewHandler(ledger *Ledger, coordinator *Coordinator, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{ledger: ledger, coordinator: coordinator, loggerf: loggerf}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments", middleware.StaffOnly(), h.OpenPayment)
	rg.GET("/payments/:id", middleware.StaffOnly(), h.GetPayment)
	rg.POST("/payments/:id/approve", middleware.WardenOnly(), h.Approve)
	rg.POST("/payments/:id/reject", middleware.WardenOnly(), h.Reject)
}

// OpenPayment handles POST /payments
func (h *Handler) OpenPayment(c *gin.Context) {
	var req OpenPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.loggerf("level=warn msg=\"invalid open payment payload\" err=%v", err)
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if err := validator.Struct(req); err != nil {
		response.FromError(c, err)
		return
	}

	origin, err := domain.NewOrigin(req.OriginType, req.OriginID)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	p, err := h.ledger.OpenPayment(c.Request.Context(), OpenRequest{
		Origin:  origin,
		Amount:  req.Amount,
		Method:  req.Method,
		Notes:   req.Notes,
		ActorID: utils.ActorID(c),
	})
	if err != nil {
		h.loggerf("level=warn msg=\"open payment failed\" origin=%s/%d err=%v", req.OriginType, req.OriginID, err)
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// GetPayment handles GET /payments/:id
func (h *Handler) GetPayment(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	p, err := h.ledger.GetPayment(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Approve handles POST /payments/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	p, err := h.coordinator.Approve(c.Request.Context(), id, utils.ActorID(c))
	if err != nil {
		h.loggerf("level=warn msg=\"approve payment failed\" payment_id=%d err=%v", id, err)
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// Reject handles POST /payments/:id/reject. The body is optional.
func (h *Handler) Reject(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.coordinator.Reject(c.Request.Context(), id, utils.ActorID(c), req.Reason)
	if err != nil {
		h.loggerf("level=warn msg=\"reject payment failed\" payment_id=%d err=%v", id, err)
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}
