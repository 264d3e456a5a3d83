package roomstatus

import (
	"net/http"

	"hostelcore/internal/domain"
	"hostelcore/internal/middleware"
	"hostelcore/internal/pkg/response"
	"hostelcore/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	sync *Synchronizer
}

func NewHandler(sync *Synchronizer) *Handler {
	return &Handler{sync: sync}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/rooms/sync-status", middleware.StaffOnly(), h.SyncAll)
	rg.PUT("/rooms/:id/status", middleware.WardenOnly(), h.SetStatus)
}

type SetStatusRequest struct {
	Status domain.RoomStatus `json:"status" binding:"required"`
}

// SyncAll handles POST /rooms/sync-status
func (h *Handler) SyncAll(c *gin.Context) {
	res, err := h.sync.ResyncAll(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// SetStatus handles PUT /rooms/:id/status
func (h *Handler) SetStatus(c *gin.Context) {
	roomID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	room, err := h.sync.SetManualStatus(c.Request.Context(), roomID, req.Status, utils.ActorID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, room)
}
