package availability

import (
	"net/http"

	"hostelcore/internal/pkg/response"
	"hostelcore/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rooms/:id/availability", h.GetAvailability)
}

// GetAvailability handles GET /rooms/:id/availability?checkin=YYYY-MM-DD&checkout=YYYY-MM-DD
func (h *Handler) GetAvailability(c *gin.Context) {
	roomID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	checkin, err := utils.ParseDate("checkin", c.Query("checkin"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	checkout, err := utils.ParseDate("checkout", c.Query("checkout"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	avail, err := h.service.CheckAvailability(c.Request.Context(), roomID, checkin, checkout)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, avail)
}
