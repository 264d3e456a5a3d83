package notify

import (
	"log"
	"net/http"

	"hostelcore/internal/middleware"
	"hostelcore/internal/pkg/jwt"
	"hostelcore/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	hub *Hub
	jwt *jwt.Service
}

func NewHandler(hub *Hub, jwtSvc *jwt.Service) *Handler {
	return &Handler{hub: hub, jwt: jwtSvc}
}

// RegisterRoutes mounts the event stream. Browsers cannot set headers on a
// websocket handshake, so the token travels in the query string.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/events", h.Stream)
}

func (h *Handler) Stream(c *gin.Context) {
	claims, err := h.jwt.ValidateToken(c.Query("token"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
		return
	}
	if !middleware.IsStaffRole(claims.Role) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, claims.UserID); err != nil {
		log.Printf("level=warn msg=\"websocket upgrade failed\" user_id=%d err=%v", claims.UserID, err)
	}
}
