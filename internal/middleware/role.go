package middleware

import (
	"net/http"

	"hostelcore/internal/domain"
	"hostelcore/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the token carries one of roles.
func RequireRole(roles ...domain.GuestRole) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}

	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}
		if !allowed[role] {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

func StaffOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleStaff, domain.RoleWarden)
}

func WardenOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleWarden)
}

// IsStaffRole reports whether role may act on other guests' records.
func IsStaffRole(role string) bool {
	return role == string(domain.RoleStaff) || role == string(domain.RoleWarden)
}

// IsStaff reports whether the authenticated caller is STAFF or WARDEN.
func IsStaff(c *gin.Context) bool {
	return IsStaffRole(c.GetString("role"))
}
