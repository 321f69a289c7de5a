package handlers

import (
	"strconv"

	"schoolhub/internal/core/services"
	"schoolhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetAdminDashboard returns admin dashboard data
// @Summary Admin Dashboard
// @Description Get a school's overview statistics (Admin/Sub-admin only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param school_id query int true "School ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /admin/dashboard [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	schoolID, err := strconv.Atoi(c.Query("school_id"))
	if err != nil || schoolID < 1 {
		return response.BadRequest(c, "school_id is required")
	}

	data, err := h.dashboardService.GetAdminDashboard(c.Context(), uint(schoolID), userID)
	if err != nil {
		return schoolAccessError(c, err, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
