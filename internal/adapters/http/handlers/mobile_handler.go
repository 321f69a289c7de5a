package handlers

import (
	"errors"

	"schoolhub/internal/core/services"
	"schoolhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MobileHandler serves the lightweight student-facing endpoints used
// by the mobile client. All routes derive identity from the token; no
// IDs are accepted from the client.
type MobileHandler struct {
	dashboardService *services.DashboardService
	libraryService   *services.LibraryService
	feeService       *services.FeeService
}

// NewMobileHandler creates a new mobile handler
func NewMobileHandler(
	dashboardService *services.DashboardService,
	libraryService *services.LibraryService,
	feeService *services.FeeService,
) *MobileHandler {
	return &MobileHandler{
		dashboardService: dashboardService,
		libraryService:   libraryService,
		feeService:       feeService,
	}
}

// GetDashboard returns the caller's own dashboard
// @Summary Student dashboard
// @Tags Mobile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /mobile/dashboard [get]
func (h *MobileHandler) GetDashboard(c *fiber.Ctx) error {
	profileID, ok := c.Locals("profileID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.GetStudentDashboard(c.Context(), profileID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}

// GetMyLoans returns the caller's borrowing history
// @Summary My loans
// @Tags Mobile
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter (active/returned)"
// @Success 200 {object} response.Response
// @Router /mobile/my-loans [get]
func (h *MobileHandler) GetMyLoans(c *fiber.Ctx) error {
	profileID, ok := c.Locals("profileID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	member, err := h.libraryService.GetMemberByProfile(c.Context(), profileID)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			// Not a library member yet, nothing borrowed
			return response.Success(c, "Loans retrieved successfully", fiber.Map{
				"loans": []interface{}{},
			})
		}
		return response.InternalServerError(c, "Failed to load loans")
	}

	loans, err := h.libraryService.ListMemberLoans(c.Context(), member.ID, c.Query("status"))
	if err != nil {
		return response.InternalServerError(c, "Failed to load loans")
	}

	responses := make([]interface{}, len(loans))
	for i, l := range loans {
		responses[i] = l.ToResponse()
	}

	return response.Success(c, "Loans retrieved successfully", fiber.Map{
		"loans":         responses,
		"current_fines": member.CurrentFines,
	})
}

// GetMyFines returns the caller's library fines
// @Summary My fines
// @Tags Mobile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /mobile/my-fines [get]
func (h *MobileHandler) GetMyFines(c *fiber.Ctx) error {
	profileID, ok := c.Locals("profileID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	member, err := h.libraryService.GetMemberByProfile(c.Context(), profileID)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return response.Success(c, "Fines retrieved successfully", fiber.Map{
				"fines": []interface{}{},
				"total": 0.0,
			})
		}
		return response.InternalServerError(c, "Failed to load fines")
	}

	fines, err := h.libraryService.ListMemberFines(c.Context(), member.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load fines")
	}

	return response.Success(c, "Fines retrieved successfully", fiber.Map{
		"fines": fines,
		"total": member.CurrentFines,
	})
}

// GetMyFees returns the caller's fee payment history
// @Summary My fees
// @Tags Mobile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /mobile/my-fees [get]
func (h *MobileHandler) GetMyFees(c *fiber.Ctx) error {
	profileID, ok := c.Locals("profileID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	payments, err := h.feeService.ListStudentPayments(c.Context(), profileID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load payments")
	}

	return response.Success(c, "Payments retrieved successfully", fiber.Map{
		"payments": payments,
	})
}
