package handlers

import (
	"errors"
	"strconv"

	"schoolhub/internal/core/services"
	"schoolhub/internal/pkg/pagination"
	"schoolhub/internal/pkg/response"
	"schoolhub/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// AdmissionHandler handles admission application endpoints
type AdmissionHandler struct {
	admissionService *services.AdmissionService
}

// NewAdmissionHandler creates a new admission handler
func NewAdmissionHandler(admissionService *services.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{
		admissionService: admissionService,
	}
}

// Apply submits a public admission application
// @Summary Apply for admission
// @Description Submit an admission application (no authentication required)
// @Tags Admissions
// @Accept json
// @Produce json
// @Param body body services.ApplyInput true "Application data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admissions/apply [post]
func (h *AdmissionHandler) Apply(c *fiber.Ctx) error {
	var input services.ApplyInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	app, err := h.admissionService.Apply(c.Context(), &input)
	if err != nil {
		return response.InternalServerError(c, "Failed to submit application")
	}

	return response.Created(c, "Application submitted successfully", fiber.Map{
		"application": app,
	})
}

// ListApplications lists a school's applications
// @Summary List applications
// @Tags Admissions
// @Produce json
// @Security BearerAuth
// @Param school_id query int true "School ID"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Response
// @Router /admin/admissions [get]
func (h *AdmissionHandler) ListApplications(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	schoolID, err := strconv.Atoi(c.Query("school_id"))
	if err != nil || schoolID < 1 {
		return response.BadRequest(c, "school_id is required")
	}

	params := pagination.GetParams(c)
	apps, total, err := h.admissionService.ListApplications(c.Context(), uint(schoolID), c.Query("status"), params.Offset, params.Limit, userID)
	if err != nil {
		return schoolAccessError(c, err, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully", pagination.NewResponse(apps, params, total))
}

// decisionRequest is the shared body for approve/reject
type decisionRequest struct {
	SchoolID uint   `json:"school_id"`
	Remark   string `json:"remark"`
}

// Approve approves an application and provisions the student
// @Summary Approve application
// @Description Approve a pending application and provision a student account
// @Tags Admissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/admissions/{id}/approve [post]
func (h *AdmissionHandler) Approve(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	appID, err := strconv.Atoi(c.Params("id"))
	if err != nil || appID < 1 {
		return response.BadRequest(c, "Invalid application ID")
	}

	var req decisionRequest
	if err := c.BodyParser(&req); err != nil || req.SchoolID == 0 {
		return response.BadRequest(c, "school_id is required")
	}

	app, err := h.admissionService.Approve(c.Context(), req.SchoolID, uint(appID), userID, req.Remark)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, services.ErrApplicationDecided):
			return response.Conflict(c, "Application already decided")
		case errors.Is(err, services.ErrEmailAlreadyExists):
			return response.Conflict(c, "An account with this email already exists")
		default:
			return schoolAccessError(c, err, "Failed to approve application")
		}
	}

	return response.Success(c, "Application approved successfully", fiber.Map{
		"application": app,
	})
}

// Reject rejects an application
// @Summary Reject application
// @Tags Admissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/admissions/{id}/reject [post]
func (h *AdmissionHandler) Reject(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	appID, err := strconv.Atoi(c.Params("id"))
	if err != nil || appID < 1 {
		return response.BadRequest(c, "Invalid application ID")
	}

	var req decisionRequest
	if err := c.BodyParser(&req); err != nil || req.SchoolID == 0 {
		return response.BadRequest(c, "school_id is required")
	}

	app, err := h.admissionService.Reject(c.Context(), req.SchoolID, uint(appID), userID, req.Remark)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, services.ErrApplicationDecided):
			return response.Conflict(c, "Application already decided")
		default:
			return schoolAccessError(c, err, "Failed to reject application")
		}
	}

	return response.Success(c, "Application rejected", fiber.Map{
		"application": app,
	})
}
