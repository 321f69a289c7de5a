package handlers

import (
	"errors"
	"strconv"

	"schoolhub/internal/core/domain"
	"schoolhub/internal/core/services"
	"schoolhub/internal/pkg/pagination"
	"schoolhub/internal/pkg/response"
	"schoolhub/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// FeeHandler handles fee payment endpoints
type FeeHandler struct {
	feeService *services.FeeService
}

// NewFeeHandler creates a new fee handler
func NewFeeHandler(feeService *services.FeeService) *FeeHandler {
	return &FeeHandler{
		feeService: feeService,
	}
}

// RecordPayment records a pending fee payment
// @Summary Record payment
// @Description Record a pending fee payment for a student
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RecordPaymentInput true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/fees/payments [post]
func (h *FeeHandler) RecordPayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.RecordPaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	payment, err := h.feeService.RecordPayment(c.Context(), &input, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, domain.ErrSchoolMismatch):
			return response.Forbidden(c, "Student does not belong to this school")
		case errors.Is(err, domain.ErrProfileNotFound):
			return response.Forbidden(c, "Caller has no profile")
		default:
			return response.InternalServerError(c, "Failed to record payment")
		}
	}

	return response.Created(c, "Payment recorded successfully", fiber.Map{
		"payment": payment.ToResponse(),
	})
}

// VerifyPayment marks a pending payment as paid
// @Summary Verify payment
// @Description Mark a pending payment as paid, stamping the verifier
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/fees/payments/{id}/verify [post]
func (h *FeeHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	paymentID, err := strconv.Atoi(c.Params("id"))
	if err != nil || paymentID < 1 {
		return response.BadRequest(c, "Invalid payment ID")
	}

	var req struct {
		SchoolID uint `json:"school_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.SchoolID == 0 {
		return response.BadRequest(c, "school_id is required")
	}

	payment, err := h.feeService.VerifyPayment(c.Context(), req.SchoolID, uint(paymentID), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return response.NotFound(c, "Payment not found")
		case errors.Is(err, services.ErrPaymentAlreadyPaid):
			return response.Conflict(c, "Payment already verified")
		default:
			return schoolAccessError(c, err, "Failed to verify payment")
		}
	}

	return response.Success(c, "Payment verified successfully", fiber.Map{
		"payment": payment.ToResponse(),
	})
}

// ListPayments lists a school's payments
// @Summary List payments
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param school_id query int true "School ID"
// @Param status query string false "Status filter (pending/paid)"
// @Success 200 {object} response.Response
// @Router /admin/fees/payments [get]
func (h *FeeHandler) ListPayments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	schoolID, err := strconv.Atoi(c.Query("school_id"))
	if err != nil || schoolID < 1 {
		return response.BadRequest(c, "school_id is required")
	}

	params := pagination.GetParams(c)
	payments, total, err := h.feeService.ListPayments(c.Context(), uint(schoolID), c.Query("status"), params.Offset, params.Limit, userID)
	if err != nil {
		return schoolAccessError(c, err, "Failed to list payments")
	}

	return response.Success(c, "Payments retrieved successfully", pagination.NewResponse(payments, params, total))
}
