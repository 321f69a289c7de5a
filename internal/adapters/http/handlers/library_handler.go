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

// LibraryHandler handles library membership and circulation endpoints
type LibraryHandler struct {
	libraryService *services.LibraryService
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(libraryService *services.LibraryService) *LibraryHandler {
	return &LibraryHandler{
		libraryService: libraryService,
	}
}

// CreateMember enrolls a profile as a library member
// @Summary Create library member
// @Description Enroll a profile as a library member with per-type borrowing defaults
// @Tags Library
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateMemberInput true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/library/members [post]
func (h *LibraryHandler) CreateMember(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateMemberInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	member, err := h.libraryService.CreateMember(c.Context(), &input, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProfileNotFound):
			return response.NotFound(c, "Profile not found")
		case errors.Is(err, domain.ErrSchoolMismatch):
			return response.Forbidden(c, "Profile does not belong to this school")
		case errors.Is(err, services.ErrAlreadyMember):
			return response.Conflict(c, "Profile is already a library member")
		default:
			return response.InternalServerError(c, "Failed to create member")
		}
	}

	return response.Created(c, "Member created successfully", fiber.Map{
		"member": member.ToResponse(),
	})
}

// ListMembers lists a school's library members
// @Summary List library members
// @Tags Library
// @Produce json
// @Security BearerAuth
// @Param school_id query int true "School ID"
// @Param search query string false "Name search"
// @Param member_type query string false "Member type filter"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Response
// @Router /admin/library/members [get]
func (h *LibraryHandler) ListMembers(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	schoolID, err := strconv.Atoi(c.Query("school_id"))
	if err != nil || schoolID < 1 {
		return response.BadRequest(c, "school_id is required")
	}

	params := pagination.GetParams(c)
	input := &services.ListMembersInput{
		SchoolID:   uint(schoolID),
		Search:     c.Query("search"),
		MemberType: c.Query("member_type"),
		Status:     c.Query("status"),
		Page:       params.Page,
		Limit:      params.Limit,
	}

	members, total, err := h.libraryService.ListMembers(c.Context(), input, userID)
	if err != nil {
		return schoolAccessError(c, err, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully", pagination.NewResponse(members, params, total))
}

// Checkout lends a book copy to a member
// @Summary Checkout book
// @Description Lend an available copy to an active member by card number and barcode
// @Tags Library
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CheckoutInput true "Checkout data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/library/transactions/checkout [post]
func (h *LibraryHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CheckoutInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	tx, err := h.libraryService.Checkout(c.Context(), &input, userID)
	if err != nil {
		var limitErr *services.BorrowLimitError
		switch {
		case errors.Is(err, domain.ErrProfileNotFound), errors.Is(err, domain.ErrSchoolMismatch):
			return schoolAccessError(c, err, "Failed to checkout")
		case errors.Is(err, services.ErrMemberNotFound):
			return response.NotFound(c, "Library member not found")
		case errors.Is(err, services.ErrMemberInactive):
			return response.BadRequest(c, "Library member is not active")
		case errors.Is(err, services.ErrCopyNotFound):
			return response.NotFound(c, "Book copy not found")
		case errors.Is(err, services.ErrCopyNotAvailable):
			return response.Conflict(c, "Book copy is not available")
		case errors.Is(err, services.ErrReferenceOnly):
			return response.BadRequest(c, "Reference-only books cannot be checked out")
		case errors.As(err, &limitErr):
			return response.BadRequest(c, limitErr.Error())
		case errors.Is(err, services.ErrUnpaidFines):
			return response.BadRequest(c, "Member has unpaid fines")
		default:
			return response.InternalServerError(c, "Failed to checkout")
		}
	}

	return response.Created(c, "Book checked out successfully", fiber.Map{
		"transaction": tx.ToResponse(),
	})
}

// Return closes an active loan
// @Summary Return book
// @Description Close an active loan, assess overdue fine, update copy status
// @Tags Library
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param body body services.ReturnInput true "Return data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/library/transactions/{id}/return [post]
func (h *LibraryHandler) Return(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	txID, err := strconv.Atoi(c.Params("id"))
	if err != nil || txID < 1 {
		return response.BadRequest(c, "Invalid transaction ID")
	}

	var input services.ReturnInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.TransactionID = uint(txID)
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	tx, fine, err := h.libraryService.Return(c.Context(), &input, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProfileNotFound), errors.Is(err, domain.ErrSchoolMismatch):
			return schoolAccessError(c, err, "Failed to return book")
		case errors.Is(err, services.ErrTransactionNotFound):
			return response.NotFound(c, "Borrowing transaction not found")
		case errors.Is(err, services.ErrAlreadyReturned):
			return response.Conflict(c, "Transaction is not active")
		default:
			return response.InternalServerError(c, "Failed to return book")
		}
	}

	return response.Success(c, "Book returned successfully", fiber.Map{
		"transaction": tx.ToResponse(),
		"fine":        fine,
	})
}

// ListTransactions lists a school's borrowing transactions
// @Summary List borrowing transactions
// @Tags Library
// @Produce json
// @Security BearerAuth
// @Param school_id query int true "School ID"
// @Param status query string false "Status filter (active/returned)"
// @Success 200 {object} response.Response
// @Router /admin/library/transactions [get]
func (h *LibraryHandler) ListTransactions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	schoolID, err := strconv.Atoi(c.Query("school_id"))
	if err != nil || schoolID < 1 {
		return response.BadRequest(c, "school_id is required")
	}

	params := pagination.GetParams(c)
	input := &services.ListTransactionsInput{
		SchoolID: uint(schoolID),
		Status:   c.Query("status"),
		Page:     params.Page,
		Limit:    params.Limit,
	}

	txs, total, err := h.libraryService.ListTransactions(c.Context(), input, userID)
	if err != nil {
		return schoolAccessError(c, err, "Failed to list transactions")
	}

	return response.Success(c, "Transactions retrieved successfully", pagination.NewResponse(txs, params, total))
}
