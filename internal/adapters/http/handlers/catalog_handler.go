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

// CatalogHandler handles book catalog endpoints
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// CreateBook adds a book to the catalog
// @Summary Create book
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBookInput true "Book data"
// @Success 201 {object} response.Response
// @Router /admin/library/books [post]
func (h *CatalogHandler) CreateBook(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateBookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	book, err := h.catalogService.CreateBook(c.Context(), &input, userID)
	if err != nil {
		return schoolAccessError(c, err, "Failed to create book")
	}

	return response.Created(c, "Book created successfully", fiber.Map{
		"book": book,
	})
}

// GetBook fetches a book with its copies
// @Summary Get book
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param school_id query int true "School ID"
// @Success 200 {object} response.Response
// @Router /admin/library/books/{id} [get]
func (h *CatalogHandler) GetBook(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	bookID, err := strconv.Atoi(c.Params("id"))
	if err != nil || bookID < 1 {
		return response.BadRequest(c, "Invalid book ID")
	}
	schoolID, err := strconv.Atoi(c.Query("school_id"))
	if err != nil || schoolID < 1 {
		return response.BadRequest(c, "school_id is required")
	}

	book, err := h.catalogService.GetBook(c.Context(), uint(schoolID), uint(bookID), userID)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return schoolAccessError(c, err, "Failed to get book")
	}

	return response.Success(c, "Book retrieved successfully", fiber.Map{
		"book": book,
	})
}

// ListBooks lists a school's catalog
// @Summary List books
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param school_id query int true "School ID"
// @Param search query string false "Title/author/ISBN search"
// @Success 200 {object} response.Response
// @Router /admin/library/books [get]
func (h *CatalogHandler) ListBooks(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	schoolID, err := strconv.Atoi(c.Query("school_id"))
	if err != nil || schoolID < 1 {
		return response.BadRequest(c, "school_id is required")
	}

	params := pagination.GetParams(c)
	books, total, err := h.catalogService.ListBooks(c.Context(), uint(schoolID), c.Query("search"), params.Offset, params.Limit, userID)
	if err != nil {
		return schoolAccessError(c, err, "Failed to list books")
	}

	return response.Success(c, "Books retrieved successfully", pagination.NewResponse(books, params, total))
}

// UpdateBook updates catalog fields
// @Summary Update book
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Router /admin/library/books/{id} [put]
func (h *CatalogHandler) UpdateBook(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	bookID, err := strconv.Atoi(c.Params("id"))
	if err != nil || bookID < 1 {
		return response.BadRequest(c, "Invalid book ID")
	}
	schoolID, err := strconv.Atoi(c.Query("school_id"))
	if err != nil || schoolID < 1 {
		return response.BadRequest(c, "school_id is required")
	}

	var input services.UpdateBookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.catalogService.UpdateBook(c.Context(), uint(schoolID), uint(bookID), &input, userID)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return schoolAccessError(c, err, "Failed to update book")
	}

	return response.Success(c, "Book updated successfully", fiber.Map{
		"book": book,
	})
}

// DeleteBook removes a book from the catalog
// @Summary Delete book
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Router /admin/library/books/{id} [delete]
func (h *CatalogHandler) DeleteBook(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	bookID, err := strconv.Atoi(c.Params("id"))
	if err != nil || bookID < 1 {
		return response.BadRequest(c, "Invalid book ID")
	}
	schoolID, err := strconv.Atoi(c.Query("school_id"))
	if err != nil || schoolID < 1 {
		return response.BadRequest(c, "school_id is required")
	}

	if err := h.catalogService.DeleteBook(c.Context(), uint(schoolID), uint(bookID), userID); err != nil {
		switch {
		case errors.Is(err, services.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, services.ErrBookHasCopies):
			return response.Conflict(c, "Book still has copies on loan")
		default:
			return schoolAccessError(c, err, "Failed to delete book")
		}
	}

	return response.Success(c, "Book deleted successfully", nil)
}

// AddCopy registers a new physical copy
// @Summary Add book copy
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 201 {object} response.Response
// @Router /admin/library/books/{id}/copies [post]
func (h *CatalogHandler) AddCopy(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	bookID, err := strconv.Atoi(c.Params("id"))
	if err != nil || bookID < 1 {
		return response.BadRequest(c, "Invalid book ID")
	}

	var req struct {
		SchoolID  uint   `json:"school_id"`
		Condition string `json:"condition"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.SchoolID == 0 {
		return response.BadRequest(c, "school_id is required")
	}

	copy, err := h.catalogService.AddCopy(c.Context(), req.SchoolID, uint(bookID), req.Condition, userID)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return schoolAccessError(c, err, "Failed to add copy")
	}

	return response.Created(c, "Copy added successfully", fiber.Map{
		"copy": copy,
	})
}

// MarkCopyDamaged takes a copy out of circulation
// @Summary Mark copy damaged
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Copy ID"
// @Success 200 {object} response.Response
// @Router /admin/library/copies/{id}/damaged [patch]
func (h *CatalogHandler) MarkCopyDamaged(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	copyID, err := strconv.Atoi(c.Params("id"))
	if err != nil || copyID < 1 {
		return response.BadRequest(c, "Invalid copy ID")
	}

	var req struct {
		SchoolID uint `json:"school_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.SchoolID == 0 {
		return response.BadRequest(c, "school_id is required")
	}

	if err := h.catalogService.MarkCopyDamaged(c.Context(), req.SchoolID, uint(copyID), userID); err != nil {
		switch {
		case errors.Is(err, services.ErrCopyNotFound):
			return response.NotFound(c, "Book copy not found")
		case errors.Is(err, services.ErrCopyOnLoan):
			return response.Conflict(c, "Copy is currently on loan")
		default:
			return schoolAccessError(c, err, "Failed to update copy")
		}
	}

	return response.Success(c, "Copy marked as damaged", nil)
}
