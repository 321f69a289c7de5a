package handlers

import (
	"errors"
	"strconv"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/core/domain"
	"schoolhub/internal/core/services"
	"schoolhub/internal/pkg/pagination"
	"schoolhub/internal/pkg/password"
	"schoolhub/internal/pkg/response"
	"schoolhub/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles provisioning and people management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateUser provisions a new account (Admin only)
// @Summary Create user
// @Description Provision an identity, profile and role record
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	profile, err := h.userService.CreateUser(c.Context(), &input, hashed)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Invalid role")
		case errors.Is(err, services.ErrEmailAlreadyExists):
			return response.Conflict(c, "Email already exists")
		default:
			// Dependent-step failure: compensated, account not created
			return response.BadRequest(c, "Provisioning failed: "+err.Error())
		}
	}

	return response.Created(c, "User created successfully", fiber.Map{
		"profile": profile.ToResponse(),
	})
}

// CreateTeacher provisions a teacher account (Admin only)
// @Summary Create teacher
// @Description Provision a teacher identity, profile and teacher record
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "Teacher data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/teachers [post]
func (h *UserHandler) CreateTeacher(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.Role = models.RoleTeacher

	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	profile, err := h.userService.CreateUser(c.Context(), &input, hashed)
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyExists) {
			return response.Conflict(c, "Email already exists")
		}
		return response.BadRequest(c, "Provisioning failed: "+err.Error())
	}

	return response.Created(c, "Teacher created successfully", fiber.Map{
		"profile": profile.ToResponse(),
	})
}

// ListTeachers lists a school's teachers
// @Summary List teachers
// @Description Get a paginated list of a school's teachers
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param school_id query int true "School ID"
// @Param search query string false "Name search"
// @Success 200 {object} response.Response
// @Router /admin/teachers [get]
func (h *UserHandler) ListTeachers(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	schoolID, err := strconv.Atoi(c.Query("school_id"))
	if err != nil || schoolID < 1 {
		return response.BadRequest(c, "school_id is required")
	}

	params := pagination.GetParams(c)
	input := &services.ListInput{
		SchoolID: uint(schoolID),
		Search:   c.Query("search"),
		Page:     params.Page,
		Limit:    params.Limit,
	}

	teachers, total, err := h.userService.ListTeachers(c.Context(), input, userID)
	if err != nil {
		return schoolAccessError(c, err, "Failed to list teachers")
	}

	return response.Success(c, "Teachers retrieved successfully", pagination.NewResponse(teachers, params, total))
}

// GetTeacher fetches one teacher by profile ID
// @Summary Get teacher
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Profile ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/teachers/{id} [get]
func (h *UserHandler) GetTeacher(c *fiber.Ctx) error {
	profileID, err := strconv.Atoi(c.Params("id"))
	if err != nil || profileID < 1 {
		return response.BadRequest(c, "Invalid teacher ID")
	}

	teacher, err := h.userService.GetTeacher(c.Context(), uint(profileID))
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to load teacher")
	}

	return response.Success(c, "Teacher retrieved successfully", fiber.Map{
		"teacher": teacher.ToResponse(),
	})
}

// ListStudents lists a school's students
// @Summary List students
// @Description Get a paginated list of a school's students
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param school_id query int true "School ID"
// @Param search query string false "Name search"
// @Success 200 {object} response.Response
// @Router /admin/students [get]
func (h *UserHandler) ListStudents(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	schoolID, err := strconv.Atoi(c.Query("school_id"))
	if err != nil || schoolID < 1 {
		return response.BadRequest(c, "school_id is required")
	}

	params := pagination.GetParams(c)
	input := &services.ListInput{
		SchoolID: uint(schoolID),
		Search:   c.Query("search"),
		Page:     params.Page,
		Limit:    params.Limit,
	}

	students, total, err := h.userService.ListStudents(c.Context(), input, userID)
	if err != nil {
		return schoolAccessError(c, err, "Failed to list students")
	}

	return response.Success(c, "Students retrieved successfully", pagination.NewResponse(students, params, total))
}

// UpdateProfile updates the caller's own contact fields
// @Summary Update own profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	profile, err := h.userService.UpdateProfile(c.Context(), userID, &input)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return response.NotFound(c, "Profile not found")
		}
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, "Profile updated successfully", fiber.Map{
		"profile": profile.ToResponse(),
	})
}

// SetUserActive toggles an account's active flag (Admin only)
// @Summary Activate or deactivate a user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Router /admin/users/{id}/active [patch]
func (h *UserHandler) SetUserActive(c *fiber.Ctx) error {
	targetID, err := strconv.Atoi(c.Params("id"))
	if err != nil || targetID < 1 {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return response.BadRequest(c, "active flag is required")
	}

	if err := h.userService.SetUserActive(c.Context(), uint(targetID), *req.Active); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update user")
	}

	return response.Success(c, "User updated successfully", nil)
}

// schoolAccessError maps the shared school-access errors, falling back
// to a 500 with the given message
func schoolAccessError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return response.Forbidden(c, "Caller has no profile")
	case errors.Is(err, domain.ErrSchoolMismatch):
		return response.Forbidden(c, "Profile does not belong to this school")
	default:
		return response.InternalServerError(c, fallback)
	}
}
