package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/adapters/persistence/repositories"
	"schoolhub/internal/core/domain"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidRole        = errors.New("invalid role")
)

// UserService handles identity provisioning and user management
type UserService struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

// CreateUserInput represents provisioning input
type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required,oneof=admin sub-admin teacher student"`
	SchoolID uint   `json:"school_id" validate:"required"`

	// Role-specific optional fields
	Subject       string `json:"subject"`
	Qualification string `json:"qualification"`
	Grade         string `json:"grade"`
	Section       string `json:"section"`
	AdmissionType string `json:"admission_type"`
}

// CreateUser provisions an identity, its profile, and the role record.
//
// The three inserts run sequentially, not in one transaction. When a
// dependent step fails, the records already created are removed
// best-effort so a half-provisioned identity does not linger; a
// cleanup failure is logged and the orphan accepted.
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput, hashedPassword string) (*models.Profile, error) {
	if !models.ValidRole(input.Role) {
		return nil, ErrInvalidRole
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	// 1. Identity record
	user := &models.User{
		Email:    input.Email,
		Password: hashedPassword,
		Role:     input.Role,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// 2. Profile (school affiliation)
	profile := &models.Profile{
		UserID:   user.ID,
		SchoolID: input.SchoolID,
		Role:     input.Role,
		Name:     input.Name,
		Phone:    input.Phone,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		s.compensate(ctx, user.ID, 0)
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	// 3. Role-specific record
	if err := s.createRoleRecord(ctx, profile, input); err != nil {
		s.compensate(ctx, user.ID, profile.ID)
		return nil, fmt.Errorf("failed to create %s record: %w", input.Role, err)
	}

	profile.User = user
	log.Printf("✅ Provisioned %s account %s (school %d)", input.Role, input.Email, input.SchoolID)
	return profile, nil
}

// createRoleRecord inserts the role record with per-role defaults
func (s *UserService) createRoleRecord(ctx context.Context, profile *models.Profile, input *CreateUserInput) error {
	switch input.Role {
	case models.RoleAdmin:
		return s.profileRepo.CreateAdmin(ctx, &models.Admin{
			ProfileID:          profile.ID,
			CanManageFinances:  true,
			CanManageSubAdmins: true,
		})
	case models.RoleSubAdmin:
		return s.profileRepo.CreateSubAdmin(ctx, &models.SubAdmin{
			ProfileID: profile.ID,
		})
	case models.RoleTeacher:
		return s.profileRepo.CreateTeacher(ctx, &models.Teacher{
			ProfileID:     profile.ID,
			EmployeeID:    generateCode("EMP"),
			Subject:       input.Subject,
			Qualification: input.Qualification,
			IsActive:      true,
		})
	case models.RoleStudent:
		admissionType := input.AdmissionType
		if admissionType == "" {
			admissionType = models.AdmissionTypeManual
		}
		return s.profileRepo.CreateStudent(ctx, &models.Student{
			ProfileID:     profile.ID,
			AdmissionNo:   generateCode("ADM"),
			AdmissionType: admissionType,
			Grade:         input.Grade,
			Section:       input.Section,
		})
	}
	return ErrInvalidRole
}

// compensate removes partially provisioned records, best-effort
func (s *UserService) compensate(ctx context.Context, userID, profileID uint) {
	if profileID != 0 {
		if err := s.profileRepo.Delete(ctx, profileID); err != nil {
			log.Printf("⚠️ Compensating delete of profile %d failed: %v", profileID, err)
		}
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		log.Printf("⚠️ Compensating delete of user %d failed: %v", userID, err)
	}
}

// ListInput represents listing input for teachers/students
type ListInput struct {
	SchoolID uint
	Search   string
	Page     int
	Limit    int
}

// ListTeachers lists a school's teachers with joined profile fields
func (s *UserService) ListTeachers(ctx context.Context, input *ListInput, actorUserID uint) ([]*models.TeacherResponse, int64, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, input.SchoolID); err != nil {
		return nil, 0, err
	}

	offset := (input.Page - 1) * input.Limit
	teachers, total, err := s.profileRepo.ListTeachers(ctx, input.SchoolID, input.Search, offset, input.Limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.TeacherResponse, len(teachers))
	for i, t := range teachers {
		responses[i] = t.ToResponse()
	}
	return responses, total, nil
}

// ListStudents lists a school's students with joined profile fields
func (s *UserService) ListStudents(ctx context.Context, input *ListInput, actorUserID uint) ([]*models.StudentResponse, int64, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, input.SchoolID); err != nil {
		return nil, 0, err
	}

	offset := (input.Page - 1) * input.Limit
	students, total, err := s.profileRepo.ListStudents(ctx, input.SchoolID, input.Search, offset, input.Limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.StudentResponse, len(students))
	for i, st := range students {
		responses[i] = st.ToResponse()
	}
	return responses, total, nil
}

// GetTeacher fetches a single teacher by profile ID
func (s *UserService) GetTeacher(ctx context.Context, profileID uint) (*models.Teacher, error) {
	teacher, err := s.profileRepo.GetTeacher(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return teacher, nil
}

// GetStudent fetches a single student by profile ID
func (s *UserService) GetStudent(ctx context.Context, profileID uint) (*models.Student, error) {
	student, err := s.profileRepo.GetStudent(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return student, nil
}

// GetProfile returns the profile owned by a user
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfileInput represents self-service profile update input
type UpdateProfileInput struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// UpdateProfile updates the caller's own contact fields. Role and
// school affiliation are immutable after provisioning.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	if input.Name != nil && *input.Name != "" {
		profile.Name = *input.Name
	}
	if input.Phone != nil {
		profile.Phone = *input.Phone
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SetUserActive toggles an identity's active flag
func (s *UserService) SetUserActive(ctx context.Context, userID uint, active bool) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	user.IsActive = active
	return s.userRepo.Update(ctx, user)
}
