package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/adapters/persistence/repositories"
	"schoolhub/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admission errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationDecided  = errors.New("application already decided")
)

// AdmissionService handles online admission applications
type AdmissionService struct {
	admissionRepo *repositories.AdmissionRepository
	profileRepo   repositories.ProfileRepository
	userService   *UserService
	notifier      *NotificationService
	now           func() time.Time
}

// NewAdmissionService creates a new admission service
func NewAdmissionService(
	admissionRepo *repositories.AdmissionRepository,
	profileRepo repositories.ProfileRepository,
	userService *UserService,
	notifier *NotificationService,
) *AdmissionService {
	return &AdmissionService{
		admissionRepo: admissionRepo,
		profileRepo:   profileRepo,
		userService:   userService,
		notifier:      notifier,
		now:           time.Now,
	}
}

// ApplyInput represents a public admission application
type ApplyInput struct {
	SchoolID      uint   `json:"school_id" validate:"required"`
	ApplicantName string `json:"applicant_name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone"`
	Grade         string `json:"grade" validate:"required"`
	GuardianName  string `json:"guardian_name"`
}

// Apply submits a new admission application (unauthenticated)
func (s *AdmissionService) Apply(ctx context.Context, input *ApplyInput) (*models.AdmissionApplication, error) {
	app := &models.AdmissionApplication{
		SchoolID:      input.SchoolID,
		ApplicantName: input.ApplicantName,
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:         input.Phone,
		Grade:         input.Grade,
		GuardianName:  input.GuardianName,
		Status:        models.ApplicationPending,
	}

	if err := s.admissionRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	log.Printf("✅ Admission application %d submitted for school %d", app.ID, app.SchoolID)
	return app, nil
}

// ListApplications lists a school's applications with optional status filter
func (s *AdmissionService) ListApplications(ctx context.Context, schoolID uint, status string, offset, limit int, actorUserID uint) ([]*models.AdmissionApplication, int64, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID); err != nil {
		return nil, 0, err
	}
	return s.admissionRepo.List(ctx, schoolID, status, offset, limit)
}

// Approve approves a pending application and provisions a student
// account with a temporary password. The application is only marked
// approved after provisioning succeeds, so a failed provisioning
// leaves it pending and retryable.
func (s *AdmissionService) Approve(ctx context.Context, schoolID, applicationID, actorUserID uint, remark string) (*models.AdmissionApplication, error) {
	actor, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID)
	if err != nil {
		return nil, err
	}

	app, err := s.admissionRepo.GetByID(ctx, schoolID, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if app.Status != models.ApplicationPending {
		return nil, ErrApplicationDecided
	}

	tempPassword := uuid.New().String()[:12]
	hashed, err := password.Hash(tempPassword)
	if err != nil {
		return nil, err
	}

	_, err = s.userService.CreateUser(ctx, &CreateUserInput{
		Email:         app.Email,
		Name:          app.ApplicantName,
		Phone:         app.Phone,
		Role:          models.RoleStudent,
		SchoolID:      app.SchoolID,
		Grade:         app.Grade,
		AdmissionType: models.AdmissionTypeOnline,
	}, hashed)
	if err != nil {
		return nil, err
	}

	reviewedAt := s.now()
	app.Status = models.ApplicationApproved
	app.Remark = remark
	app.ReviewedBy = &actor.ID
	app.ReviewedAt = &reviewedAt

	if err := s.admissionRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	s.notifier.SendWelcomeEmail(ctx, app.Email, app.ApplicantName, tempPassword)

	log.Printf("✅ Application %d approved, student account provisioned for %s", app.ID, app.Email)
	return app, nil
}

// Reject rejects a pending application with a remark
func (s *AdmissionService) Reject(ctx context.Context, schoolID, applicationID, actorUserID uint, remark string) (*models.AdmissionApplication, error) {
	actor, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID)
	if err != nil {
		return nil, err
	}

	app, err := s.admissionRepo.GetByID(ctx, schoolID, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	if app.Status != models.ApplicationPending {
		return nil, ErrApplicationDecided
	}

	reviewedAt := s.now()
	app.Status = models.ApplicationRejected
	app.Remark = remark
	app.ReviewedBy = &actor.ID
	app.ReviewedAt = &reviewedAt

	if err := s.admissionRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	s.notifier.SendAdmissionRejected(ctx, app.Email, app.ApplicantName, remark)

	log.Printf("🛑 Application %d rejected", app.ID)
	return app, nil
}
