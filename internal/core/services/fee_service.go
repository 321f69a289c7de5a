package services

import (
	"context"
	"errors"
	"log"
	"time"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/adapters/persistence/repositories"
	"schoolhub/internal/core/domain"

	"gorm.io/gorm"
)

// Fee errors
var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrPaymentAlreadyPaid = errors.New("payment already verified")
	ErrStudentNotFound    = errors.New("student not found")
)

// FeeService handles fee payment business logic
type FeeService struct {
	paymentRepo *repositories.FeePaymentRepository
	profileRepo repositories.ProfileRepository
	notifier    *NotificationService
	now         func() time.Time
}

// NewFeeService creates a new fee service
func NewFeeService(
	paymentRepo *repositories.FeePaymentRepository,
	profileRepo repositories.ProfileRepository,
	notifier *NotificationService,
) *FeeService {
	return &FeeService{
		paymentRepo: paymentRepo,
		profileRepo: profileRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

// RecordPaymentInput represents payment recording input
type RecordPaymentInput struct {
	SchoolID    uint    `json:"school_id" validate:"required"`
	StudentID   uint    `json:"student_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Method      string  `json:"method" validate:"required,oneof=cash card bank_transfer online"`
	ReferenceNo string  `json:"reference_no"`
	Description string  `json:"description"`
}

// RecordPayment records a pending fee payment for a student
func (s *FeeService) RecordPayment(ctx context.Context, input *RecordPaymentInput, actorUserID uint) (*models.FeePayment, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, input.SchoolID); err != nil {
		return nil, err
	}

	// Student must exist and belong to the same school
	student, err := s.profileRepo.GetStudent(ctx, input.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.Profile != nil && student.Profile.SchoolID != input.SchoolID {
		return nil, domain.ErrSchoolMismatch
	}

	payment := &models.FeePayment{
		SchoolID:    input.SchoolID,
		StudentID:   input.StudentID,
		Amount:      input.Amount,
		Method:      input.Method,
		ReferenceNo: input.ReferenceNo,
		Description: input.Description,
		Status:      models.PaymentPending,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	log.Printf("✅ Payment recorded: %.2f for student %d (school %d)", input.Amount, input.StudentID, input.SchoolID)
	return payment, nil
}

// VerifyPayment marks a pending payment as paid, stamping the verifier.
// Verifying an already-paid payment is a conflict, not a no-op.
func (s *FeeService) VerifyPayment(ctx context.Context, schoolID, paymentID, actorUserID uint) (*models.FeePayment, error) {
	actor, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID)
	if err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.GetByID(ctx, schoolID, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.Status == models.PaymentPaid {
		return nil, ErrPaymentAlreadyPaid
	}

	verifiedAt := s.now()
	payment.Status = models.PaymentPaid
	payment.VerifiedBy = &actor.ID
	payment.VerifiedAt = &verifiedAt

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	// Receipt is best-effort; the payment stays verified either way
	if payment.Student != nil && payment.Student.Profile != nil && payment.Student.Profile.User != nil {
		s.notifier.SendPaymentReceipt(ctx,
			payment.Student.Profile.User.Email,
			payment.Student.Profile.Name,
			payment.Amount,
			payment.ReferenceNo,
		)
	}

	log.Printf("✅ Payment %d verified by profile %d", payment.ID, actor.ID)
	return payment, nil
}

// ListPayments lists a school's payments with optional status filter
func (s *FeeService) ListPayments(ctx context.Context, schoolID uint, status string, offset, limit int, actorUserID uint) ([]*models.PaymentResponse, int64, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID); err != nil {
		return nil, 0, err
	}

	payments, total, err := s.paymentRepo.List(ctx, schoolID, status, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.PaymentResponse, len(payments))
	for i, p := range payments {
		responses[i] = p.ToResponse()
	}
	return responses, total, nil
}

// ListStudentPayments lists payments for one student, newest first
func (s *FeeService) ListStudentPayments(ctx context.Context, studentID uint) ([]*models.PaymentResponse, error) {
	payments, err := s.paymentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.PaymentResponse, len(payments))
	for i, p := range payments {
		responses[i] = p.ToResponse()
	}
	return responses, nil
}
