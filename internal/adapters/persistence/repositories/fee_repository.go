package repositories

import (
	"context"

	"schoolhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// FeePaymentRepository handles fee payment data access
type FeePaymentRepository struct {
	db *gorm.DB
}

// NewFeePaymentRepository creates a new fee payment repository
func NewFeePaymentRepository(db *gorm.DB) *FeePaymentRepository {
	return &FeePaymentRepository{db: db}
}

// Create creates a new fee payment
func (r *FeePaymentRepository) Create(ctx context.Context, payment *models.FeePayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByID gets a payment by ID within a school
func (r *FeePaymentRepository) GetByID(ctx context.Context, schoolID, id uint) (*models.FeePayment, error) {
	var payment models.FeePayment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Student.Profile").
		Preload("Student.Profile.User").
		Where("school_id = ?", schoolID).
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Update updates a payment
func (r *FeePaymentRepository) Update(ctx context.Context, payment *models.FeePayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// List lists a school's payments with optional status filter
func (r *FeePaymentRepository) List(ctx context.Context, schoolID uint, status string, offset, limit int) ([]*models.FeePayment, int64, error) {
	var payments []*models.FeePayment
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.FeePayment{}).
		Where("school_id = ?", schoolID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	query.Count(&total)

	err := query.
		Preload("Student").
		Preload("Student.Profile").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error

	return payments, total, err
}

// ListByStudent lists a student's payments, newest first
func (r *FeePaymentRepository) ListByStudent(ctx context.Context, studentID uint) ([]*models.FeePayment, error) {
	var payments []*models.FeePayment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// SumPaidBySchool sums verified payment amounts for a school
func (r *FeePaymentRepository) SumPaidBySchool(ctx context.Context, schoolID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.FeePayment{}).
		Where("school_id = ? AND status = ?", schoolID, models.PaymentPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// AdmissionRepository handles admission application data access
type AdmissionRepository struct {
	db *gorm.DB
}

// NewAdmissionRepository creates a new admission repository
func NewAdmissionRepository(db *gorm.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// Create creates a new application
func (r *AdmissionRepository) Create(ctx context.Context, app *models.AdmissionApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetByID gets an application by ID within a school
func (r *AdmissionRepository) GetByID(ctx context.Context, schoolID, id uint) (*models.AdmissionApplication, error) {
	var app models.AdmissionApplication
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Update updates an application
func (r *AdmissionRepository) Update(ctx context.Context, app *models.AdmissionApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}

// List lists a school's applications with optional status filter
func (r *AdmissionRepository) List(ctx context.Context, schoolID uint, status string, offset, limit int) ([]*models.AdmissionApplication, int64, error) {
	var apps []*models.AdmissionApplication
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.AdmissionApplication{}).
		Where("school_id = ?", schoolID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	query.Count(&total)

	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error

	return apps, total, err
}

// CountPendingBySchool counts pending applications for a school
func (r *AdmissionRepository) CountPendingBySchool(ctx context.Context, schoolID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AdmissionApplication{}).
		Where("school_id = ? AND status = ?", schoolID, models.ApplicationPending).
		Count(&count).Error
	return count, err
}
