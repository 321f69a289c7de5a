package services

import (
	"context"
	"errors"
	"time"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// DashboardService aggregates per-school statistics. Sums and counts
// that the repositories already expose go through them; the remaining
// joins are direct queries, read-only snapshots rather than domain
// state.
type DashboardService struct {
	db            *gorm.DB
	profileRepo   repositories.ProfileRepository
	fineRepo      *repositories.FineRepository
	paymentRepo   *repositories.FeePaymentRepository
	admissionRepo *repositories.AdmissionRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	db *gorm.DB,
	profileRepo repositories.ProfileRepository,
	fineRepo *repositories.FineRepository,
	paymentRepo *repositories.FeePaymentRepository,
	admissionRepo *repositories.AdmissionRepository,
) *DashboardService {
	return &DashboardService{
		db:            db,
		profileRepo:   profileRepo,
		fineRepo:      fineRepo,
		paymentRepo:   paymentRepo,
		admissionRepo: admissionRepo,
	}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// People
	TotalStudents int64 `json:"total_students"`
	TotalTeachers int64 `json:"total_teachers"`

	// Library
	TotalBooks      int64   `json:"total_books"`
	AvailableCopies int64   `json:"available_copies"`
	ActiveLoans     int64   `json:"active_loans"`
	OverdueLoans    int64   `json:"overdue_loans"`
	LibraryMembers  int64   `json:"library_members"`
	UnpaidFines     float64 `json:"unpaid_fines"`

	// Finance & admissions
	FeesCollected       float64 `json:"fees_collected"`
	PendingPayments     int64   `json:"pending_payments"`
	PendingApplications int64   `json:"pending_applications"`

	// Monthly
	AdmissionsThisMonth int64   `json:"admissions_this_month"`
	FeesThisMonth       float64 `json:"fees_this_month"`

	// Recent activity
	RecentLoans    []LoanSummary    `json:"recent_loans"`
	RecentPayments []PaymentSummary `json:"recent_payments"`
}

// LoanSummary represents a borrowing transaction summary
type LoanSummary struct {
	ID         uint      `json:"id"`
	MemberName string    `json:"member_name"`
	BookTitle  string    `json:"book_title"`
	Status     string    `json:"status"`
	DueDate    time.Time `json:"due_date"`
	CheckedOut time.Time `json:"checked_out"`
}

// PaymentSummary represents a fee payment summary
type PaymentSummary struct {
	ID          uint      `json:"id"`
	StudentName string    `json:"student_name"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetAdminDashboard returns admin dashboard data for one school
func (s *DashboardService) GetAdminDashboard(ctx context.Context, schoolID, actorUserID uint) (*AdminDashboardData, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID); err != nil {
		return nil, err
	}

	data := &AdminDashboardData{}
	now := time.Now()

	// People counts
	s.db.WithContext(ctx).Table("students").
		Joins("JOIN profiles ON profiles.id = students.profile_id").
		Where("profiles.school_id = ? AND profiles.deleted_at IS NULL", schoolID).
		Count(&data.TotalStudents)

	s.db.WithContext(ctx).Table("teachers").
		Joins("JOIN profiles ON profiles.id = teachers.profile_id").
		Where("profiles.school_id = ? AND profiles.deleted_at IS NULL", schoolID).
		Count(&data.TotalTeachers)

	// Library counts
	s.db.WithContext(ctx).Table("books").
		Where("school_id = ? AND deleted_at IS NULL", schoolID).
		Count(&data.TotalBooks)

	s.db.WithContext(ctx).Table("book_copies").
		Joins("JOIN books ON books.id = book_copies.book_id").
		Where("books.school_id = ? AND book_copies.status = ? AND book_copies.deleted_at IS NULL", schoolID, models.CopyStatusAvailable).
		Count(&data.AvailableCopies)

	s.db.WithContext(ctx).Table("borrowing_transactions").
		Where("school_id = ? AND status = ?", schoolID, models.TransactionActive).
		Count(&data.ActiveLoans)

	s.db.WithContext(ctx).Table("borrowing_transactions").
		Where("school_id = ? AND status = ? AND due_date < ?", schoolID, models.TransactionActive, now).
		Count(&data.OverdueLoans)

	s.db.WithContext(ctx).Table("library_members").
		Where("school_id = ? AND deleted_at IS NULL", schoolID).
		Count(&data.LibraryMembers)

	if total, err := s.fineRepo.SumUnpaidBySchool(ctx, schoolID); err == nil {
		data.UnpaidFines = total
	}

	// Finance & admissions
	if total, err := s.paymentRepo.SumPaidBySchool(ctx, schoolID); err == nil {
		data.FeesCollected = total
	}

	s.db.WithContext(ctx).Table("fee_payments").
		Where("school_id = ? AND status = ? AND deleted_at IS NULL", schoolID, models.PaymentPending).
		Count(&data.PendingPayments)

	if count, err := s.admissionRepo.CountPendingBySchool(ctx, schoolID); err == nil {
		data.PendingApplications = count
	}

	// This month statistics
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	s.db.WithContext(ctx).Table("admission_applications").
		Where("school_id = ? AND created_at >= ? AND deleted_at IS NULL", schoolID, startOfMonth).
		Count(&data.AdmissionsThisMonth)

	s.db.WithContext(ctx).Table("fee_payments").
		Where("school_id = ? AND status = ? AND verified_at >= ? AND deleted_at IS NULL", schoolID, models.PaymentPaid, startOfMonth).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.FeesThisMonth)

	// Recent loans
	var recentLoans []struct {
		ID           uint
		MemberName   string
		BookTitle    string
		Status       string
		DueDate      time.Time
		CheckoutDate time.Time
	}
	s.db.WithContext(ctx).Table("borrowing_transactions").
		Select(`
			borrowing_transactions.id,
			profiles.name as member_name,
			books.title as book_title,
			borrowing_transactions.status,
			borrowing_transactions.due_date,
			borrowing_transactions.checkout_date
		`).
		Joins("LEFT JOIN library_members ON borrowing_transactions.member_id = library_members.id").
		Joins("LEFT JOIN profiles ON library_members.profile_id = profiles.id").
		Joins("LEFT JOIN book_copies ON borrowing_transactions.book_copy_id = book_copies.id").
		Joins("LEFT JOIN books ON book_copies.book_id = books.id").
		Where("borrowing_transactions.school_id = ?", schoolID).
		Order("borrowing_transactions.checkout_date DESC").
		Limit(10).
		Scan(&recentLoans)

	data.RecentLoans = make([]LoanSummary, len(recentLoans))
	for i, l := range recentLoans {
		data.RecentLoans[i] = LoanSummary{
			ID:         l.ID,
			MemberName: l.MemberName,
			BookTitle:  l.BookTitle,
			Status:     l.Status,
			DueDate:    l.DueDate,
			CheckedOut: l.CheckoutDate,
		}
	}

	// Recent payments
	var recentPayments []struct {
		ID          uint
		StudentName string
		Amount      float64
		Method      string
		Status      string
		CreatedAt   time.Time
	}
	s.db.WithContext(ctx).Table("fee_payments").
		Select(`
			fee_payments.id,
			profiles.name as student_name,
			fee_payments.amount,
			fee_payments.method,
			fee_payments.status,
			fee_payments.created_at
		`).
		Joins("LEFT JOIN students ON fee_payments.student_id = students.profile_id").
		Joins("LEFT JOIN profiles ON students.profile_id = profiles.id").
		Where("fee_payments.school_id = ? AND fee_payments.deleted_at IS NULL", schoolID).
		Order("fee_payments.created_at DESC").
		Limit(10).
		Scan(&recentPayments)

	data.RecentPayments = make([]PaymentSummary, len(recentPayments))
	for i, p := range recentPayments {
		data.RecentPayments[i] = PaymentSummary{
			ID:          p.ID,
			StudentName: p.StudentName,
			Amount:      p.Amount,
			Method:      p.Method,
			Status:      p.Status,
			CreatedAt:   p.CreatedAt,
		}
	}

	return data, nil
}

// ============================================================
// Student Dashboard (mobile)
// ============================================================

// StudentDashboardData represents a student's own dashboard
type StudentDashboardData struct {
	ActiveLoans   int64   `json:"active_loans"`
	OverdueLoans  int64   `json:"overdue_loans"`
	CurrentFines  float64 `json:"current_fines"`
	TotalBorrowed int     `json:"total_borrowed"`
	TotalFeesPaid float64 `json:"total_fees_paid"`
	PendingFees   int64   `json:"pending_fees"`
}

// GetStudentDashboard returns a student's own statistics
func (s *DashboardService) GetStudentDashboard(ctx context.Context, profileID uint) (*StudentDashboardData, error) {
	data := &StudentDashboardData{}
	now := time.Now()

	var member models.LibraryMember
	err := s.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&member).Error
	if err == nil {
		data.CurrentFines = member.CurrentFines
		data.TotalBorrowed = member.TotalBooksBorrowed

		s.db.WithContext(ctx).Table("borrowing_transactions").
			Where("member_id = ? AND status = ?", member.ID, models.TransactionActive).
			Count(&data.ActiveLoans)

		s.db.WithContext(ctx).Table("borrowing_transactions").
			Where("member_id = ? AND status = ? AND due_date < ?", member.ID, models.TransactionActive, now).
			Count(&data.OverdueLoans)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	s.db.WithContext(ctx).Table("fee_payments").
		Where("student_id = ? AND status = ? AND deleted_at IS NULL", profileID, models.PaymentPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&data.TotalFeesPaid)

	s.db.WithContext(ctx).Table("fee_payments").
		Where("student_id = ? AND status = ? AND deleted_at IS NULL", profileID, models.PaymentPending).
		Count(&data.PendingFees)

	return data, nil
}
