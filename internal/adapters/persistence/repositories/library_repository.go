package repositories

import (
	"context"
	"time"

	"schoolhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// LibraryMemberRepository handles library member data access
type LibraryMemberRepository struct {
	db *gorm.DB
}

// NewLibraryMemberRepository creates a new library member repository
func NewLibraryMemberRepository(db *gorm.DB) *LibraryMemberRepository {
	return &LibraryMemberRepository{db: db}
}

// Create creates a new library member
func (r *LibraryMemberRepository) Create(ctx context.Context, member *models.LibraryMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID gets a member by ID with profile
func (r *LibraryMemberRepository) GetByID(ctx context.Context, id uint) (*models.LibraryMember, error) {
	var member models.LibraryMember
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Profile.User").
		First(&member, id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByCardNumber gets a member by card number within a school
func (r *LibraryMemberRepository) GetByCardNumber(ctx context.Context, schoolID uint, cardNumber string) (*models.LibraryMember, error) {
	var member models.LibraryMember
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("school_id = ? AND card_number = ?", schoolID, cardNumber).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByProfileID gets a member by its owning profile ID
func (r *LibraryMemberRepository) GetByProfileID(ctx context.Context, profileID uint) (*models.LibraryMember, error) {
	var member models.LibraryMember
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("profile_id = ?", profileID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ExistsByProfileID checks whether a profile already has a membership
func (r *LibraryMemberRepository) ExistsByProfileID(ctx context.Context, profileID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LibraryMember{}).
		Where("profile_id = ?", profileID).
		Count(&count).Error
	return count > 0, err
}

// Update updates a member
func (r *LibraryMemberRepository) Update(ctx context.Context, member *models.LibraryMember) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// List lists members of a school with filters and pagination
func (r *LibraryMemberRepository) List(ctx context.Context, schoolID uint, search, memberType, status string, offset, limit int) ([]*models.LibraryMember, int64, error) {
	var members []*models.LibraryMember
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.LibraryMember{}).
		Joins("JOIN profiles ON profiles.id = library_members.profile_id").
		Where("library_members.school_id = ?", schoolID)

	if search != "" {
		like := "%" + search + "%"
		query = query.Where("profiles.name LIKE ? OR library_members.card_number LIKE ?", like, like)
	}
	if memberType != "" {
		query = query.Where("library_members.member_type = ?", memberType)
	}
	if status != "" {
		query = query.Where("library_members.status = ?", status)
	}

	query.Count(&total)

	err := query.
		Preload("Profile").
		Preload("Profile.User").
		Order("library_members.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error

	return members, total, err
}

// BorrowingTransactionRepository handles borrowing transaction data access
type BorrowingTransactionRepository struct {
	db *gorm.DB
}

// NewBorrowingTransactionRepository creates a new borrowing transaction repository
func NewBorrowingTransactionRepository(db *gorm.DB) *BorrowingTransactionRepository {
	return &BorrowingTransactionRepository{db: db}
}

// Create creates a new borrowing transaction
func (r *BorrowingTransactionRepository) Create(ctx context.Context, tx *models.BorrowingTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// GetByID gets a transaction by ID within a school, with relations
func (r *BorrowingTransactionRepository) GetByID(ctx context.Context, schoolID, id uint) (*models.BorrowingTransaction, error) {
	var tx models.BorrowingTransaction
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Member.Profile").
		Preload("BookCopy").
		Preload("BookCopy.Book").
		Where("school_id = ?", schoolID).
		First(&tx, id).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Update updates a transaction
func (r *BorrowingTransactionRepository) Update(ctx context.Context, tx *models.BorrowingTransaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// Delete hard deletes a transaction.
// Compensating step of checkout: an active loan row without a
// checked-out copy must not survive.
func (r *BorrowingTransactionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.BorrowingTransaction{}, id).Error
}

// CountActiveByMember counts a member's active loans
func (r *BorrowingTransactionRepository) CountActiveByMember(ctx context.Context, memberID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowingTransaction{}).
		Where("member_id = ? AND status = ?", memberID, models.TransactionActive).
		Count(&count).Error
	return count, err
}

// HasActiveByCopy checks whether a copy already has an active loan
func (r *BorrowingTransactionRepository) HasActiveByCopy(ctx context.Context, copyID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowingTransaction{}).
		Where("book_copy_id = ? AND status = ?", copyID, models.TransactionActive).
		Count(&count).Error
	return count > 0, err
}

// ListByMember lists a member's transactions, newest first
func (r *BorrowingTransactionRepository) ListByMember(ctx context.Context, memberID uint, status string) ([]*models.BorrowingTransaction, error) {
	var txs []*models.BorrowingTransaction
	query := r.db.WithContext(ctx).
		Preload("BookCopy").
		Preload("BookCopy.Book").
		Where("member_id = ?", memberID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("checkout_date DESC").Find(&txs).Error
	return txs, err
}

// List lists a school's transactions with optional status filter
func (r *BorrowingTransactionRepository) List(ctx context.Context, schoolID uint, status string, offset, limit int) ([]*models.BorrowingTransaction, int64, error) {
	var txs []*models.BorrowingTransaction
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.BorrowingTransaction{}).
		Where("school_id = ?", schoolID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	query.Count(&total)

	err := query.
		Preload("Member").
		Preload("Member.Profile").
		Preload("BookCopy").
		Preload("BookCopy.Book").
		Order("checkout_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&txs).Error

	return txs, total, err
}

// ListOverdue lists active transactions past due as of the given time
func (r *BorrowingTransactionRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*models.BorrowingTransaction, error) {
	var txs []*models.BorrowingTransaction
	err := r.db.WithContext(ctx).
		Preload("Member").
		Preload("Member.Profile").
		Preload("Member.Profile.User").
		Preload("BookCopy").
		Preload("BookCopy.Book").
		Where("status = ? AND due_date < ?", models.TransactionActive, asOf).
		Find(&txs).Error
	return txs, err
}

// FineRepository handles fine data access
type FineRepository struct {
	db *gorm.DB
}

// NewFineRepository creates a new fine repository
func NewFineRepository(db *gorm.DB) *FineRepository {
	return &FineRepository{db: db}
}

// Create creates a new fine
func (r *FineRepository) Create(ctx context.Context, fine *models.Fine) error {
	return r.db.WithContext(ctx).Create(fine).Error
}

// CountUnpaidByMember counts a member's unpaid fines
func (r *FineRepository) CountUnpaidByMember(ctx context.Context, memberID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Fine{}).
		Where("member_id = ? AND status = ?", memberID, models.FineUnpaid).
		Count(&count).Error
	return count, err
}

// SumUnpaidBySchool sums unpaid fine amounts for a school
func (r *FineRepository) SumUnpaidBySchool(ctx context.Context, schoolID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Fine{}).
		Where("school_id = ? AND status = ?", schoolID, models.FineUnpaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// ListByMember lists a member's fines, newest first
func (r *FineRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.Fine, error) {
	var fines []*models.Fine
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&fines).Error
	return fines, err
}

// MarkPaid marks a fine paid
func (r *FineRepository) MarkPaid(ctx context.Context, id uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Fine{}).
		Where("id = ? AND status = ?", id, models.FineUnpaid).
		Updates(map[string]interface{}{"status": models.FinePaid, "paid_at": &now}).Error
}
