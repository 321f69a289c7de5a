package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/adapters/persistence/repositories"
	"schoolhub/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyFineRate is the fixed overdue fine per day (or part of a day).
const DailyFineRate = 0.50

// Library service errors
var (
	ErrMemberNotFound      = errors.New("library member not found")
	ErrMemberInactive      = errors.New("library member is not active")
	ErrAlreadyMember       = errors.New("profile is already a library member")
	ErrCopyNotFound        = errors.New("book copy not found")
	ErrCopyNotAvailable    = errors.New("book copy is not available")
	ErrReferenceOnly       = errors.New("reference-only books cannot be checked out")
	ErrUnpaidFines         = errors.New("member has unpaid fines")
	ErrTransactionNotFound = errors.New("borrowing transaction not found")
	ErrAlreadyReturned     = errors.New("transaction is not active")
)

// BorrowLimitError is returned when a member is at their borrowing limit.
type BorrowLimitError struct {
	Max int
}

func (e *BorrowLimitError) Error() string {
	return fmt.Sprintf("reached maximum borrowing limit of %d books", e.Max)
}

// Per-member-type borrowing defaults
var memberDefaults = map[string]struct {
	MaxBooks int
	MaxDays  int
}{
	models.MemberTypeStudent: {MaxBooks: 3, MaxDays: 14},
	models.MemberTypeTeacher: {MaxBooks: 5, MaxDays: 30},
	models.MemberTypeStaff:   {MaxBooks: 5, MaxDays: 30},
}

// LibraryService handles membership and circulation business logic
type LibraryService struct {
	memberRepo  *repositories.LibraryMemberRepository
	txRepo      *repositories.BorrowingTransactionRepository
	fineRepo    *repositories.FineRepository
	copyRepo    *repositories.BookCopyRepository
	profileRepo repositories.ProfileRepository

	// now is swappable so circulation date arithmetic is testable
	now func() time.Time
}

// NewLibraryService creates a new library service
func NewLibraryService(
	memberRepo *repositories.LibraryMemberRepository,
	txRepo *repositories.BorrowingTransactionRepository,
	fineRepo *repositories.FineRepository,
	copyRepo *repositories.BookCopyRepository,
	profileRepo repositories.ProfileRepository,
) *LibraryService {
	return &LibraryService{
		memberRepo:  memberRepo,
		txRepo:      txRepo,
		fineRepo:    fineRepo,
		copyRepo:    copyRepo,
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

// ============================================================
// Members
// ============================================================

// CreateMemberInput represents create member input
type CreateMemberInput struct {
	SchoolID   uint   `json:"school_id" validate:"required"`
	ProfileID  uint   `json:"profile_id" validate:"required"`
	MemberType string `json:"member_type" validate:"required,oneof=student teacher staff"`
	MaxBooks   int    `json:"max_books,omitempty"`
	MaxDays    int    `json:"max_days,omitempty"`
}

// CreateMember enrolls a profile as a library member
func (s *LibraryService) CreateMember(ctx context.Context, input *CreateMemberInput, actorUserID uint) (*models.LibraryMember, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, input.SchoolID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, input.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	if profile.SchoolID != input.SchoolID {
		return nil, domain.ErrSchoolMismatch
	}

	exists, err := s.memberRepo.ExistsByProfileID(ctx, input.ProfileID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyMember
	}

	defaults := memberDefaults[input.MemberType]
	maxBooks := defaults.MaxBooks
	if input.MaxBooks > 0 {
		maxBooks = input.MaxBooks
	}
	maxDays := defaults.MaxDays
	if input.MaxDays > 0 {
		maxDays = input.MaxDays
	}

	member := &models.LibraryMember{
		ProfileID:       input.ProfileID,
		SchoolID:        input.SchoolID,
		CardNumber:      generateCode("LIB"),
		Barcode:         generateCode("MBR"),
		MemberType:      input.MemberType,
		Status:          models.MemberActive,
		MaxBooksAllowed: maxBooks,
		MaxDaysAllowed:  maxDays,
		CanReserve:      true,
		CanRenew:        true,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	member.Profile = profile
	return member, nil
}

// ListMembersInput represents list members input
type ListMembersInput struct {
	SchoolID   uint
	Search     string
	MemberType string
	Status     string
	Page       int
	Limit      int
}

// ListMembers lists a school's library members
func (s *LibraryService) ListMembers(ctx context.Context, input *ListMembersInput, actorUserID uint) ([]*models.MemberResponse, int64, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, input.SchoolID); err != nil {
		return nil, 0, err
	}

	offset := (input.Page - 1) * input.Limit
	members, total, err := s.memberRepo.List(ctx, input.SchoolID, input.Search, input.MemberType, input.Status, offset, input.Limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.MemberResponse, len(members))
	for i, m := range members {
		responses[i] = m.ToResponse()
	}
	return responses, total, nil
}

// GetMemberByProfile gets the membership attached to a profile
func (s *LibraryService) GetMemberByProfile(ctx context.Context, profileID uint) (*models.LibraryMember, error) {
	member, err := s.memberRepo.GetByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// ============================================================
// Circulation
// ============================================================

// CheckoutInput represents checkout input
type CheckoutInput struct {
	SchoolID   uint   `json:"school_id" validate:"required"`
	CardNumber string `json:"card_number" validate:"required"`
	Barcode    string `json:"barcode" validate:"required"`
	DueDays    int    `json:"due_days,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// Checkout lends a book copy to a member.
//
// Preconditions are checked in order, each with its own error: actor
// belongs to school, member exists and is active, copy exists and is
// available, book is not reference-only, member is under the borrowing
// limit, member has no unpaid fines. The copy-status flip is the last
// write that can refuse; when it does, the just-created transaction is
// deleted so no active loan row survives without a checked-out copy.
func (s *LibraryService) Checkout(ctx context.Context, input *CheckoutInput, actorUserID uint) (*models.BorrowingTransaction, error) {
	actor, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, input.SchoolID)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByCardNumber(ctx, input.SchoolID, input.CardNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if member.Status != models.MemberActive {
		return nil, ErrMemberInactive
	}

	copy, err := s.copyRepo.GetByBarcode(ctx, input.SchoolID, input.Barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCopyNotFound
		}
		return nil, err
	}
	if copy.Status != models.CopyStatusAvailable {
		return nil, ErrCopyNotAvailable
	}
	if copy.Book != nil && copy.Book.IsReferenceOnly {
		return nil, ErrReferenceOnly
	}

	activeLoans, err := s.txRepo.CountActiveByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	if activeLoans >= int64(member.MaxBooksAllowed) {
		return nil, &BorrowLimitError{Max: member.MaxBooksAllowed}
	}

	unpaidFines, err := s.fineRepo.CountUnpaidByMember(ctx, member.ID)
	if err != nil {
		return nil, err
	}
	if unpaidFines > 0 {
		return nil, ErrUnpaidFines
	}

	now := s.now()
	dueDays := member.MaxDaysAllowed
	if input.DueDays > 0 {
		dueDays = input.DueDays
	}

	tx := &models.BorrowingTransaction{
		SchoolID:     input.SchoolID,
		MemberID:     member.ID,
		BookCopyID:   copy.ID,
		CheckoutDate: now,
		DueDate:      now.AddDate(0, 0, dueDays),
		Status:       models.TransactionActive,
		Notes:        input.Notes,
		IssuedBy:     actor.ID,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	flipped, err := s.copyRepo.CheckOut(ctx, copy.ID)
	if err != nil || !flipped {
		// Compensating delete: not a database transaction, so undo the
		// insert before reporting failure.
		if delErr := s.txRepo.Delete(ctx, tx.ID); delErr != nil {
			log.Printf("⚠️ Failed to delete transaction %d after copy update failure: %v", tx.ID, delErr)
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrCopyNotAvailable
	}

	member.TotalBooksBorrowed++
	if err := s.memberRepo.Update(ctx, member); err != nil {
		log.Printf("⚠️ Failed to update borrow counter for member %d: %v", member.ID, err)
	}

	copy.Status = models.CopyStatusCheckedOut
	tx.Member = member
	tx.BookCopy = copy
	return tx, nil
}

// ReturnInput represents return input
type ReturnInput struct {
	SchoolID      uint   `json:"school_id" validate:"required"`
	TransactionID uint   `json:"-"`
	Condition     string `json:"condition,omitempty" validate:"omitempty,oneof=good fair poor damaged"`
	Notes         string `json:"notes,omitempty"`
}

// Return closes an active loan.
//
// The transaction update is the primary effect. A fine that cannot be
// recorded afterwards is logged and does not fail the return.
func (s *LibraryService) Return(ctx context.Context, input *ReturnInput, actorUserID uint) (*models.BorrowingTransaction, float64, error) {
	actor, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, input.SchoolID)
	if err != nil {
		return nil, 0, err
	}

	tx, err := s.txRepo.GetByID(ctx, input.SchoolID, input.TransactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTransactionNotFound
		}
		return nil, 0, err
	}
	if tx.Status != models.TransactionActive {
		return nil, 0, ErrAlreadyReturned
	}

	condition := input.Condition
	if condition == "" {
		condition = models.ConditionGood
	}

	returnDate := s.now()
	fine := overdueFine(tx.DueDate, returnDate)

	tx.ReturnDate = &returnDate
	tx.Status = models.TransactionReturned
	tx.ReturnCondition = condition
	tx.FineAmount = fine
	tx.ReturnedTo = &actor.ID
	if input.Notes != "" {
		tx.Notes = strings.TrimSpace(tx.Notes + "\n" + input.Notes)
	}

	if err := s.txRepo.Update(ctx, tx); err != nil {
		return nil, 0, err
	}

	copyStatus := models.CopyStatusAvailable
	if condition == models.ConditionDamaged || condition == models.ConditionPoor {
		copyStatus = models.CopyStatusDamaged
	}
	if err := s.copyRepo.SetStatus(ctx, tx.BookCopyID, copyStatus, condition); err != nil {
		return nil, 0, err
	}

	if fine > 0 {
		fineRecord := &models.Fine{
			SchoolID:      tx.SchoolID,
			TransactionID: tx.ID,
			MemberID:      tx.MemberID,
			Amount:        fine,
			Status:        models.FineUnpaid,
		}
		if err := s.fineRepo.Create(ctx, fineRecord); err != nil {
			log.Printf("⚠️ Failed to record fine for transaction %d: %v", tx.ID, err)
		} else if tx.Member != nil {
			tx.Member.CurrentFines += fine
			if err := s.memberRepo.Update(ctx, tx.Member); err != nil {
				log.Printf("⚠️ Failed to update fine counter for member %d: %v", tx.MemberID, err)
			}
		}
	}

	return tx, fine, nil
}

// overdueFine computes the fine for a return: ceil of the overdue
// duration in days times the daily rate, zero when on time.
func overdueFine(dueDate, returnDate time.Time) float64 {
	if !returnDate.After(dueDate) {
		return 0
	}
	overdueDays := math.Ceil(returnDate.Sub(dueDate).Hours() / 24)
	return overdueDays * DailyFineRate
}

// ListTransactionsInput represents list transactions input
type ListTransactionsInput struct {
	SchoolID uint
	Status   string
	Page     int
	Limit    int
}

// ListTransactions lists a school's borrowing transactions
func (s *LibraryService) ListTransactions(ctx context.Context, input *ListTransactionsInput, actorUserID uint) ([]*models.TransactionResponse, int64, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, input.SchoolID); err != nil {
		return nil, 0, err
	}

	offset := (input.Page - 1) * input.Limit
	txs, total, err := s.txRepo.List(ctx, input.SchoolID, input.Status, offset, input.Limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.TransactionResponse, len(txs))
	for i, tx := range txs {
		responses[i] = tx.ToResponse()
	}
	return responses, total, nil
}

// ListMemberLoans lists a member's transactions (for the mobile views)
func (s *LibraryService) ListMemberLoans(ctx context.Context, memberID uint, status string) ([]*models.BorrowingTransaction, error) {
	return s.txRepo.ListByMember(ctx, memberID, status)
}

// ListMemberFines lists the fines charged to a member
func (s *LibraryService) ListMemberFines(ctx context.Context, memberID uint) ([]*models.Fine, error) {
	return s.fineRepo.ListByMember(ctx, memberID)
}

// ListOverdue lists all active loans past due as of now (cron scan)
func (s *LibraryService) ListOverdue(ctx context.Context) ([]*models.BorrowingTransaction, error) {
	return s.txRepo.ListOverdue(ctx, s.now())
}

// generateCode builds a short unique code with the given prefix
func generateCode(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}
