package services

import (
	"context"
	"errors"
	"log"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Catalog errors
var (
	ErrBookNotFound  = errors.New("book not found")
	ErrCopyOnLoan    = errors.New("copy is currently on loan")
	ErrBookHasCopies = errors.New("book still has copies on loan")
)

// CatalogService manages the book catalog and its physical copies
type CatalogService struct {
	bookRepo    *repositories.BookRepository
	copyRepo    *repositories.BookCopyRepository
	txRepo      *repositories.BorrowingTransactionRepository
	profileRepo repositories.ProfileRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	bookRepo *repositories.BookRepository,
	copyRepo *repositories.BookCopyRepository,
	txRepo *repositories.BorrowingTransactionRepository,
	profileRepo repositories.ProfileRepository,
) *CatalogService {
	return &CatalogService{
		bookRepo:    bookRepo,
		copyRepo:    copyRepo,
		txRepo:      txRepo,
		profileRepo: profileRepo,
	}
}

// CreateBookInput represents book creation input
type CreateBookInput struct {
	SchoolID        uint   `json:"school_id" validate:"required"`
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Category        string `json:"category"`
	IsReferenceOnly bool   `json:"is_reference_only"`
	InitialCopies   int    `json:"initial_copies" validate:"max=50"`
}

// CreateBook adds a catalog record, optionally with barcoded copies
func (s *CatalogService) CreateBook(ctx context.Context, input *CreateBookInput, actorUserID uint) (*models.Book, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, input.SchoolID); err != nil {
		return nil, err
	}

	book := &models.Book{
		SchoolID:        input.SchoolID,
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		Category:        input.Category,
		IsReferenceOnly: input.IsReferenceOnly,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	for i := 0; i < input.InitialCopies; i++ {
		copy := &models.BookCopy{
			BookID:    book.ID,
			SchoolID:  input.SchoolID,
			Barcode:   generateCode("BC"),
			Status:    models.CopyStatusAvailable,
			Condition: models.ConditionGood,
		}
		if err := s.copyRepo.Create(ctx, copy); err != nil {
			return nil, err
		}
		book.Copies = append(book.Copies, *copy)
	}

	log.Printf("✅ Book %q added with %d copies (school %d)", book.Title, input.InitialCopies, book.SchoolID)
	return book, nil
}

// GetBook fetches a book with its copies
func (s *CatalogService) GetBook(ctx context.Context, schoolID, bookID, actorUserID uint) (*models.Book, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.GetByID(ctx, schoolID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// ListBooks lists a school's catalog with optional search
func (s *CatalogService) ListBooks(ctx context.Context, schoolID uint, search string, offset, limit int, actorUserID uint) ([]*models.Book, int64, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID); err != nil {
		return nil, 0, err
	}
	return s.bookRepo.List(ctx, schoolID, search, offset, limit)
}

// UpdateBookInput represents book update input
type UpdateBookInput struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	ISBN            *string `json:"isbn"`
	Category        *string `json:"category"`
	IsReferenceOnly *bool   `json:"is_reference_only"`
}

// UpdateBook updates catalog fields of a book
func (s *CatalogService) UpdateBook(ctx context.Context, schoolID, bookID uint, input *UpdateBookInput, actorUserID uint) (*models.Book, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.GetByID(ctx, schoolID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if input.Title != nil && *input.Title != "" {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	if input.Category != nil {
		book.Category = *input.Category
	}
	if input.IsReferenceOnly != nil {
		book.IsReferenceOnly = *input.IsReferenceOnly
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook soft deletes a book. Refused while any copy is on loan.
func (s *CatalogService) DeleteBook(ctx context.Context, schoolID, bookID uint, actorUserID uint) error {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID); err != nil {
		return err
	}

	book, err := s.bookRepo.GetByID(ctx, schoolID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	for _, c := range book.Copies {
		if c.Status == models.CopyStatusCheckedOut {
			return ErrBookHasCopies
		}
	}

	return s.bookRepo.Delete(ctx, book.ID)
}

// AddCopy registers one more physical copy of a book
func (s *CatalogService) AddCopy(ctx context.Context, schoolID, bookID uint, condition string, actorUserID uint) (*models.BookCopy, error) {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.GetByID(ctx, schoolID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if condition == "" {
		condition = models.ConditionGood
	}

	copy := &models.BookCopy{
		BookID:    book.ID,
		SchoolID:  schoolID,
		Barcode:   generateCode("BC"),
		Status:    models.CopyStatusAvailable,
		Condition: condition,
	}
	if err := s.copyRepo.Create(ctx, copy); err != nil {
		return nil, err
	}
	return copy, nil
}

// MarkCopyDamaged takes a copy out of circulation
func (s *CatalogService) MarkCopyDamaged(ctx context.Context, schoolID, copyID uint, actorUserID uint) error {
	if _, err := checkSchoolAccess(ctx, s.profileRepo, actorUserID, schoolID); err != nil {
		return err
	}

	copy, err := s.copyRepo.GetByID(ctx, copyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCopyNotFound
		}
		return err
	}
	if copy.SchoolID != schoolID {
		return ErrCopyNotFound
	}

	// The loan record, not the status flag, decides whether the copy is
	// out with a member.
	onLoan, err := s.txRepo.HasActiveByCopy(ctx, copy.ID)
	if err != nil {
		return err
	}
	if onLoan {
		return ErrCopyOnLoan
	}

	return s.copyRepo.SetStatus(ctx, copy.ID, models.CopyStatusDamaged, models.ConditionDamaged)
}
