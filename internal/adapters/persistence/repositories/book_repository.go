package repositories

import (
	"context"

	"schoolhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// BookRepository handles book catalog data access
type BookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) *BookRepository {
	return &BookRepository{db: db}
}

// Create creates a new book
func (r *BookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID gets a book by ID within a school
func (r *BookRepository) GetByID(ctx context.Context, schoolID, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Preload("Copies").
		Where("school_id = ?", schoolID).
		First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List lists a school's books with optional title/author search
func (r *BookRepository) List(ctx context.Context, schoolID uint, search string, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("school_id = ?", schoolID)

	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR isbn LIKE ?", like, like, like)
	}

	query.Count(&total)

	err := query.
		Preload("Copies").
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// Update updates a book
func (r *BookRepository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

// Delete soft deletes a book
func (r *BookRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Book{}, id).Error
}

// BookCopyRepository handles physical copy data access
type BookCopyRepository struct {
	db *gorm.DB
}

// NewBookCopyRepository creates a new book copy repository
func NewBookCopyRepository(db *gorm.DB) *BookCopyRepository {
	return &BookCopyRepository{db: db}
}

// Create creates a new copy
func (r *BookCopyRepository) Create(ctx context.Context, copy *models.BookCopy) error {
	return r.db.WithContext(ctx).Create(copy).Error
}

// GetByID gets a copy by ID with its book
func (r *BookCopyRepository) GetByID(ctx context.Context, id uint) (*models.BookCopy, error) {
	var copy models.BookCopy
	err := r.db.WithContext(ctx).Preload("Book").First(&copy, id).Error
	if err != nil {
		return nil, err
	}
	return &copy, nil
}

// GetByBarcode gets a copy by barcode within a school, with its book
func (r *BookCopyRepository) GetByBarcode(ctx context.Context, schoolID uint, barcode string) (*models.BookCopy, error) {
	var copy models.BookCopy
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("school_id = ? AND barcode = ?", schoolID, barcode).
		First(&copy).Error
	if err != nil {
		return nil, err
	}
	return &copy, nil
}

// CheckOut flips an available copy to checked_out.
// The status guard in the WHERE clause is the exclusion against two
// concurrent checkouts of the same copy; the caller must treat a
// zero-row update as "no longer available".
func (r *BookCopyRepository) CheckOut(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BookCopy{}).
		Where("id = ? AND status = ?", id, models.CopyStatusAvailable).
		Update("status", models.CopyStatusCheckedOut)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetStatus sets a copy's status and condition
func (r *BookCopyRepository) SetStatus(ctx context.Context, id uint, status, condition string) error {
	return r.db.WithContext(ctx).
		Model(&models.BookCopy{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "condition": condition}).Error
}

// ListByBook lists copies of a book
func (r *BookCopyRepository) ListByBook(ctx context.Context, bookID uint) ([]*models.BookCopy, error) {
	var copies []*models.BookCopy
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("barcode ASC").
		Find(&copies).Error
	return copies, err
}
