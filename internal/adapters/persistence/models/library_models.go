package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Library Tables
// ============================================================

// Book copy statuses
const (
	CopyStatusAvailable  = "available"
	CopyStatusCheckedOut = "checked_out"
	CopyStatusDamaged    = "damaged"
)

// Copy conditions
const (
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
	ConditionDamaged = "damaged"
)

// Borrowing transaction statuses
const (
	TransactionActive   = "active"
	TransactionReturned = "returned"
)

// Fine statuses
const (
	FineUnpaid = "unpaid"
	FinePaid   = "paid"
)

// Library member statuses and types
const (
	MemberActive    = "active"
	MemberSuspended = "suspended"

	MemberTypeStudent = "student"
	MemberTypeTeacher = "teacher"
	MemberTypeStaff   = "staff"
)

// Book represents books table (catalog record)
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	SchoolID        uint           `gorm:"index;not null" json:"school_id"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Author          string         `gorm:"size:255" json:"author"`
	ISBN            string         `gorm:"size:20;index" json:"isbn"`
	Category        string         `gorm:"size:100" json:"category"`
	IsReferenceOnly bool           `gorm:"default:false" json:"is_reference_only"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Copies []BookCopy `gorm:"foreignKey:BookID" json:"copies,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// BookCopy represents book_copies table (physical barcoded instance)
type BookCopy struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BookID    uint           `gorm:"index;not null" json:"book_id"`
	SchoolID  uint           `gorm:"index;not null" json:"school_id"`
	Barcode   string         `gorm:"uniqueIndex;size:30;not null" json:"barcode"`
	Status    string         `gorm:"size:20;not null;default:'available'" json:"status"`
	Condition string         `gorm:"size:20;not null;default:'good'" json:"condition"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (BookCopy) TableName() string {
	return "book_copies"
}

// LibraryMember represents library_members table (borrowing privileges)
type LibraryMember struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	ProfileID          uint           `gorm:"uniqueIndex;not null" json:"profile_id"`
	SchoolID           uint           `gorm:"index;not null" json:"school_id"`
	CardNumber         string         `gorm:"uniqueIndex;size:30;not null" json:"card_number"`
	Barcode            string         `gorm:"uniqueIndex;size:30;not null" json:"barcode"`
	MemberType         string         `gorm:"size:20;not null" json:"member_type"`
	Status             string         `gorm:"size:20;not null;default:'active'" json:"status"`
	MaxBooksAllowed    int            `gorm:"not null;default:3" json:"max_books_allowed"`
	MaxDaysAllowed     int            `gorm:"not null;default:14" json:"max_days_allowed"`
	TotalBooksBorrowed int            `gorm:"not null;default:0" json:"total_books_borrowed"`
	CurrentFines       float64        `gorm:"type:decimal(10,2);not null;default:0" json:"current_fines"`
	CanReserve         bool           `gorm:"default:true" json:"can_reserve"`
	CanRenew           bool           `gorm:"default:true" json:"can_renew"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

func (LibraryMember) TableName() string {
	return "library_members"
}

// MemberResponse DTO (joined with profile fields)
type MemberResponse struct {
	ID                 uint      `json:"id"`
	ProfileID          uint      `json:"profile_id"`
	SchoolID           uint      `json:"school_id"`
	CardNumber         string    `json:"card_number"`
	Barcode            string    `json:"barcode"`
	MemberType         string    `json:"member_type"`
	Status             string    `json:"status"`
	MaxBooksAllowed    int       `json:"max_books_allowed"`
	MaxDaysAllowed     int       `json:"max_days_allowed"`
	TotalBooksBorrowed int       `json:"total_books_borrowed"`
	CurrentFines       float64   `json:"current_fines"`
	CanReserve         bool      `json:"can_reserve"`
	CanRenew           bool      `json:"can_renew"`
	Name               string    `json:"name,omitempty"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func (m *LibraryMember) ToResponse() *MemberResponse {
	resp := &MemberResponse{
		ID:                 m.ID,
		ProfileID:          m.ProfileID,
		SchoolID:           m.SchoolID,
		CardNumber:         m.CardNumber,
		Barcode:            m.Barcode,
		MemberType:         m.MemberType,
		Status:             m.Status,
		MaxBooksAllowed:    m.MaxBooksAllowed,
		MaxDaysAllowed:     m.MaxDaysAllowed,
		TotalBooksBorrowed: m.TotalBooksBorrowed,
		CurrentFines:       m.CurrentFines,
		CanReserve:         m.CanReserve,
		CanRenew:           m.CanRenew,
		CreatedAt:          m.CreatedAt,
	}
	if m.Profile != nil {
		resp.Name = m.Profile.Name
		resp.Phone = m.Profile.Phone
		if m.Profile.User != nil {
			resp.Email = m.Profile.User.Email
		}
	}
	return resp
}

// BorrowingTransaction represents borrowing_transactions table (one per loan event)
type BorrowingTransaction struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	SchoolID        uint       `gorm:"index;not null" json:"school_id"`
	MemberID        uint       `gorm:"index;not null" json:"member_id"`
	BookCopyID      uint       `gorm:"index;not null" json:"book_copy_id"`
	CheckoutDate    time.Time  `gorm:"not null" json:"checkout_date"`
	DueDate         time.Time  `gorm:"not null" json:"due_date"`
	ReturnDate      *time.Time `json:"return_date"`
	Status          string     `gorm:"size:20;not null;default:'active';index" json:"status"`
	FineAmount      float64    `gorm:"type:decimal(10,2);not null;default:0" json:"fine_amount"`
	ReturnCondition string     `gorm:"size:20" json:"return_condition"`
	Notes           string     `gorm:"type:text" json:"notes"`
	IssuedBy        uint       `gorm:"not null" json:"issued_by"`
	ReturnedTo      *uint      `json:"returned_to"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Member   *LibraryMember `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	BookCopy *BookCopy      `gorm:"foreignKey:BookCopyID" json:"book_copy,omitempty"`
}

func (BorrowingTransaction) TableName() string {
	return "borrowing_transactions"
}

// IsOverdue reports whether the loan is past due at the given time.
func (t *BorrowingTransaction) IsOverdue(at time.Time) bool {
	return t.Status == TransactionActive && at.After(t.DueDate)
}

// TransactionResponse DTO (joined member/book display fields)
type TransactionResponse struct {
	ID              uint       `json:"id"`
	SchoolID        uint       `json:"school_id"`
	MemberID        uint       `json:"member_id"`
	MemberName      string     `json:"member_name,omitempty"`
	CardNumber      string     `json:"card_number,omitempty"`
	BookCopyID      uint       `json:"book_copy_id"`
	BookTitle       string     `json:"book_title,omitempty"`
	Barcode         string     `json:"barcode,omitempty"`
	CheckoutDate    time.Time  `json:"checkout_date"`
	DueDate         time.Time  `json:"due_date"`
	ReturnDate      *time.Time `json:"return_date"`
	Status          string     `json:"status"`
	FineAmount      float64    `json:"fine_amount"`
	ReturnCondition string     `json:"return_condition,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

func (t *BorrowingTransaction) ToResponse() *TransactionResponse {
	resp := &TransactionResponse{
		ID:              t.ID,
		SchoolID:        t.SchoolID,
		MemberID:        t.MemberID,
		BookCopyID:      t.BookCopyID,
		CheckoutDate:    t.CheckoutDate,
		DueDate:         t.DueDate,
		ReturnDate:      t.ReturnDate,
		Status:          t.Status,
		FineAmount:      t.FineAmount,
		ReturnCondition: t.ReturnCondition,
		Notes:           t.Notes,
	}
	if t.Member != nil {
		resp.CardNumber = t.Member.CardNumber
		if t.Member.Profile != nil {
			resp.MemberName = t.Member.Profile.Name
		}
	}
	if t.BookCopy != nil {
		resp.Barcode = t.BookCopy.Barcode
		if t.BookCopy.Book != nil {
			resp.BookTitle = t.BookCopy.Book.Title
		}
	}
	return resp
}

// Fine represents fines table (standalone debt record)
type Fine struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	SchoolID      uint       `gorm:"index;not null" json:"school_id"`
	TransactionID uint       `gorm:"index;not null" json:"transaction_id"`
	MemberID      uint       `gorm:"index;not null" json:"member_id"`
	Amount        float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        string     `gorm:"size:20;not null;default:'unpaid'" json:"status"`
	PaidAt        *time.Time `json:"paid_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Transaction *BorrowingTransaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
	Member      *LibraryMember        `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Fine) TableName() string {
	return "fines"
}
