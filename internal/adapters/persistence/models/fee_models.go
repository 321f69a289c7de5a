package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Fee & Admission Tables
// ============================================================

// Fee payment statuses
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// Admission application statuses
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// FeePayment represents fee_payments table
type FeePayment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	SchoolID    uint           `gorm:"index;not null" json:"school_id"`
	StudentID   uint           `gorm:"index;not null" json:"student_id"`
	Amount      float64        `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method      string         `gorm:"size:30;not null" json:"method"`
	ReferenceNo string         `gorm:"size:50" json:"reference_no"`
	Description string         `gorm:"size:255" json:"description"`
	Status      string         `gorm:"size:20;not null;default:'pending'" json:"status"`
	VerifiedBy  *uint          `json:"verified_by"`
	VerifiedAt  *time.Time     `json:"verified_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (FeePayment) TableName() string {
	return "fee_payments"
}

// PaymentResponse DTO
type PaymentResponse struct {
	ID          uint       `json:"id"`
	SchoolID    uint       `json:"school_id"`
	StudentID   uint       `json:"student_id"`
	StudentName string     `json:"student_name,omitempty"`
	Amount      float64    `json:"amount"`
	Method      string     `json:"method"`
	ReferenceNo string     `json:"reference_no"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	VerifiedBy  *uint      `json:"verified_by"`
	VerifiedAt  *time.Time `json:"verified_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (p *FeePayment) ToResponse() *PaymentResponse {
	resp := &PaymentResponse{
		ID:          p.ID,
		SchoolID:    p.SchoolID,
		StudentID:   p.StudentID,
		Amount:      p.Amount,
		Method:      p.Method,
		ReferenceNo: p.ReferenceNo,
		Description: p.Description,
		Status:      p.Status,
		VerifiedBy:  p.VerifiedBy,
		VerifiedAt:  p.VerifiedAt,
		CreatedAt:   p.CreatedAt,
	}
	if p.Student != nil && p.Student.Profile != nil {
		resp.StudentName = p.Student.Profile.Name
	}
	return resp
}

// AdmissionApplication represents admission_applications table
type AdmissionApplication struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	SchoolID      uint           `gorm:"index;not null" json:"school_id"`
	ApplicantName string         `gorm:"size:150;not null" json:"applicant_name"`
	Email         string         `gorm:"size:100;not null" json:"email"`
	Phone         string         `gorm:"size:20" json:"phone"`
	Grade         string         `gorm:"size:20" json:"grade"`
	GuardianName  string         `gorm:"size:150" json:"guardian_name"`
	Status        string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Remark        string         `gorm:"type:text" json:"remark"`
	ReviewedBy    *uint          `json:"reviewed_by"`
	ReviewedAt    *time.Time     `json:"reviewed_at"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AdmissionApplication) TableName() string {
	return "admission_applications"
}
