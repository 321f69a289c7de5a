package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Tenancy & Identity Tables
// ============================================================

// School represents schools table (tenant root)
type School struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:150;not null" json:"name"`
	Code      string         `gorm:"uniqueIndex;size:20;not null" json:"code"`
	Address   string         `gorm:"size:255" json:"address"`
	Phone     string         `gorm:"size:20" json:"phone"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (School) TableName() string {
	return "schools"
}

// User roles
const (
	RoleAdmin    = "admin"
	RoleSubAdmin = "sub-admin"
	RoleTeacher  = "teacher"
	RoleStudent  = "student"
)

// ValidRole reports whether role is one of the enumerated user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSubAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User represents users table (identity record)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;not null" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Profile represents profiles table (1:1 with users, carries school affiliation)
type Profile struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	SchoolID  uint           `gorm:"index;not null" json:"school_id"`
	Role      string         `gorm:"size:20;not null" json:"role"`
	Name      string         `gorm:"size:150;not null" json:"name"`
	Phone     string         `gorm:"size:20" json:"phone"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	School *School `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileResponse DTO
type ProfileResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	SchoolID  uint      `json:"school_id"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) ToResponse() *ProfileResponse {
	resp := &ProfileResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		SchoolID:  p.SchoolID,
		Role:      p.Role,
		Name:      p.Name,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
	}
	if p.User != nil {
		resp.Email = p.User.Email
		resp.IsActive = p.User.IsActive
	}
	return resp
}

// ============================================================
// Role-specific records (id == owning profile id, created once)
// ============================================================

// Admin represents admins table
type Admin struct {
	ProfileID          uint      `gorm:"primaryKey" json:"profile_id"`
	CanManageFinances  bool      `gorm:"default:true" json:"can_manage_finances"`
	CanManageSubAdmins bool      `gorm:"default:true" json:"can_manage_sub_admins"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

func (Admin) TableName() string {
	return "admins"
}

// SubAdmin represents sub_admins table
type SubAdmin struct {
	ProfileID   uint      `gorm:"primaryKey" json:"profile_id"`
	Permissions string    `gorm:"size:255" json:"permissions"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

func (SubAdmin) TableName() string {
	return "sub_admins"
}

// Teacher represents teachers table
type Teacher struct {
	ProfileID     uint      `gorm:"primaryKey" json:"profile_id"`
	EmployeeID    string    `gorm:"uniqueIndex;size:30;not null" json:"employee_id"`
	Subject       string    `gorm:"size:100" json:"subject"`
	Qualification string    `gorm:"size:150" json:"qualification"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	JoinedAt      time.Time `gorm:"autoCreateTime" json:"joined_at"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

func (Teacher) TableName() string {
	return "teachers"
}

// TeacherResponse DTO (joined with profile fields)
type TeacherResponse struct {
	ProfileID     uint      `json:"profile_id"`
	EmployeeID    string    `json:"employee_id"`
	Name          string    `json:"name,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	SchoolID      uint      `json:"school_id,omitempty"`
	Subject       string    `json:"subject"`
	Qualification string    `json:"qualification"`
	IsActive      bool      `json:"is_active"`
	JoinedAt      time.Time `json:"joined_at"`
}

func (t *Teacher) ToResponse() *TeacherResponse {
	resp := &TeacherResponse{
		ProfileID:     t.ProfileID,
		EmployeeID:    t.EmployeeID,
		Subject:       t.Subject,
		Qualification: t.Qualification,
		IsActive:      t.IsActive,
		JoinedAt:      t.JoinedAt,
	}
	if t.Profile != nil {
		resp.Name = t.Profile.Name
		resp.Phone = t.Profile.Phone
		resp.SchoolID = t.Profile.SchoolID
		if t.Profile.User != nil {
			resp.Email = t.Profile.User.Email
		}
	}
	return resp
}

// Admission types
const (
	AdmissionTypeManual = "manual"
	AdmissionTypeOnline = "online"
)

// Student represents students table
type Student struct {
	ProfileID     uint      `gorm:"primaryKey" json:"profile_id"`
	AdmissionNo   string    `gorm:"uniqueIndex;size:30;not null" json:"admission_no"`
	AdmissionType string    `gorm:"size:20;not null;default:'manual'" json:"admission_type"`
	Grade         string    `gorm:"size:20" json:"grade"`
	Section       string    `gorm:"size:10" json:"section"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

func (Student) TableName() string {
	return "students"
}

// StudentResponse DTO (joined with profile fields)
type StudentResponse struct {
	ProfileID     uint      `json:"profile_id"`
	AdmissionNo   string    `json:"admission_no"`
	AdmissionType string    `json:"admission_type"`
	Name          string    `json:"name,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	SchoolID      uint      `json:"school_id,omitempty"`
	Grade         string    `json:"grade"`
	Section       string    `json:"section"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s *Student) ToResponse() *StudentResponse {
	resp := &StudentResponse{
		ProfileID:     s.ProfileID,
		AdmissionNo:   s.AdmissionNo,
		AdmissionType: s.AdmissionType,
		Grade:         s.Grade,
		Section:       s.Section,
		CreatedAt:     s.CreatedAt,
	}
	if s.Profile != nil {
		resp.Name = s.Profile.Name
		resp.Phone = s.Profile.Phone
		resp.SchoolID = s.Profile.SchoolID
		if s.Profile.User != nil {
			resp.Email = s.Profile.User.Email
		}
	}
	return resp
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Tenancy & identity
		&School{},
		&User{},
		&Profile{},
		&RefreshToken{},
		// Role records
		&Admin{},
		&SubAdmin{},
		&Teacher{},
		&Student{},
		// Library
		&Book{},
		&BookCopy{},
		&LibraryMember{},
		&BorrowingTransaction{},
		&Fine{},
		// Fees & admissions
		&FeePayment{},
		&AdmissionApplication{},
	)
}
