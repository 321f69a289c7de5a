package repositories

import (
	"context"

	"schoolhub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// profileRepository implements ProfileRepository interface
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create creates a new profile
func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByID gets a profile by ID with its user
func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Preload("User").First(&profile, id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByUserID gets a profile by its owning user ID
func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update updates a profile
func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// Delete hard deletes a profile (compensating step of provisioning)
func (r *profileRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&models.Profile{}, id).Error
}

// CreateAdmin creates an admin role record
func (r *profileRepository) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

// CreateSubAdmin creates a sub-admin role record
func (r *profileRepository) CreateSubAdmin(ctx context.Context, subAdmin *models.SubAdmin) error {
	return r.db.WithContext(ctx).Create(subAdmin).Error
}

// CreateTeacher creates a teacher role record
func (r *profileRepository) CreateTeacher(ctx context.Context, teacher *models.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

// CreateStudent creates a student role record
func (r *profileRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// GetTeacher gets a teacher record by profile ID
func (r *profileRepository) GetTeacher(ctx context.Context, profileID uint) (*models.Teacher, error) {
	var teacher models.Teacher
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Profile.User").
		Where("profile_id = ?", profileID).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// GetStudent gets a student record by profile ID
func (r *profileRepository) GetStudent(ctx context.Context, profileID uint) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Profile.User").
		Where("profile_id = ?", profileID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// ListTeachers lists teachers of a school with optional name search
func (r *profileRepository) ListTeachers(ctx context.Context, schoolID uint, search string, offset, limit int) ([]*models.Teacher, int64, error) {
	var teachers []*models.Teacher
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Teacher{}).
		Joins("JOIN profiles ON profiles.id = teachers.profile_id").
		Where("profiles.school_id = ?", schoolID)

	if search != "" {
		query = query.Where("profiles.name LIKE ?", "%"+search+"%")
	}

	query.Count(&total)

	err := query.
		Preload("Profile").
		Preload("Profile.User").
		Order("teachers.joined_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&teachers).Error

	return teachers, total, err
}

// ListStudents lists students of a school with optional name search
func (r *profileRepository) ListStudents(ctx context.Context, schoolID uint, search string, offset, limit int) ([]*models.Student, int64, error) {
	var students []*models.Student
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Joins("JOIN profiles ON profiles.id = students.profile_id").
		Where("profiles.school_id = ?", schoolID)

	if search != "" {
		query = query.Where("profiles.name LIKE ?", "%"+search+"%")
	}

	query.Count(&total)

	err := query.
		Preload("Profile").
		Preload("Profile.User").
		Order("students.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&students).Error

	return students, total, err
}
