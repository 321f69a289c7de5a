package repositories

import (
	"context"

	"schoolhub/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ProfileRepository defines profile repository interface
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, id uint) error
	CreateAdmin(ctx context.Context, admin *models.Admin) error
	CreateSubAdmin(ctx context.Context, subAdmin *models.SubAdmin) error
	CreateTeacher(ctx context.Context, teacher *models.Teacher) error
	CreateStudent(ctx context.Context, student *models.Student) error
	GetTeacher(ctx context.Context, profileID uint) (*models.Teacher, error)
	GetStudent(ctx context.Context, profileID uint) (*models.Student, error)
	ListTeachers(ctx context.Context, schoolID uint, search string, offset, limit int) ([]*models.Teacher, int64, error)
	ListStudents(ctx context.Context, schoolID uint, search string, offset, limit int) ([]*models.Student, int64, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}
