package config

import (
	"log"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	school, err := s.seedDefaultSchool()
	if err != nil {
		return err
	}

	if err := s.seedAdminUser(school); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedDefaultSchool creates the first tenant if none exists
func (s *Seeder) seedDefaultSchool() (*models.School, error) {
	var school models.School
	err := s.db.First(&school).Error
	if err == nil {
		return &school, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	school = models.School{
		Name: "Demo High School",
		Code: "DEMO",
	}
	if err := s.db.Create(&school).Error; err != nil {
		return nil, err
	}

	log.Printf("✅ Default school created: %s", school.Name)
	return &school, nil
}

// seedAdminUser seeds a default admin account.
// Development/testing only; production admins are created through the
// provisioning endpoint.
func (s *Seeder) seedAdminUser(school *models.School) error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	user := &models.User{
		Email:    "admin@schoolhub.app",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return err
	}

	profile := &models.Profile{
		UserID:   user.ID,
		SchoolID: school.ID,
		Role:     models.RoleAdmin,
		Name:     "Default Admin",
	}
	if err := s.db.Create(profile).Error; err != nil {
		return err
	}

	admin := &models.Admin{
		ProfileID:          profile.ID,
		CanManageFinances:  true,
		CanManageSubAdmins: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", user.Email)
	return nil
}
