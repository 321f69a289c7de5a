package services

import (
	"context"
	"testing"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with all tables migrated.
// Connections are capped at one so every query sees the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// testEnv wires the full service stack against one test database with a
// seeded school and an admin actor.
type testEnv struct {
	db *gorm.DB

	users      *UserService
	library    *LibraryService
	catalog    *CatalogService
	fees       *FeeService
	admissions *AdmissionService
	dashboard  *DashboardService

	school      *models.School
	admin       *models.Profile
	adminUserID uint
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)

	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	copyRepo := repositories.NewBookCopyRepository(db)
	memberRepo := repositories.NewLibraryMemberRepository(db)
	txRepo := repositories.NewBorrowingTransactionRepository(db)
	fineRepo := repositories.NewFineRepository(db)
	paymentRepo := repositories.NewFeePaymentRepository(db)
	admissionRepo := repositories.NewAdmissionRepository(db)

	userService := NewUserService(userRepo, profileRepo)
	notifier := NewNotificationService()
	env := &testEnv{
		db:         db,
		users:      userService,
		library:    NewLibraryService(memberRepo, txRepo, fineRepo, copyRepo, profileRepo),
		catalog:    NewCatalogService(bookRepo, copyRepo, txRepo, profileRepo),
		fees:       NewFeeService(paymentRepo, profileRepo, notifier),
		admissions: NewAdmissionService(admissionRepo, profileRepo, userService, notifier),
		dashboard:  NewDashboardService(db, profileRepo, fineRepo, paymentRepo, admissionRepo),
	}

	env.school = &models.School{Name: "Test High School", Code: "TEST"}
	require.NoError(t, db.Create(env.school).Error)

	env.admin = env.createUser(t, models.RoleAdmin, "admin@test.local", env.school.ID)
	env.adminUserID = env.admin.UserID
	return env
}

// createUser provisions an identity through the real service path.
// The stored password hash is a placeholder; hashing happens upstream.
func (e *testEnv) createUser(t *testing.T, role, email string, schoolID uint) *models.Profile {
	t.Helper()

	profile, err := e.users.CreateUser(context.Background(), &CreateUserInput{
		Email:    email,
		Name:     "Test " + role,
		Role:     role,
		SchoolID: schoolID,
	}, "hashed-password")
	require.NoError(t, err)
	return profile
}

// createStudentMember provisions a student and enrolls it as a library member.
func (e *testEnv) createStudentMember(t *testing.T, email string) *models.LibraryMember {
	t.Helper()

	profile := e.createUser(t, models.RoleStudent, email, e.school.ID)
	member, err := e.library.CreateMember(context.Background(), &CreateMemberInput{
		SchoolID:   e.school.ID,
		ProfileID:  profile.ID,
		MemberType: models.MemberTypeStudent,
	}, e.adminUserID)
	require.NoError(t, err)
	return member
}

// createBookCopy seeds a catalog record with one physical copy.
func (e *testEnv) createBookCopy(t *testing.T, title, barcode string, referenceOnly bool) *models.BookCopy {
	t.Helper()

	book := &models.Book{
		SchoolID:        e.school.ID,
		Title:           title,
		Author:          "Test Author",
		IsReferenceOnly: referenceOnly,
	}
	require.NoError(t, e.db.Create(book).Error)

	c := &models.BookCopy{
		BookID:    book.ID,
		SchoolID:  e.school.ID,
		Barcode:   barcode,
		Status:    models.CopyStatusAvailable,
		Condition: models.ConditionGood,
	}
	require.NoError(t, e.db.Create(c).Error)
	return c
}
