package services

import (
	"context"
	"testing"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserAdmin(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.users.CreateUser(context.Background(), &CreateUserInput{
		Email:    "principal@test.local",
		Name:     "Principal",
		Role:     models.RoleAdmin,
		SchoolID: env.school.ID,
	}, "hashed-password")
	require.NoError(t, err)

	assert.Equal(t, models.RoleAdmin, profile.Role)
	assert.Equal(t, env.school.ID, profile.SchoolID)
	require.NotNil(t, profile.User)
	assert.True(t, profile.User.IsActive)

	var admin models.Admin
	require.NoError(t, env.db.Where("profile_id = ?", profile.ID).First(&admin).Error)
	assert.True(t, admin.CanManageFinances)
	assert.True(t, admin.CanManageSubAdmins)
}

func TestCreateUserTeacher(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.users.CreateUser(context.Background(), &CreateUserInput{
		Email:    "teacher@test.local",
		Name:     "Teacher",
		Role:     models.RoleTeacher,
		SchoolID: env.school.ID,
		Subject:  "Mathematics",
	}, "hashed-password")
	require.NoError(t, err)

	var teacher models.Teacher
	require.NoError(t, env.db.Where("profile_id = ?", profile.ID).First(&teacher).Error)
	assert.Contains(t, teacher.EmployeeID, "EMP-")
	assert.Equal(t, "Mathematics", teacher.Subject)
	assert.True(t, teacher.IsActive)
}

func TestCreateUserStudentDefaults(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.users.CreateUser(context.Background(), &CreateUserInput{
		Email:    "student@test.local",
		Name:     "Student",
		Role:     models.RoleStudent,
		SchoolID: env.school.ID,
		Grade:    "9",
	}, "hashed-password")
	require.NoError(t, err)

	var student models.Student
	require.NoError(t, env.db.Where("profile_id = ?", profile.ID).First(&student).Error)
	assert.Contains(t, student.AdmissionNo, "ADM-")
	assert.Equal(t, models.AdmissionTypeManual, student.AdmissionType)
	assert.Equal(t, "9", student.Grade)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	input := &CreateUserInput{
		Email:    "dup@test.local",
		Name:     "First",
		Role:     models.RoleTeacher,
		SchoolID: env.school.ID,
	}
	_, err := env.users.CreateUser(context.Background(), input, "hashed-password")
	require.NoError(t, err)

	_, err = env.users.CreateUser(context.Background(), input, "hashed-password")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestCreateUserInvalidRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.CreateUser(context.Background(), &CreateUserInput{
		Email:    "x@test.local",
		Name:     "X",
		Role:     "superuser",
		SchoolID: env.school.ID,
	}, "hashed-password")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateUserCompensatesFailedRoleRecord(t *testing.T) {
	env := newTestEnv(t)

	// With the teachers table gone, the role record insert must fail and
	// the identity and profile rows already created must be removed.
	require.NoError(t, env.db.Migrator().DropTable(&models.Teacher{}))

	_, err := env.users.CreateUser(context.Background(), &CreateUserInput{
		Email:    "half@test.local",
		Name:     "Half Provisioned",
		Role:     models.RoleTeacher,
		SchoolID: env.school.ID,
	}, "hashed-password")
	require.Error(t, err)

	var userCount int64
	require.NoError(t, env.db.Unscoped().Model(&models.User{}).
		Where("email = ?", "half@test.local").Count(&userCount).Error)
	assert.Zero(t, userCount)

	var profileCount int64
	require.NoError(t, env.db.Unscoped().Model(&models.Profile{}).
		Where("name = ?", "Half Provisioned").Count(&profileCount).Error)
	assert.Zero(t, profileCount)
}

func TestListTeachers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createUser(t, models.RoleTeacher, "t1@test.local", env.school.ID)
	env.createUser(t, models.RoleTeacher, "t2@test.local", env.school.ID)

	teachers, total, err := env.users.ListTeachers(ctx, &ListInput{
		SchoolID: env.school.ID,
		Page:     1,
		Limit:    10,
	}, env.adminUserID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, teachers, 2)
	assert.NotEmpty(t, teachers[0].Name)
	assert.NotEmpty(t, teachers[0].Email)
}

func TestListStudentsOtherSchoolHidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other := &models.School{Name: "Other School", Code: "OTHER"}
	require.NoError(t, env.db.Create(other).Error)

	env.createUser(t, models.RoleStudent, "mine@test.local", env.school.ID)
	env.createUser(t, models.RoleStudent, "theirs@test.local", other.ID)

	students, total, err := env.users.ListStudents(ctx, &ListInput{
		SchoolID: env.school.ID,
		Page:     1,
		Limit:    10,
	}, env.adminUserID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, students, 1)
	assert.Equal(t, "mine@test.local", students[0].Email)

	// Listing the other school with this school's actor is refused
	_, _, err = env.users.ListStudents(ctx, &ListInput{
		SchoolID: other.ID,
		Page:     1,
		Limit:    10,
	}, env.adminUserID)
	assert.ErrorIs(t, err, domain.ErrSchoolMismatch)
}

func TestGetTeacher(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	profile, err := env.users.CreateUser(ctx, &CreateUserInput{
		Email:    "teacher@test.local",
		Name:     "Teacher",
		Role:     models.RoleTeacher,
		SchoolID: env.school.ID,
		Subject:  "Physics",
	}, "hashed-password")
	require.NoError(t, err)

	teacher, err := env.users.GetTeacher(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, teacher.ProfileID)
	assert.Equal(t, "Physics", teacher.Subject)
	require.NotNil(t, teacher.Profile)
	assert.Equal(t, "Teacher", teacher.Profile.Name)

	_, err = env.users.GetTeacher(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	profile := env.createUser(t, models.RoleTeacher, "t1@test.local", env.school.ID)

	name := "Renamed"
	phone := "0812345678"
	updated, err := env.users.UpdateProfile(ctx, profile.UserID, &UpdateProfileInput{
		Name:  &name,
		Phone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "0812345678", updated.Phone)

	// Role and school stay as provisioned
	assert.Equal(t, models.RoleTeacher, updated.Role)
	assert.Equal(t, env.school.ID, updated.SchoolID)

	_, err = env.users.UpdateProfile(ctx, 9999, &UpdateProfileInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestSetUserActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	profile := env.createUser(t, models.RoleStudent, "s1@test.local", env.school.ID)

	require.NoError(t, env.users.SetUserActive(ctx, profile.UserID, false))

	var user models.User
	require.NoError(t, env.db.First(&user, profile.UserID).Error)
	assert.False(t, user.IsActive)

	assert.ErrorIs(t, env.users.SetUserActive(ctx, 9999, false), ErrUserNotFound)
}
