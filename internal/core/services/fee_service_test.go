package services

import (
	"context"
	"testing"
	"time"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.createUser(t, models.RoleStudent, "s1@test.local", env.school.ID)

	payment, err := env.fees.RecordPayment(ctx, &RecordPaymentInput{
		SchoolID:    env.school.ID,
		StudentID:   student.ID,
		Amount:      2500,
		Method:      "cash",
		Description: "Term 1 tuition",
	}, env.adminUserID)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Equal(t, 2500.0, payment.Amount)
	assert.Nil(t, payment.VerifiedBy)
	assert.Nil(t, payment.VerifiedAt)
}

func TestRecordPaymentStudentChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.fees.RecordPayment(ctx, &RecordPaymentInput{
		SchoolID:  env.school.ID,
		StudentID: 9999,
		Amount:    100,
		Method:    "cash",
	}, env.adminUserID)
	assert.ErrorIs(t, err, ErrStudentNotFound)

	// Student of a different school cannot receive a payment here
	other := &models.School{Name: "Other School", Code: "OTHER"}
	require.NoError(t, env.db.Create(other).Error)
	otherStudent := env.createUser(t, models.RoleStudent, "os@test.local", other.ID)

	_, err = env.fees.RecordPayment(ctx, &RecordPaymentInput{
		SchoolID:  env.school.ID,
		StudentID: otherStudent.ID,
		Amount:    100,
		Method:    "cash",
	}, env.adminUserID)
	assert.ErrorIs(t, err, domain.ErrSchoolMismatch)
}

func TestVerifyPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.createUser(t, models.RoleStudent, "s1@test.local", env.school.ID)
	payment, err := env.fees.RecordPayment(ctx, &RecordPaymentInput{
		SchoolID:  env.school.ID,
		StudentID: student.ID,
		Amount:    100,
		Method:    "bank_transfer",
	}, env.adminUserID)
	require.NoError(t, err)

	verifiedAt := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	env.fees.now = func() time.Time { return verifiedAt }

	verified, err := env.fees.VerifyPayment(ctx, env.school.ID, payment.ID, env.adminUserID)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPaid, verified.Status)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, env.admin.ID, *verified.VerifiedBy)
	require.NotNil(t, verified.VerifiedAt)
	assert.Equal(t, verifiedAt, verified.VerifiedAt.UTC())

	// Verifying twice is a conflict, not a no-op
	_, err = env.fees.VerifyPayment(ctx, env.school.ID, payment.ID, env.adminUserID)
	assert.ErrorIs(t, err, ErrPaymentAlreadyPaid)
}

func TestVerifyPaymentNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.fees.VerifyPayment(context.Background(), env.school.ID, 9999, env.adminUserID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestListPayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.createUser(t, models.RoleStudent, "s1@test.local", env.school.ID)
	for _, amount := range []float64{100, 200} {
		_, err := env.fees.RecordPayment(ctx, &RecordPaymentInput{
			SchoolID:  env.school.ID,
			StudentID: student.ID,
			Amount:    amount,
			Method:    "cash",
		}, env.adminUserID)
		require.NoError(t, err)
	}

	payments, total, err := env.fees.ListPayments(ctx, env.school.ID, "", 0, 10, env.adminUserID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, payments, 2)

	// Status filter
	_, total, err = env.fees.ListPayments(ctx, env.school.ID, models.PaymentPaid, 0, 10, env.adminUserID)
	require.NoError(t, err)
	assert.Zero(t, total)

	byStudent, err := env.fees.ListStudentPayments(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)
}
