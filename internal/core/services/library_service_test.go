package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	profile := env.createUser(t, models.RoleStudent, "member@test.local", env.school.ID)

	member, err := env.library.CreateMember(ctx, &CreateMemberInput{
		SchoolID:   env.school.ID,
		ProfileID:  profile.ID,
		MemberType: models.MemberTypeStudent,
	}, env.adminUserID)
	require.NoError(t, err)

	assert.Equal(t, models.MemberActive, member.Status)
	assert.Equal(t, 3, member.MaxBooksAllowed)
	assert.Equal(t, 14, member.MaxDaysAllowed)
	assert.Contains(t, member.CardNumber, "LIB-")
	assert.True(t, member.CanReserve)
	assert.True(t, member.CanRenew)

	// Second enrollment for the same profile is refused
	_, err = env.library.CreateMember(ctx, &CreateMemberInput{
		SchoolID:   env.school.ID,
		ProfileID:  profile.ID,
		MemberType: models.MemberTypeStudent,
	}, env.adminUserID)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestCreateMemberTeacherDefaults(t *testing.T) {
	env := newTestEnv(t)

	profile := env.createUser(t, models.RoleTeacher, "teacher@test.local", env.school.ID)
	member, err := env.library.CreateMember(context.Background(), &CreateMemberInput{
		SchoolID:   env.school.ID,
		ProfileID:  profile.ID,
		MemberType: models.MemberTypeTeacher,
	}, env.adminUserID)
	require.NoError(t, err)

	assert.Equal(t, 5, member.MaxBooksAllowed)
	assert.Equal(t, 30, member.MaxDaysAllowed)
}

func TestCheckoutDueDateFromMemberType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)

	checkoutAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	env.library.now = func() time.Time { return checkoutAt }

	tx, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	require.NoError(t, err)

	// Student memberships borrow for 14 days
	assert.Equal(t, checkoutAt.AddDate(0, 0, 14), tx.DueDate)
	assert.Equal(t, models.TransactionActive, tx.Status)
	assert.Equal(t, env.admin.ID, tx.IssuedBy)

	var stored models.BookCopy
	require.NoError(t, env.db.First(&stored, c.ID).Error)
	assert.Equal(t, models.CopyStatusCheckedOut, stored.Status)

	var storedMember models.LibraryMember
	require.NoError(t, env.db.First(&storedMember, member.ID).Error)
	assert.Equal(t, 1, storedMember.TotalBooksBorrowed)
}

func TestCheckoutCopyNotAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)
	require.NoError(t, env.db.Model(c).Update("status", models.CopyStatusCheckedOut).Error)

	_, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	assert.ErrorIs(t, err, ErrCopyNotAvailable)

	// A refused checkout leaves no loan row and the copy untouched
	var count int64
	require.NoError(t, env.db.Model(&models.BorrowingTransaction{}).Count(&count).Error)
	assert.Zero(t, count)

	var stored models.BookCopy
	require.NoError(t, env.db.First(&stored, c.ID).Error)
	assert.Equal(t, models.CopyStatusCheckedOut, stored.Status)
}

func TestCheckoutReferenceOnly(t *testing.T) {
	env := newTestEnv(t)

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Oxford Dictionary", "BC-0001", true)

	_, err := env.library.Checkout(context.Background(), &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	assert.ErrorIs(t, err, ErrReferenceOnly)

	// A refused checkout leaves no loan row and the copy untouched
	var count int64
	require.NoError(t, env.db.Model(&models.BorrowingTransaction{}).Count(&count).Error)
	assert.Zero(t, count)

	var stored models.BookCopy
	require.NoError(t, env.db.First(&stored, c.ID).Error)
	assert.Equal(t, models.CopyStatusAvailable, stored.Status)
}

func TestCheckoutMemberChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)

	_, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: "LIB-UNKNOWN",
		Barcode:    c.Barcode,
	}, env.adminUserID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	member := env.createStudentMember(t, "s1@test.local")
	require.NoError(t, env.db.Model(&models.LibraryMember{}).
		Where("id = ?", member.ID).
		Update("status", models.MemberSuspended).Error)

	_, err = env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	assert.ErrorIs(t, err, ErrMemberInactive)
}

func TestCheckoutBorrowLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")

	// Student limit is 3: three checkouts succeed, the fourth is refused
	barcodes := []string{"BC-0001", "BC-0002", "BC-0003", "BC-0004"}
	for _, barcode := range barcodes {
		env.createBookCopy(t, "Book "+barcode, barcode, false)
	}

	for _, barcode := range barcodes[:3] {
		_, err := env.library.Checkout(ctx, &CheckoutInput{
			SchoolID:   env.school.ID,
			CardNumber: member.CardNumber,
			Barcode:    barcode,
		}, env.adminUserID)
		require.NoError(t, err)
	}

	_, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    barcodes[3],
	}, env.adminUserID)

	var limitErr *BorrowLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 3, limitErr.Max)
	assert.Equal(t, "reached maximum borrowing limit of 3 books", err.Error())
}

func TestCheckoutBlockedByUnpaidFine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)

	require.NoError(t, env.db.Create(&models.Fine{
		SchoolID:      env.school.ID,
		TransactionID: 99,
		MemberID:      member.ID,
		Amount:        1.50,
		Status:        models.FineUnpaid,
	}).Error)

	_, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	assert.ErrorIs(t, err, ErrUnpaidFines)

	// A paid fine does not block
	require.NoError(t, env.db.Model(&models.Fine{}).
		Where("member_id = ?", member.ID).
		Update("status", models.FinePaid).Error)

	_, err = env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	assert.NoError(t, err)
}

func TestCheckoutSchoolMismatch(t *testing.T) {
	env := newTestEnv(t)

	other := &models.School{Name: "Other School", Code: "OTHER"}
	require.NoError(t, env.db.Create(other).Error)
	outsider := env.createUser(t, models.RoleAdmin, "outsider@test.local", other.ID)

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)

	_, err := env.library.Checkout(context.Background(), &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, outsider.UserID)
	assert.ErrorIs(t, err, domain.ErrSchoolMismatch)
}

func TestCheckoutCompensatesFailedCopyFlip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)

	// Block the status flip so the transaction insert must be undone
	require.NoError(t, env.db.Exec(`CREATE TRIGGER block_copy_update
		BEFORE UPDATE ON book_copies
		BEGIN SELECT RAISE(ABORT, 'copy update blocked'); END`).Error)

	_, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	require.Error(t, err)

	var count int64
	require.NoError(t, env.db.Model(&models.BorrowingTransaction{}).Count(&count).Error)
	assert.Zero(t, count, "no loan row may survive a failed copy flip")
}

func TestReturnOnTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)

	env.library.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }
	tx, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	require.NoError(t, err)

	env.library.now = func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) }
	returned, fine, err := env.library.Return(ctx, &ReturnInput{
		SchoolID:      env.school.ID,
		TransactionID: tx.ID,
	}, env.adminUserID)
	require.NoError(t, err)

	assert.Zero(t, fine)
	assert.Equal(t, models.TransactionReturned, returned.Status)
	assert.Equal(t, models.ConditionGood, returned.ReturnCondition)
	require.NotNil(t, returned.ReturnedTo)
	assert.Equal(t, env.admin.ID, *returned.ReturnedTo)

	var stored models.BookCopy
	require.NoError(t, env.db.First(&stored, c.ID).Error)
	assert.Equal(t, models.CopyStatusAvailable, stored.Status)

	var fineCount int64
	require.NoError(t, env.db.Model(&models.Fine{}).Count(&fineCount).Error)
	assert.Zero(t, fineCount)
}

func TestReturnOverdueFine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)

	// Checkout on Dec 27 with a 14-day loan puts the due date at Jan 10
	env.library.now = func() time.Time { return time.Date(2023, 12, 27, 0, 0, 0, 0, time.UTC) }
	tx, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), tx.DueDate)

	// Returned Jan 13: three days late at 0.50/day
	env.library.now = func() time.Time { return time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC) }
	returned, fine, err := env.library.Return(ctx, &ReturnInput{
		SchoolID:      env.school.ID,
		TransactionID: tx.ID,
	}, env.adminUserID)
	require.NoError(t, err)

	assert.Equal(t, 1.50, fine)
	assert.Equal(t, 1.50, returned.FineAmount)

	var fineRow models.Fine
	require.NoError(t, env.db.Where("transaction_id = ?", tx.ID).First(&fineRow).Error)
	assert.Equal(t, 1.50, fineRow.Amount)
	assert.Equal(t, models.FineUnpaid, fineRow.Status)
	assert.Equal(t, member.ID, fineRow.MemberID)

	var storedMember models.LibraryMember
	require.NoError(t, env.db.First(&storedMember, member.ID).Error)
	assert.Equal(t, 1.50, storedMember.CurrentFines)
}

func TestReturnPartialDayRoundsUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)

	env.library.now = func() time.Time { return time.Date(2023, 12, 27, 0, 0, 0, 0, time.UTC) }
	tx, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	require.NoError(t, err)

	// Six hours late still counts as one full day
	env.library.now = func() time.Time { return time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC) }
	_, fine, err := env.library.Return(ctx, &ReturnInput{
		SchoolID:      env.school.ID,
		TransactionID: tx.ID,
	}, env.adminUserID)
	require.NoError(t, err)
	assert.Equal(t, 0.50, fine)
}

func TestReturnDamagedCopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)

	tx, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	require.NoError(t, err)

	_, _, err = env.library.Return(ctx, &ReturnInput{
		SchoolID:      env.school.ID,
		TransactionID: tx.ID,
		Condition:     models.ConditionDamaged,
	}, env.adminUserID)
	require.NoError(t, err)

	var stored models.BookCopy
	require.NoError(t, env.db.First(&stored, c.ID).Error)
	assert.Equal(t, models.CopyStatusDamaged, stored.Status)
	assert.Equal(t, models.ConditionDamaged, stored.Condition)
}

func TestReturnAlreadyReturned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)

	tx, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	require.NoError(t, err)

	_, _, err = env.library.Return(ctx, &ReturnInput{SchoolID: env.school.ID, TransactionID: tx.ID}, env.adminUserID)
	require.NoError(t, err)

	_, _, err = env.library.Return(ctx, &ReturnInput{SchoolID: env.school.ID, TransactionID: tx.ID}, env.adminUserID)
	assert.ErrorIs(t, err, ErrAlreadyReturned)

	_, _, err = env.library.Return(ctx, &ReturnInput{SchoolID: env.school.ID, TransactionID: 9999}, env.adminUserID)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestListOverdue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	env.createBookCopy(t, "On Time", "BC-0001", false)
	env.createBookCopy(t, "Late", "BC-0002", false)

	env.library.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	_, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    "BC-0001",
	}, env.adminUserID)
	require.NoError(t, err)

	late, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    "BC-0002",
		DueDays:    2,
	}, env.adminUserID)
	require.NoError(t, err)

	env.library.now = func() time.Time { return time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) }
	overdue, err := env.library.ListOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
}

func TestListMemberFines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Go in Action", "BC-0001", false)

	env.library.now = func() time.Time { return time.Date(2023, 12, 27, 0, 0, 0, 0, time.UTC) }
	tx, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	require.NoError(t, err)

	// Three days late: one fine of 1.50 on record
	env.library.now = func() time.Time { return time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC) }
	_, _, err = env.library.Return(ctx, &ReturnInput{
		SchoolID:      env.school.ID,
		TransactionID: tx.ID,
	}, env.adminUserID)
	require.NoError(t, err)

	fines, err := env.library.ListMemberFines(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, fines, 1)
	assert.Equal(t, 1.50, fines[0].Amount)
	assert.Equal(t, models.FineUnpaid, fines[0].Status)
	assert.Equal(t, tx.ID, fines[0].TransactionID)

	// A member with no fines gets an empty list
	clean := env.createStudentMember(t, "s2@test.local")
	fines, err = env.library.ListMemberFines(ctx, clean.ID)
	require.NoError(t, err)
	assert.Empty(t, fines)
}

func TestGetMemberByProfile(t *testing.T) {
	env := newTestEnv(t)

	member := env.createStudentMember(t, "s1@test.local")
	found, err := env.library.GetMemberByProfile(context.Background(), member.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, found.ID)

	_, err = env.library.GetMemberByProfile(context.Background(), 9999)
	assert.True(t, errors.Is(err, ErrMemberNotFound))
}
