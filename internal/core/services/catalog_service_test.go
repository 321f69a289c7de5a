package services

import (
	"context"
	"testing"

	"schoolhub/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookWithCopies(t *testing.T) {
	env := newTestEnv(t)

	book, err := env.catalog.CreateBook(context.Background(), &CreateBookInput{
		SchoolID:      env.school.ID,
		Title:         "The Go Programming Language",
		Author:        "Donovan & Kernighan",
		ISBN:          "9780134190440",
		InitialCopies: 3,
	}, env.adminUserID)
	require.NoError(t, err)

	require.Len(t, book.Copies, 3)
	for _, c := range book.Copies {
		assert.Contains(t, c.Barcode, "BC-")
		assert.Equal(t, models.CopyStatusAvailable, c.Status)
		assert.Equal(t, models.ConditionGood, c.Condition)
	}
}

func TestUpdateBook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	book, err := env.catalog.CreateBook(ctx, &CreateBookInput{
		SchoolID: env.school.ID,
		Title:    "Old Title",
	}, env.adminUserID)
	require.NoError(t, err)

	title := "New Title"
	ref := true
	updated, err := env.catalog.UpdateBook(ctx, env.school.ID, book.ID, &UpdateBookInput{
		Title:           &title,
		IsReferenceOnly: &ref,
	}, env.adminUserID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.True(t, updated.IsReferenceOnly)

	_, err = env.catalog.UpdateBook(ctx, env.school.ID, 9999, &UpdateBookInput{Title: &title}, env.adminUserID)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestDeleteBookRefusedWhileOnLoan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Popular Book", "BC-0001", false)

	_, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	require.NoError(t, err)

	err = env.catalog.DeleteBook(ctx, env.school.ID, c.BookID, env.adminUserID)
	assert.ErrorIs(t, err, ErrBookHasCopies)

	// After the copy comes back the book can be removed
	var tx models.BorrowingTransaction
	require.NoError(t, env.db.Where("book_copy_id = ?", c.ID).First(&tx).Error)
	_, _, err = env.library.Return(ctx, &ReturnInput{SchoolID: env.school.ID, TransactionID: tx.ID}, env.adminUserID)
	require.NoError(t, err)

	require.NoError(t, env.catalog.DeleteBook(ctx, env.school.ID, c.BookID, env.adminUserID))

	_, err = env.catalog.GetBook(ctx, env.school.ID, c.BookID, env.adminUserID)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestAddCopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	book, err := env.catalog.CreateBook(ctx, &CreateBookInput{
		SchoolID: env.school.ID,
		Title:    "Single Copy",
	}, env.adminUserID)
	require.NoError(t, err)

	c, err := env.catalog.AddCopy(ctx, env.school.ID, book.ID, models.ConditionFair, env.adminUserID)
	require.NoError(t, err)
	assert.Equal(t, models.ConditionFair, c.Condition)
	assert.Equal(t, models.CopyStatusAvailable, c.Status)

	_, err = env.catalog.AddCopy(ctx, env.school.ID, 9999, "", env.adminUserID)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestMarkCopyDamaged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := env.createBookCopy(t, "Fragile", "BC-0001", false)
	require.NoError(t, env.catalog.MarkCopyDamaged(ctx, env.school.ID, c.ID, env.adminUserID))

	var stored models.BookCopy
	require.NoError(t, env.db.First(&stored, c.ID).Error)
	assert.Equal(t, models.CopyStatusDamaged, stored.Status)
	assert.Equal(t, models.ConditionDamaged, stored.Condition)
}

func TestMarkCopyDamagedWhileOnLoan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.createStudentMember(t, "s1@test.local")
	c := env.createBookCopy(t, "Fragile", "BC-0001", false)

	_, err := env.library.Checkout(ctx, &CheckoutInput{
		SchoolID:   env.school.ID,
		CardNumber: member.CardNumber,
		Barcode:    c.Barcode,
	}, env.adminUserID)
	require.NoError(t, err)

	err = env.catalog.MarkCopyDamaged(ctx, env.school.ID, c.ID, env.adminUserID)
	assert.ErrorIs(t, err, ErrCopyOnLoan)
}

func TestMarkCopyDamagedOtherSchool(t *testing.T) {
	env := newTestEnv(t)

	other := &models.School{Name: "Other School", Code: "OTHER"}
	require.NoError(t, env.db.Create(other).Error)
	outsider := env.createUser(t, models.RoleAdmin, "outsider@test.local", other.ID)

	c := env.createBookCopy(t, "Local Only", "BC-0001", false)

	// A copy of another school is indistinguishable from a missing one
	err := env.catalog.MarkCopyDamaged(context.Background(), other.ID, c.ID, outsider.UserID)
	assert.ErrorIs(t, err, ErrCopyNotFound)
}
