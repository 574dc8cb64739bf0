package book_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/library/pkg/clock"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/idgen"
)

type fixture struct {
	svc   book.Service
	books book.Repository
	loans loan.Repository
}

func newFixture() *fixture {
	books := memory.NewBookRepository(idgen.NewSequence(0))
	loans := memory.NewLoanRepository(idgen.NewSequence(0))
	clk := clock.NewFixed(time.Date(2024, time.October, 1, 9, 0, 0, 0, time.UTC))
	return &fixture{
		svc:   book.NewService(books, loans, memory.NewTxManager(), clk),
		books: books,
		loans: loans,
	}
}

func validParams(isbn string) book.AddParams {
	return book.AddParams{
		Title:       "  1984 ",
		Author:      "George Orwell",
		ISBN:        isbn,
		Category:    "Dystopian",
		PublishYear: 1949,
		Copies:      3,
	}
}

func ptr[T any](v T) *T { return &v }

func TestAddBook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.svc.AddBook(ctx, validParams("978-0-452-28423-4"))
	require.NoError(t, err)

	assert.Equal(t, uint(1), b.ID)
	assert.Equal(t, "1984", b.Title)
	assert.Equal(t, 3, b.Copies)
	assert.Equal(t, 3, b.AvailableCopies)

	b2, err := f.svc.AddBook(ctx, validParams("978-0-06-112008-4"))
	require.NoError(t, err)
	assert.Equal(t, uint(2), b2.ID)
}

// TestAddBook_ValidationCollectsAll 一次返回全部违规项
func TestAddBook_ValidationCollectsAll(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AddBook(context.Background(), book.AddParams{
		Title:       " ",
		ISBN:        "x",
		Category:    "c",
		PublishYear: 2025,
		Copies:      0,
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
	details := apperrors.GetAppError(err).Details
	assert.Len(t, details, 4)
	assert.Contains(t, details, "title: 不能为空")
	assert.Contains(t, details, "author: 不能为空")
	assert.Contains(t, details, "copies: 至少为1")

	list, _ := f.svc.ListBooks(context.Background(), book.ListParams{})
	assert.Empty(t, list)
}

func TestAddBook_DuplicateISBN(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.AddBook(ctx, validParams("978-0-452-28423-4"))
	require.NoError(t, err)

	_, err = f.svc.AddBook(ctx, validParams(" 978-0-452-28423-4 "))
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)
	assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicateKey))
}

func TestUpdateBook_Partial(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.AddBook(ctx, validParams("978-0-452-28423-4"))
	require.NoError(t, err)

	updated, err := f.svc.UpdateBook(ctx, b.ID, book.UpdateParams{Title: ptr("  Nineteen Eighty-Four  ")})
	require.NoError(t, err)

	assert.Equal(t, "Nineteen Eighty-Four", updated.Title)
	assert.Equal(t, "George Orwell", updated.Author)
	assert.Equal(t, 3, updated.AvailableCopies)
}

// TestUpdateBook_CopiesKeepsOnLoan 修改总数时在借数量不变
func TestUpdateBook_CopiesKeepsOnLoan(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.books.Create(ctx, &book.Book{
		Title: "t", Author: "a", ISBN: "i", Category: "c", PublishYear: 2000,
		Copies: 3, AvailableCopies: 1,
	}))

	_, err := f.svc.UpdateBook(ctx, 1, book.UpdateParams{Copies: ptr(1)})
	require.Error(t, err)
	assert.Contains(t, apperrors.GetAppError(err).Details, "copies: 不能少于在借数量2")

	updated, err := f.svc.UpdateBook(ctx, 1, book.UpdateParams{Copies: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Copies)
	assert.Equal(t, 3, updated.AvailableCopies)
}

func TestUpdateBook_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.AddBook(ctx, validParams("isbn-1"))
	require.NoError(t, err)
	_, err = f.svc.AddBook(ctx, validParams("isbn-2"))
	require.NoError(t, err)

	_, err = f.svc.UpdateBook(ctx, 99, book.UpdateParams{Title: ptr("x")})
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	_, err = f.svc.UpdateBook(ctx, 2, book.UpdateParams{ISBN: ptr("isbn-1")})
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)

	// 失败的更新不落库
	_, err = f.svc.UpdateBook(ctx, 2, book.UpdateParams{Title: ptr("changed"), PublishYear: ptr(999)})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
	got, err := f.svc.GetBook(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "1984", got.Title)
	assert.Equal(t, "isbn-2", got.ISBN)
}

func TestRemoveBook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b, err := f.svc.AddBook(ctx, validParams("isbn-1"))
	require.NoError(t, err)

	// 有进行中的借阅时不能删除
	rec := loan.NewRecord(7, b.ID, clock.Date(2024, time.September, 30), 14)
	require.NoError(t, f.loans.Create(ctx, rec))

	err = f.svc.RemoveBook(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookOnLoan)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// 归还后可以删除
	require.NoError(t, rec.Close(clock.Date(2024, time.October, 1)))
	require.NoError(t, f.loans.Update(ctx, rec))
	require.NoError(t, f.svc.RemoveBook(ctx, b.ID))

	_, err = f.svc.GetBook(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.ErrorIs(t, f.svc.RemoveBook(ctx, b.ID), book.ErrBookNotFound)
}

func TestListBooks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for i, p := range []book.AddParams{
		{Title: "The Go Programming Language", Author: "Donovan", ISBN: "a", Category: "Programming", PublishYear: 2015, Copies: 1},
		{Title: "1984", Author: "George Orwell", ISBN: "b", Category: "Dystopian", PublishYear: 1949, Copies: 1},
		{Title: "Animal Farm", Author: "George Orwell", ISBN: "c", Category: "Fiction", PublishYear: 1945, Copies: 1},
	} {
		_, err := f.svc.AddBook(ctx, p)
		require.NoError(t, err, i)
	}

	all, err := f.svc.ListBooks(ctx, book.ListParams{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, uint(1), all[0].ID)

	orwell, err := f.svc.ListBooks(ctx, book.ListParams{Keyword: " orwell "})
	require.NoError(t, err)
	assert.Len(t, orwell, 2)

	fiction, err := f.svc.ListBooks(ctx, book.ListParams{Category: "fiction"})
	require.NoError(t, err)
	require.Len(t, fiction, 1)
	assert.Equal(t, "Animal Farm", fiction[0].Title)
}

// TestBook_CheckOutCheckIn 可借数量保持在[0, Copies]
func TestBook_CheckOutCheckIn(t *testing.T) {
	now := time.Now()
	b := book.NewBook("t", "a", "i", "c", 2000, 1, now)

	require.NoError(t, b.CheckOut(now))
	assert.Equal(t, 0, b.AvailableCopies)
	assert.ErrorIs(t, b.CheckOut(now), book.ErrNoCopyAvailable)
	assert.Equal(t, 0, b.AvailableCopies)

	require.NoError(t, b.CheckIn(now))
	err := b.CheckIn(now)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvariant))
}
