package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-library-loans.git/internal/library"
	"github.com/ariefcatur/go-library-loans.git/internal/memstore"
)

var _ library.Store = (*memstore.Store)(nil)

func seedLoan(t *testing.T, s *memstore.Store, id string, status library.Status, requested time.Time) library.Loan {
	t.Helper()
	l := library.Loan{
		ID: id, CustomerID: "cust-1", BookID: "book-1",
		RequestDate: requested, Status: status,
	}
	require.NoError(t, s.AddLoan(context.Background(), &l))
	return l
}

func TestGetBookReturnsCopy(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.AddBook(ctx, &library.Book{ID: "b1", Title: "Dune", TotalCopies: 1, AvailableCopies: 1}))

	got, err := s.GetBook(ctx, "b1")
	require.NoError(t, err)
	got.AvailableCopies = 99

	again, err := s.GetBook(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.AvailableCopies, "callers must not reach the stored record")
}

func TestApproveLoanAtomic(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.AddBook(ctx, &library.Book{ID: "book-1", Title: "Dune", TotalCopies: 1, AvailableCopies: 0}))
	loan := seedLoan(t, s, "l1", library.StatusRequested, time.Now())

	approved := loan
	approved.Status = library.StatusBorrowed
	err := s.ApproveLoan(ctx, &approved)
	assert.ErrorIs(t, err, library.ErrUnavailable)

	// nothing moved on failure
	got, _ := s.GetLoan(ctx, "l1")
	assert.Equal(t, library.StatusRequested, got.Status)
}

func TestApproveLoanStatusGuard(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.AddBook(ctx, &library.Book{ID: "book-1", Title: "Dune", TotalCopies: 1, AvailableCopies: 1}))
	loan := seedLoan(t, s, "l1", library.StatusCancelled, time.Now())

	loan.Status = library.StatusBorrowed
	assert.ErrorIs(t, s.ApproveLoan(ctx, &loan), library.ErrInvalidState)

	book, _ := s.GetBook(ctx, "book-1")
	assert.Equal(t, 1, book.AvailableCopies)
}

func TestApproveThenReturnRestoresCopies(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	require.NoError(t, s.AddBook(ctx, &library.Book{ID: "book-1", Title: "Dune", TotalCopies: 1, AvailableCopies: 1}))
	loan := seedLoan(t, s, "l1", library.StatusRequested, time.Now())

	loan.Status = library.StatusBorrowed
	require.NoError(t, s.ApproveLoan(ctx, &loan))
	book, _ := s.GetBook(ctx, "book-1")
	assert.Equal(t, 0, book.AvailableCopies)

	loan.Status = library.StatusReturned
	require.NoError(t, s.ReturnLoan(ctx, &loan))
	book, _ = s.GetBook(ctx, "book-1")
	assert.Equal(t, 1, book.AvailableCopies)

	// a second return neither double-increments nor succeeds
	assert.ErrorIs(t, s.ReturnLoan(ctx, &loan), library.ErrInvalidState)
	book, _ = s.GetBook(ctx, "book-1")
	assert.Equal(t, 1, book.AvailableCopies)
}

func TestLoanFilters(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	seedLoan(t, s, "old", library.StatusReturned, base)
	seedLoan(t, s, "mid", library.StatusRequested, base.Add(24*time.Hour))
	newest := seedLoan(t, s, "new", library.StatusBorrowed, base.Add(48*time.Hour))

	all, err := s.ListLoans(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID, "newest request first")

	requested, err := s.ListLoansByStatus(ctx, library.StatusRequested)
	require.NoError(t, err)
	require.Len(t, requested, 1)
	assert.Equal(t, "mid", requested[0].ID)

	byCustomer, err := s.ListLoansByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, byCustomer, 3)

	due := base.Add(72 * time.Hour)
	newest.DueDate = &due
	require.NoError(t, s.UpdateLoan(ctx, &newest))

	overdue, err := s.ListOverdueLoans(ctx, due.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "new", overdue[0].ID)

	overdue, err = s.ListOverdueLoans(ctx, due.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestUpdateMissingRecords(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	assert.ErrorIs(t, s.UpdateBook(ctx, &library.Book{ID: "nope"}), library.ErrNotFound)
	assert.ErrorIs(t, s.UpdateCustomer(ctx, &library.Customer{ID: "nope"}), library.ErrNotFound)
	assert.ErrorIs(t, s.UpdateLoan(ctx, &library.Loan{ID: "nope"}), library.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBook(ctx, "nope"), library.ErrNotFound)
	_, err := s.GetStaffByUserName(ctx, "nope")
	assert.ErrorIs(t, err, library.ErrNotFound)
}
