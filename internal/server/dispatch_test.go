package server_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-library-loans.git/internal/library"
	"github.com/ariefcatur/go-library-loans.git/internal/memstore"
	"github.com/ariefcatur/go-library-loans.git/internal/server"
)

func newDispatcher(t *testing.T) (*server.Dispatcher, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()

	require.NoError(t, store.AddCustomer(ctx, &library.Customer{
		ID: "cust-1", FullName: "Alice Reader", UserName: "alice",
		CardStatus: library.CardActive, CreatedAt: time.Now().UTC(),
	}))
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	store.SeedStaff(library.Staff{
		ID: "staff-1", FullName: "Bob Librarian", UserName: "bob",
		PasswordHash: string(hash), Role: library.RoleAdmin, IsActive: true,
	})
	require.NoError(t, store.AddBook(ctx, &library.Book{
		ID: "book-1", Title: "Dune", CategoryID: "c1", AuthorID: "a1",
		TotalCopies: 2, AvailableCopies: 2,
	}))

	engine := &library.Engine{Store: store, FinePerDay: 5000, DaysToLend: 14}
	catalog := &library.Catalog{Store: store}
	directory := &library.Directory{Store: store}
	return server.NewDispatcher(engine, catalog, directory), store
}

func dispatch(t *testing.T, d *server.Dispatcher, action, data string) server.Response {
	t.Helper()
	req := server.Request{Action: action}
	if data != "" {
		req.Data = json.RawMessage(data)
	}
	return d.Dispatch(context.Background(), req)
}

func TestUnknownAction(t *testing.T) {
	d, _ := newDispatcher(t)
	resp := dispatch(t, d, "Fine.Pay", `{}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "Unknown action: Fine.Pay", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestInvalidPayload(t *testing.T) {
	d, _ := newDispatcher(t)

	cases := []struct {
		name, action, data string
	}{
		{"missing payload", "Borrow.Request", ""},
		{"null payload", "Borrow.Request", `null`},
		{"wrong type", "Borrow.Approve", `{"borrowId":5}`},
		{"unknown field", "Borrow.Request", `{"customerId":"cust-1","bookId":"book-1","bogus":true}`},
		{"not an object", "Book.GetById", `"book-1"`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := dispatch(t, d, c.action, c.data)
			assert.False(t, resp.Success)
			assert.Equal(t, "Invalid data", resp.Message)
		})
	}
}

func TestBorrowFlowThroughDispatcher(t *testing.T) {
	d, store := newDispatcher(t)
	ctx := context.Background()

	resp := dispatch(t, d, "Borrow.Request", `{"customerId":"cust-1","bookId":"book-1","createdByCustomer":true}`)
	require.True(t, resp.Success, resp.Message)
	loan, ok := resp.Data.(*library.Loan)
	require.True(t, ok)
	assert.Equal(t, library.StatusRequested, loan.Status)

	resp = dispatch(t, d, "Borrow.Approve", `{"borrowId":"`+loan.ID+`","staffId":"staff-1","daysToLend":7}`)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "Borrow approved successfully", resp.Message)

	book, err := store.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, 1, book.AvailableCopies)

	// domain errors come back as fail envelopes, not as transport faults
	resp = dispatch(t, d, "Borrow.Cancel", `{"id":"`+loan.ID+`"}`)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "can only cancel requested loans")

	resp = dispatch(t, d, "Borrow.Return", `{"borrowId":"`+loan.ID+`","staffId":"staff-1"}`)
	require.True(t, resp.Success, resp.Message)

	book, _ = store.GetBook(ctx, "book-1")
	assert.Equal(t, 2, book.AvailableCopies)
}

func TestBorrowRequestUnknownBook(t *testing.T) {
	d, _ := newDispatcher(t)
	resp := dispatch(t, d, "Borrow.Request", `{"customerId":"cust-1","bookId":"nope","createdByCustomer":false}`)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "not found")
}

func TestStaffLoginAction(t *testing.T) {
	d, _ := newDispatcher(t)

	resp := dispatch(t, d, "Staff.Login", `{"userName":"bob","password":"hunter2"}`)
	require.True(t, resp.Success, resp.Message)
	staff, ok := resp.Data.(*library.Staff)
	require.True(t, ok)
	assert.Equal(t, "bob", staff.UserName)

	resp = dispatch(t, d, "Staff.Login", `{"userName":"bob","password":"wrong"}`)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid username or password", resp.Message)
}

func TestCatalogActions(t *testing.T) {
	d, _ := newDispatcher(t)

	resp := dispatch(t, d, "Book.GetAll", "")
	require.True(t, resp.Success)
	books, ok := resp.Data.([]library.Book)
	require.True(t, ok)
	assert.Len(t, books, 1)

	resp = dispatch(t, d, "Category.Add", `{"id":"","name":"Sci-Fi"}`)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "Category added successfully", resp.Message)

	resp = dispatch(t, d, "Book.GetById", `{"id":"missing"}`)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "not found")
}

func TestCustomerActions(t *testing.T) {
	d, store := newDispatcher(t)
	ctx := context.Background()

	resp := dispatch(t, d, "Customer.Add", `{"fullName":"Carol","userName":"carol","password":"pw","email":"carol@example.com"}`)
	require.True(t, resp.Success, resp.Message)
	c, ok := resp.Data.(*library.Customer)
	require.True(t, ok)

	resp = dispatch(t, d, "Customer.DeactivateCard", `{"id":"`+c.ID+`"}`)
	require.True(t, resp.Success)
	got, err := store.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, library.CardDisabled, got.CardStatus)

	resp = dispatch(t, d, "Customer.Login", `{"userName":"carol","password":"pw"}`)
	require.True(t, resp.Success, resp.Message)
}
