package library

import (
	"context"
	"time"
)

// BookSearch narrows SearchBooks. Empty/blank fields are ignored.
type BookSearch struct {
	Keyword    string
	CategoryID string
	AuthorID   string
}

type BookStore interface {
	GetBook(ctx context.Context, id string) (*Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	SearchBooks(ctx context.Context, q BookSearch) ([]Book, error)
	AddBook(ctx context.Context, b *Book) error
	UpdateBook(ctx context.Context, b *Book) error
	DeleteBook(ctx context.Context, id string) error
}

type CatalogStore interface {
	ListCategories(ctx context.Context) ([]Category, error)
	AddCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) error

	ListAuthors(ctx context.Context) ([]Author, error)
	AddAuthor(ctx context.Context, a *Author) error
	UpdateAuthor(ctx context.Context, a *Author) error
	DeleteAuthor(ctx context.Context, id string) error
}

type CustomerStore interface {
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	GetCustomerByUserName(ctx context.Context, userName string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	AddCustomer(ctx context.Context, c *Customer) error
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id string) error
}

type StaffStore interface {
	GetStaff(ctx context.Context, id string) (*Staff, error)
	GetStaffByUserName(ctx context.Context, userName string) (*Staff, error)
}

type LoanStore interface {
	GetLoan(ctx context.Context, id string) (*Loan, error)
	ListLoans(ctx context.Context) ([]Loan, error)
	ListLoansByCustomer(ctx context.Context, customerID string) ([]Loan, error)
	ListLoansByStatus(ctx context.Context, st Status) ([]Loan, error)
	ListOverdueLoans(ctx context.Context, asOf time.Time) ([]Loan, error)
	AddLoan(ctx context.Context, l *Loan) error
	UpdateLoan(ctx context.Context, l *Loan) error

	// ApproveLoan commits the loan update and the book copy decrement as one
	// unit. The decrement is conditional on available_copies > 0, so racing
	// approvals of the last copy cannot drive availability negative; the
	// loser gets ErrUnavailable. The loan row is only touched while still
	// Requested, otherwise ErrInvalidState.
	ApproveLoan(ctx context.Context, l *Loan) error

	// ReturnLoan commits the loan update and the book copy increment as one
	// unit. The loan row is only touched while still Borrowed.
	ReturnLoan(ctx context.Context, l *Loan) error
}

// Store is the persistence boundary for the five record kinds.
type Store interface {
	BookStore
	CatalogStore
	CustomerStore
	StaffStore
	LoanStore
}
