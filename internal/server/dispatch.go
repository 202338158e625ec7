package server

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/ariefcatur/go-library-loans.git/internal/library"
)

// ---- payload shapes, one per action family ----

type idRequest struct {
	ID string `json:"id"`
}

type loginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type bookSearchRequest struct {
	Keyword    string `json:"keyword,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
	AuthorID   string `json:"authorId,omitempty"`
}

type borrowRequest struct {
	CustomerID        string `json:"customerId"`
	BookID            string `json:"bookId"`
	CreatedByCustomer bool   `json:"createdByCustomer"`
}

type approveRequest struct {
	BorrowID   string `json:"borrowId"`
	StaffID    string `json:"staffId"`
	DaysToLend int    `json:"daysToLend,omitempty"`
}

type returnRequest struct {
	BorrowID string `json:"borrowId"`
	StaffID  string `json:"staffId"`
}

type extendRequest struct {
	BorrowID       string `json:"borrowId"`
	AdditionalDays int    `json:"additionalDays"`
}

type customerInput struct {
	ID       string `json:"id,omitempty"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	UserName string `json:"userName"`
	Password string `json:"password,omitempty"`
}

func (in customerInput) customer() *library.Customer {
	return &library.Customer{
		ID:       in.ID,
		FullName: in.FullName,
		Email:    in.Email,
		Phone:    in.Phone,
		Address:  in.Address,
		UserName: in.UserName,
	}
}

type handlerFunc func(ctx context.Context, data json.RawMessage) Response

// Dispatcher routes one decoded request to the engine or a facade. The action
// table is closed: every supported action is registered here with its payload
// shape, anything else is rejected by name. Operation errors never escape;
// they become fail envelopes.
type Dispatcher struct {
	routes map[string]handlerFunc
}

func NewDispatcher(engine *library.Engine, catalog *library.Catalog, directory *library.Directory) *Dispatcher {
	d := &Dispatcher{routes: map[string]handlerFunc{}}

	// Staff
	d.routes["Staff.Login"] = handle(func(ctx context.Context, req loginRequest) (any, string, error) {
		staff, err := directory.StaffLogin(ctx, req.UserName, req.Password)
		return staff, "", err
	})

	// Books
	d.routes["Book.GetAll"] = handle0(func(ctx context.Context) (any, string, error) {
		books, err := catalog.ListBooks(ctx)
		return books, "", err
	})
	d.routes["Book.GetById"] = handle(func(ctx context.Context, req idRequest) (any, string, error) {
		book, err := catalog.GetBook(ctx, req.ID)
		return book, "", err
	})
	d.routes["Book.Search"] = handle(func(ctx context.Context, req bookSearchRequest) (any, string, error) {
		books, err := catalog.SearchBooks(ctx, library.BookSearch{
			Keyword: req.Keyword, CategoryID: req.CategoryID, AuthorID: req.AuthorID,
		})
		return books, "", err
	})
	d.routes["Book.Add"] = handle(func(ctx context.Context, b library.Book) (any, string, error) {
		if err := catalog.AddBook(ctx, &b); err != nil {
			return nil, "", err
		}
		return b, "Book added successfully", nil
	})
	d.routes["Book.Update"] = handle(func(ctx context.Context, b library.Book) (any, string, error) {
		return nil, "Book updated successfully", catalog.UpdateBook(ctx, &b)
	})
	d.routes["Book.Delete"] = handle(func(ctx context.Context, req idRequest) (any, string, error) {
		return nil, "Book deleted successfully", catalog.DeleteBook(ctx, req.ID)
	})

	// Categories
	d.routes["Category.GetAll"] = handle0(func(ctx context.Context) (any, string, error) {
		cats, err := catalog.ListCategories(ctx)
		return cats, "", err
	})
	d.routes["Category.Add"] = handle(func(ctx context.Context, c library.Category) (any, string, error) {
		if err := catalog.AddCategory(ctx, &c); err != nil {
			return nil, "", err
		}
		return c, "Category added successfully", nil
	})
	d.routes["Category.Update"] = handle(func(ctx context.Context, c library.Category) (any, string, error) {
		return nil, "Category updated successfully", catalog.UpdateCategory(ctx, &c)
	})
	d.routes["Category.Delete"] = handle(func(ctx context.Context, req idRequest) (any, string, error) {
		return nil, "Category deleted successfully", catalog.DeleteCategory(ctx, req.ID)
	})

	// Authors
	d.routes["Author.GetAll"] = handle0(func(ctx context.Context) (any, string, error) {
		authors, err := catalog.ListAuthors(ctx)
		return authors, "", err
	})
	d.routes["Author.Add"] = handle(func(ctx context.Context, a library.Author) (any, string, error) {
		if err := catalog.AddAuthor(ctx, &a); err != nil {
			return nil, "", err
		}
		return a, "Author added successfully", nil
	})
	d.routes["Author.Update"] = handle(func(ctx context.Context, a library.Author) (any, string, error) {
		return nil, "Author updated successfully", catalog.UpdateAuthor(ctx, &a)
	})
	d.routes["Author.Delete"] = handle(func(ctx context.Context, req idRequest) (any, string, error) {
		return nil, "Author deleted successfully", catalog.DeleteAuthor(ctx, req.ID)
	})

	// Customers
	d.routes["Customer.GetAll"] = handle0(func(ctx context.Context) (any, string, error) {
		customers, err := directory.ListCustomers(ctx)
		return customers, "", err
	})
	d.routes["Customer.GetById"] = handle(func(ctx context.Context, req idRequest) (any, string, error) {
		customer, err := directory.GetCustomer(ctx, req.ID)
		return customer, "", err
	})
	d.routes["Customer.Add"] = handle(func(ctx context.Context, in customerInput) (any, string, error) {
		c := in.customer()
		if err := directory.AddCustomer(ctx, c, in.Password); err != nil {
			return nil, "", err
		}
		return c, "Customer added successfully", nil
	})
	d.routes["Customer.Update"] = handle(func(ctx context.Context, in customerInput) (any, string, error) {
		return nil, "Customer updated successfully", directory.UpdateCustomer(ctx, in.customer())
	})
	d.routes["Customer.ActivateCard"] = handle(func(ctx context.Context, req idRequest) (any, string, error) {
		return nil, "Card activated successfully", directory.ActivateCard(ctx, req.ID)
	})
	d.routes["Customer.DeactivateCard"] = handle(func(ctx context.Context, req idRequest) (any, string, error) {
		return nil, "Card deactivated successfully", directory.DeactivateCard(ctx, req.ID)
	})
	d.routes["Customer.Login"] = handle(func(ctx context.Context, req loginRequest) (any, string, error) {
		customer, err := directory.CustomerLogin(ctx, req.UserName, req.Password)
		return customer, "", err
	})

	// Loans
	d.routes["Borrow.GetAll"] = handle0(func(ctx context.Context) (any, string, error) {
		loans, err := engine.ListLoans(ctx)
		return loans, "", err
	})
	d.routes["Borrow.GetByCustomerId"] = handle(func(ctx context.Context, req idRequest) (any, string, error) {
		loans, err := engine.ListByCustomer(ctx, req.ID)
		return loans, "", err
	})
	d.routes["Borrow.GetBorrowed"] = handle0(func(ctx context.Context) (any, string, error) {
		loans, err := engine.ListBorrowed(ctx)
		return loans, "", err
	})
	d.routes["Borrow.GetOverdue"] = handle0(func(ctx context.Context) (any, string, error) {
		loans, err := engine.ListOverdue(ctx)
		return loans, "", err
	})
	d.routes["Borrow.GetRequested"] = handle0(func(ctx context.Context) (any, string, error) {
		loans, err := engine.ListRequested(ctx)
		return loans, "", err
	})
	d.routes["Borrow.Request"] = handle(func(ctx context.Context, req borrowRequest) (any, string, error) {
		loan, err := engine.RequestBorrow(ctx, req.CustomerID, req.BookID, req.CreatedByCustomer)
		if err != nil {
			return nil, "", err
		}
		return loan, "Borrow request created successfully", nil
	})
	d.routes["Borrow.Approve"] = handle(func(ctx context.Context, req approveRequest) (any, string, error) {
		return nil, "Borrow approved successfully", engine.ApproveBorrow(ctx, req.BorrowID, req.StaffID, req.DaysToLend)
	})
	d.routes["Borrow.Return"] = handle(func(ctx context.Context, req returnRequest) (any, string, error) {
		return nil, "Book returned successfully", engine.ReturnBook(ctx, req.BorrowID, req.StaffID)
	})
	d.routes["Borrow.Extend"] = handle(func(ctx context.Context, req extendRequest) (any, string, error) {
		return nil, "Due date extended successfully", engine.ExtendDueDate(ctx, req.BorrowID, req.AdditionalDays)
	})
	d.routes["Borrow.Cancel"] = handle(func(ctx context.Context, req idRequest) (any, string, error) {
		return nil, "Borrow cancelled successfully", engine.CancelBorrow(ctx, req.ID)
	})

	return d
}

func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	h, ok := d.routes[req.Action]
	if !ok {
		return Fail("Unknown action: " + req.Action)
	}
	return h(ctx, req.Data)
}

// handle wraps an operation behind a fail-closed typed decode of its payload.
func handle[T any](fn func(ctx context.Context, req T) (any, string, error)) handlerFunc {
	return func(ctx context.Context, data json.RawMessage) Response {
		req, err := decode[T](data)
		if err != nil {
			return Fail("Invalid data")
		}
		out, msg, err := fn(ctx, req)
		if err != nil {
			return Fail(err.Error())
		}
		return OK(out, msg)
	}
}

// handle0 is for actions without a payload; any submitted data is ignored.
func handle0(fn func(ctx context.Context) (any, string, error)) handlerFunc {
	return func(ctx context.Context, _ json.RawMessage) Response {
		out, msg, err := fn(ctx)
		if err != nil {
			return Fail(err.Error())
		}
		return OK(out, msg)
	}
}

// decode rejects absent payloads, explicit nulls and unknown fields instead
// of silently defaulting.
func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return v, library.ErrValidation
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}
