// Package memstore is an in-memory library.Store. Tests use it instead of
// postgres; the mutex gives the same all-or-nothing behavior for the
// two-entity loan mutations.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ariefcatur/go-library-loans.git/internal/library"
)

type Store struct {
	mu        sync.RWMutex
	books     map[string]library.Book
	cats      map[string]library.Category
	authors   map[string]library.Author
	customers map[string]library.Customer
	staff     map[string]library.Staff
	loans     map[string]library.Loan
}

func New() *Store {
	return &Store{
		books:     make(map[string]library.Book),
		cats:      make(map[string]library.Category),
		authors:   make(map[string]library.Author),
		customers: make(map[string]library.Customer),
		staff:     make(map[string]library.Staff),
		loans:     make(map[string]library.Loan),
	}
}

// SeedStaff exists because the Store interface has no staff writes; the
// service provisions staff out of band.
func (s *Store) SeedStaff(st library.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[st.ID] = st
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, library.ErrNotFound)
}

// ---- books ----

func (s *Store) GetBook(_ context.Context, id string) (*library.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return nil, notFound("book", id)
	}
	return &b, nil
}

func (s *Store) ListBooks(_ context.Context) ([]library.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]library.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) SearchBooks(_ context.Context, q library.BookSearch) ([]library.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []library.Book
	kw := strings.ToLower(q.Keyword)
	for _, b := range s.books {
		if kw != "" && !strings.Contains(strings.ToLower(b.Title), kw) &&
			!strings.Contains(strings.ToLower(b.ISBN), kw) {
			continue
		}
		if q.CategoryID != "" && b.CategoryID != q.CategoryID {
			continue
		}
		if q.AuthorID != "" && b.AuthorID != q.AuthorID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *Store) AddBook(_ context.Context, b *library.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[b.ID] = *b
	return nil
}

func (s *Store) UpdateBook(_ context.Context, b *library.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[b.ID]; !ok {
		return notFound("book", b.ID)
	}
	s.books[b.ID] = *b
	return nil
}

func (s *Store) DeleteBook(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		return notFound("book", id)
	}
	delete(s.books, id)
	return nil
}

// ---- categories / authors ----

func (s *Store) ListCategories(_ context.Context) ([]library.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]library.Category, 0, len(s.cats))
	for _, c := range s.cats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) AddCategory(_ context.Context, c *library.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats[c.ID] = *c
	return nil
}

func (s *Store) UpdateCategory(_ context.Context, c *library.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[c.ID]; !ok {
		return notFound("category", c.ID)
	}
	s.cats[c.ID] = *c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[id]; !ok {
		return notFound("category", id)
	}
	delete(s.cats, id)
	return nil
}

func (s *Store) ListAuthors(_ context.Context) ([]library.Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]library.Author, 0, len(s.authors))
	for _, a := range s.authors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) AddAuthor(_ context.Context, a *library.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authors[a.ID] = *a
	return nil
}

func (s *Store) UpdateAuthor(_ context.Context, a *library.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.authors[a.ID]; !ok {
		return notFound("author", a.ID)
	}
	s.authors[a.ID] = *a
	return nil
}

func (s *Store) DeleteAuthor(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.authors[id]; !ok {
		return notFound("author", id)
	}
	delete(s.authors, id)
	return nil
}

// ---- customers ----

func (s *Store) GetCustomer(_ context.Context, id string) (*library.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, notFound("customer", id)
	}
	return &c, nil
}

func (s *Store) GetCustomerByUserName(_ context.Context, userName string) (*library.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.UserName == userName {
			c := c
			return &c, nil
		}
	}
	return nil, notFound("customer", userName)
}

func (s *Store) ListCustomers(_ context.Context) ([]library.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]library.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *Store) AddCustomer(_ context.Context, c *library.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = *c
	return nil
}

func (s *Store) UpdateCustomer(_ context.Context, c *library.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; !ok {
		return notFound("customer", c.ID)
	}
	s.customers[c.ID] = *c
	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return notFound("customer", id)
	}
	delete(s.customers, id)
	return nil
}

// ---- staff ----

func (s *Store) GetStaff(_ context.Context, id string) (*library.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.staff[id]
	if !ok {
		return nil, notFound("staff", id)
	}
	return &st, nil
}

func (s *Store) GetStaffByUserName(_ context.Context, userName string) (*library.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.staff {
		if st.UserName == userName {
			st := st
			return &st, nil
		}
	}
	return nil, notFound("staff", userName)
}

// ---- loans ----

func (s *Store) GetLoan(_ context.Context, id string) (*library.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.loans[id]
	if !ok {
		return nil, notFound("loan", id)
	}
	return &l, nil
}

func (s *Store) ListLoans(_ context.Context) ([]library.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLoans(func(library.Loan) bool { return true }), nil
}

func (s *Store) ListLoansByCustomer(_ context.Context, customerID string) ([]library.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLoans(func(l library.Loan) bool { return l.CustomerID == customerID }), nil
}

func (s *Store) ListLoansByStatus(_ context.Context, st library.Status) ([]library.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLoans(func(l library.Loan) bool { return l.Status == st }), nil
}

func (s *Store) ListOverdueLoans(_ context.Context, asOf time.Time) ([]library.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLoans(func(l library.Loan) bool {
		return l.Status == library.StatusBorrowed && l.DueDate != nil && l.DueDate.Before(asOf)
	}), nil
}

// callers hold s.mu
func (s *Store) filterLoans(keep func(library.Loan) bool) []library.Loan {
	var out []library.Loan
	for _, l := range s.loans {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return out
}

func (s *Store) AddLoan(_ context.Context, l *library.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans[l.ID] = *l
	return nil
}

func (s *Store) UpdateLoan(_ context.Context, l *library.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loans[l.ID]; !ok {
		return notFound("loan", l.ID)
	}
	s.loans[l.ID] = *l
	return nil
}

// ApproveLoan checks and mutates loan and book under one lock, mirroring the
// postgres transaction: nothing changes unless both writes can happen.
func (s *Store) ApproveLoan(_ context.Context, l *library.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.loans[l.ID]
	if !ok {
		return notFound("loan", l.ID)
	}
	if stored.Status != library.StatusRequested {
		return fmt.Errorf("loan %s is no longer Requested: %w", l.ID, library.ErrInvalidState)
	}
	book, ok := s.books[l.BookID]
	if !ok {
		return notFound("book", l.BookID)
	}
	if book.AvailableCopies <= 0 {
		return fmt.Errorf("book %s: %w", l.BookID, library.ErrUnavailable)
	}

	book.AvailableCopies--
	s.books[book.ID] = book
	s.loans[l.ID] = *l
	return nil
}

func (s *Store) ReturnLoan(_ context.Context, l *library.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.loans[l.ID]
	if !ok {
		return notFound("loan", l.ID)
	}
	if stored.Status != library.StatusBorrowed {
		return fmt.Errorf("loan %s is no longer Borrowed: %w", l.ID, library.ErrInvalidState)
	}
	if book, ok := s.books[l.BookID]; ok && book.AvailableCopies < book.TotalCopies {
		book.AvailableCopies++
		s.books[book.ID] = book
	}
	s.loans[l.ID] = *l
	return nil
}
