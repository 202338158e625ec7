package library

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-library-loans.git/internal/kafka"
)

const (
	DefaultDaysToLend = 14
	DefaultFinePerDay = 5000 // minor units per overdue day
)

// Engine owns the loan lifecycle. All two-entity effects (loan + book copy
// counts) go through the store's transactional ApproveLoan/ReturnLoan.
type Engine struct {
	Store      Store
	Producer   Publisher // optional; lifecycle events, fire-and-forget
	Service    string
	FinePerDay int64
	DaysToLend int
	Now        func() time.Time // test seam, defaults to time.Now
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *Engine) finePerDay() int64 {
	if e.FinePerDay > 0 {
		return e.FinePerDay
	}
	return DefaultFinePerDay
}

func (e *Engine) lendDays(requested int) int {
	if requested > 0 {
		return requested
	}
	if e.DaysToLend > 0 {
		return e.DaysToLend
	}
	return DefaultDaysToLend
}

// RequestBorrow creates a Requested loan. Availability is only checked here,
// not reserved; copies are taken at approval time, first come first served.
func (e *Engine) RequestBorrow(ctx context.Context, customerID, bookID string, createdByCustomer bool) (*Loan, error) {
	customer, err := e.Store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.CardStatus != CardActive {
		return nil, fmt.Errorf("customer card is not active: %w", ErrInvalidState)
	}

	book, err := e.Store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.AvailableCopies <= 0 {
		return nil, fmt.Errorf("book %q: %w", book.Title, ErrUnavailable)
	}

	loan := &Loan{
		ID:                uuid.NewString(),
		CustomerID:        customerID,
		BookID:            bookID,
		RequestDate:       e.now(),
		Status:            StatusRequested,
		CreatedByCustomer: createdByCustomer,
	}
	if err := e.Store.AddLoan(ctx, loan); err != nil {
		return nil, err
	}
	e.publish(EventLoanRequested, loan)
	return loan, nil
}

// ApproveBorrow moves a Requested loan to Borrowed and takes one copy.
// daysToLend <= 0 falls back to the configured default.
func (e *Engine) ApproveBorrow(ctx context.Context, loanID, staffID string, daysToLend int) error {
	loan, err := e.Store.GetLoan(ctx, loanID)
	if err != nil {
		return err
	}
	if !CanTransition(loan.Status, StatusBorrowed) {
		return fmt.Errorf("loan is not in Requested status: %w", ErrInvalidState)
	}

	now := e.now()
	due := now.AddDate(0, 0, e.lendDays(daysToLend))
	loan.Status = StatusBorrowed
	loan.BorrowDate = &now
	loan.DueDate = &due
	loan.ProcessedByStaffID = staffID

	// The store re-checks status and availability inside the transaction;
	// the read above can be stale under concurrent approvals.
	if err := e.Store.ApproveLoan(ctx, loan); err != nil {
		return err
	}
	e.publish(EventLoanApproved, loan)
	return nil
}

// ReturnBook moves a Borrowed loan to Returned, computing any overdue fine
// first and putting the copy back on the shelf.
func (e *Engine) ReturnBook(ctx context.Context, loanID, staffID string) error {
	loan, err := e.Store.GetLoan(ctx, loanID)
	if err != nil {
		return err
	}
	if !CanTransition(loan.Status, StatusReturned) {
		return fmt.Errorf("loan is not in Borrowed status: %w", ErrInvalidState)
	}

	now := e.now()
	loan.FineAmount = e.fineAsOf(loan, now)
	loan.Status = StatusReturned
	loan.ReturnDate = &now
	loan.ProcessedByStaffID = staffID

	if err := e.Store.ReturnLoan(ctx, loan); err != nil {
		return err
	}
	e.publish(EventLoanReturned, loan)
	return nil
}

// ExtendDueDate pushes the due date of a Borrowed loan. There is no cap on
// additional days or on how often a loan is extended (policy gap carried over
// from the original rules).
func (e *Engine) ExtendDueDate(ctx context.Context, loanID string, additionalDays int) error {
	if additionalDays <= 0 {
		return fmt.Errorf("additional days must be positive: %w", ErrValidation)
	}
	loan, err := e.Store.GetLoan(ctx, loanID)
	if err != nil {
		return err
	}
	if loan.Status != StatusBorrowed || loan.DueDate == nil {
		return fmt.Errorf("loan is not in Borrowed status: %w", ErrInvalidState)
	}
	due := loan.DueDate.AddDate(0, 0, additionalDays)
	loan.DueDate = &due
	return e.Store.UpdateLoan(ctx, loan)
}

// CancelBorrow cancels a loan that has not been approved yet.
func (e *Engine) CancelBorrow(ctx context.Context, loanID string) error {
	loan, err := e.Store.GetLoan(ctx, loanID)
	if err != nil {
		return err
	}
	if !CanTransition(loan.Status, StatusCancelled) {
		return fmt.Errorf("can only cancel requested loans: %w", ErrInvalidState)
	}
	loan.Status = StatusCancelled
	if err := e.Store.UpdateLoan(ctx, loan); err != nil {
		return err
	}
	e.publish(EventLoanCancelled, loan)
	return nil
}

// CalculateFine recomputes the overdue fine for a loan. The result overwrites
// any earlier amount, so repeated calls never accumulate. No-op for loans
// without a due date or not yet overdue.
func (e *Engine) CalculateFine(ctx context.Context, loanID string) error {
	loan, err := e.Store.GetLoan(ctx, loanID)
	if err != nil {
		return err
	}
	if loan.DueDate == nil {
		return nil
	}
	fine := e.fineAsOf(loan, e.now())
	if fine == loan.FineAmount {
		return nil
	}
	loan.FineAmount = fine
	return e.Store.UpdateLoan(ctx, loan)
}

// fineAsOf returns whole-days-overdue * rate, or the current amount when the
// loan is not overdue at now.
func (e *Engine) fineAsOf(loan *Loan, now time.Time) int64 {
	if loan.DueDate == nil || !now.After(*loan.DueDate) {
		return loan.FineAmount
	}
	daysOverdue := int64(now.Sub(*loan.DueDate) / (24 * time.Hour))
	return daysOverdue * e.finePerDay()
}

// ---- reads exposed through the dispatcher ----

func (e *Engine) GetLoan(ctx context.Context, id string) (*Loan, error) {
	return e.Store.GetLoan(ctx, id)
}

func (e *Engine) ListLoans(ctx context.Context) ([]Loan, error) {
	return e.Store.ListLoans(ctx)
}

func (e *Engine) ListByCustomer(ctx context.Context, customerID string) ([]Loan, error) {
	return e.Store.ListLoansByCustomer(ctx, customerID)
}

func (e *Engine) ListBorrowed(ctx context.Context) ([]Loan, error) {
	return e.Store.ListLoansByStatus(ctx, StatusBorrowed)
}

func (e *Engine) ListRequested(ctx context.Context) ([]Loan, error) {
	return e.Store.ListLoansByStatus(ctx, StatusRequested)
}

func (e *Engine) ListOverdue(ctx context.Context) ([]Loan, error) {
	return e.Store.ListOverdueLoans(ctx, e.now())
}

func (e *Engine) publish(eventType string, loan *Loan) {
	if e.Producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    e.now(),
		Producer:      e.Service,
		CorrelationID: loan.ID,
		Payload: kafkax.MustMarshal(LoanEventPayload{
			LoanID:     loan.ID,
			CustomerID: loan.CustomerID,
			BookID:     loan.BookID,
			Status:     loan.Status,
			DueDate:    loan.DueDate,
			FineAmount: loan.FineAmount,
		}),
	}
	e.Producer.Publish(PartitionKey(loan.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
