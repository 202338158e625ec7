package library

import "time"

type CardStatus string

const (
	CardActive   CardStatus = "Active"
	CardDisabled CardStatus = "Disabled"
)

type Book struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	CategoryID      string `json:"categoryId"`
	AuthorID        string `json:"authorId"`
	ISBN            string `json:"isbn,omitempty"`
	PublishYear     int    `json:"publishYear,omitempty"`
	Summary         string `json:"summary,omitempty"`
	TotalCopies     int    `json:"totalCopies"`
	AvailableCopies int    `json:"availableCopies"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Customer struct {
	ID           string     `json:"id"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	UserName     string     `json:"userName"`
	PasswordHash string     `json:"-"`
	CardStatus   CardStatus `json:"cardStatus"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// RoleAdmin is the only role allowed on the administrative surface.
const RoleAdmin = "Admin"

type Staff struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	UserName     string    `json:"userName"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Loan tracks one copy of a book borrowed by one customer.
// FineAmount is in minor currency units (see Engine.FinePerDay).
type Loan struct {
	ID                 string     `json:"id"`
	CustomerID         string     `json:"customerId"`
	BookID             string     `json:"bookId"`
	RequestDate        time.Time  `json:"requestDate"`
	BorrowDate         *time.Time `json:"borrowDate,omitempty"`
	DueDate            *time.Time `json:"dueDate,omitempty"`
	ReturnDate         *time.Time `json:"returnDate,omitempty"`
	Status             Status     `json:"status"`
	CreatedByCustomer  bool       `json:"createdByCustomer"`
	ProcessedByStaffID string     `json:"processedByStaffId,omitempty"`
	FineAmount         int64      `json:"fineAmount"`
	IsFinePaid         bool       `json:"isFinePaid"`
}
