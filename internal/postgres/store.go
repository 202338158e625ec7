package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-library-loans.git/internal/library"
)

// Store implements library.Store on postgres. Loan approval and return are
// single transactions so the copy counters can never drift from the loans
// table on a partial failure.
type Store struct{ DB *pgxpool.Pool }

var _ library.Store = (*Store)(nil)

const bookCols = `id, title, category_id, author_id,
	COALESCE(isbn,''), COALESCE(publish_year,0), COALESCE(summary,''),
	total_copies, available_copies`

func scanBook(row pgx.Row) (*library.Book, error) {
	var b library.Book
	err := row.Scan(&b.ID, &b.Title, &b.CategoryID, &b.AuthorID,
		&b.ISBN, &b.PublishYear, &b.Summary, &b.TotalCopies, &b.AvailableCopies)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) GetBook(ctx context.Context, id string) (*library.Book, error) {
	b, err := scanBook(s.DB.QueryRow(ctx, `SELECT `+bookCols+` FROM books WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("book %s: %w", id, library.ErrNotFound)
	}
	return b, err
}

func (s *Store) ListBooks(ctx context.Context) ([]library.Book, error) {
	return s.queryBooks(ctx, `SELECT `+bookCols+` FROM books ORDER BY title`)
}

func (s *Store) SearchBooks(ctx context.Context, q library.BookSearch) ([]library.Book, error) {
	sql := `SELECT ` + bookCols + ` FROM books WHERE 1=1`
	args := []any{}
	if q.Keyword != "" {
		args = append(args, "%"+q.Keyword+"%")
		sql += fmt.Sprintf(` AND (title ILIKE $%d OR COALESCE(isbn,'') ILIKE $%d)`, len(args), len(args))
	}
	if q.CategoryID != "" {
		args = append(args, q.CategoryID)
		sql += fmt.Sprintf(` AND category_id=$%d`, len(args))
	}
	if q.AuthorID != "" {
		args = append(args, q.AuthorID)
		sql += fmt.Sprintf(` AND author_id=$%d`, len(args))
	}
	return s.queryBooks(ctx, sql+` ORDER BY title`, args...)
}

func (s *Store) queryBooks(ctx context.Context, sql string, args ...any) ([]library.Book, error) {
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []library.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *Store) AddBook(ctx context.Context, b *library.Book) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO books(id, title, category_id, author_id, isbn, publish_year, summary, total_copies, available_copies)
		VALUES ($1,$2,$3,$4,NULLIF($5,''),NULLIF($6,0),NULLIF($7,''),$8,$9)`,
		b.ID, b.Title, b.CategoryID, b.AuthorID, b.ISBN, b.PublishYear, b.Summary, b.TotalCopies, b.AvailableCopies)
	return err
}

func (s *Store) UpdateBook(ctx context.Context, b *library.Book) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE books SET title=$2, category_id=$3, author_id=$4, isbn=NULLIF($5,''),
			publish_year=NULLIF($6,0), summary=NULLIF($7,''), total_copies=$8, available_copies=$9
		WHERE id=$1`,
		b.ID, b.Title, b.CategoryID, b.AuthorID, b.ISBN, b.PublishYear, b.Summary, b.TotalCopies, b.AvailableCopies)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("book %s: %w", b.ID, library.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteBook(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("book %s: %w", id, library.ErrNotFound)
	}
	return nil
}

// ---- categories / authors ----

func (s *Store) ListCategories(ctx context.Context) ([]library.Category, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []library.Category
	for rows.Next() {
		var c library.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) AddCategory(ctx context.Context, c *library.Category) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO categories(id, name) VALUES ($1,$2)`, c.ID, c.Name)
	return err
}

func (s *Store) UpdateCategory(ctx context.Context, c *library.Category) error {
	ct, err := s.DB.Exec(ctx, `UPDATE categories SET name=$2 WHERE id=$1`, c.ID, c.Name)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", c.ID, library.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, library.ErrNotFound)
	}
	return nil
}

func (s *Store) ListAuthors(ctx context.Context) ([]library.Author, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, name FROM authors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []library.Author
	for rows.Next() {
		var a library.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) AddAuthor(ctx context.Context, a *library.Author) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO authors(id, name) VALUES ($1,$2)`, a.ID, a.Name)
	return err
}

func (s *Store) UpdateAuthor(ctx context.Context, a *library.Author) error {
	ct, err := s.DB.Exec(ctx, `UPDATE authors SET name=$2 WHERE id=$1`, a.ID, a.Name)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("author %s: %w", a.ID, library.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM authors WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("author %s: %w", id, library.ErrNotFound)
	}
	return nil
}

// ---- customers ----

const customerCols = `id, full_name, COALESCE(email,''), COALESCE(phone,''),
	COALESCE(address,''), user_name, password_hash, card_status, created_at`

func scanCustomer(row pgx.Row) (*library.Customer, error) {
	var c library.Customer
	err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Address,
		&c.UserName, &c.PasswordHash, &c.CardStatus, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*library.Customer, error) {
	c, err := scanCustomer(s.DB.QueryRow(ctx, `SELECT `+customerCols+` FROM customers WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", id, library.ErrNotFound)
	}
	return c, err
}

func (s *Store) GetCustomerByUserName(ctx context.Context, userName string) (*library.Customer, error) {
	c, err := scanCustomer(s.DB.QueryRow(ctx, `SELECT `+customerCols+` FROM customers WHERE user_name=$1`, userName))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", userName, library.ErrNotFound)
	}
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context) ([]library.Customer, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+customerCols+` FROM customers ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []library.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) AddCustomer(ctx context.Context, c *library.Customer) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO customers(id, full_name, email, phone, address, user_name, password_hash, card_status, created_at)
		VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),NULLIF($5,''),$6,$7,$8,$9)`,
		c.ID, c.FullName, c.Email, c.Phone, c.Address, c.UserName, c.PasswordHash, c.CardStatus, c.CreatedAt)
	return err
}

func (s *Store) UpdateCustomer(ctx context.Context, c *library.Customer) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE customers SET full_name=$2, email=NULLIF($3,''), phone=NULLIF($4,''),
			address=NULLIF($5,''), user_name=$6, password_hash=$7, card_status=$8
		WHERE id=$1`,
		c.ID, c.FullName, c.Email, c.Phone, c.Address, c.UserName, c.PasswordHash, c.CardStatus)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("customer %s: %w", c.ID, library.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	ct, err := s.DB.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("customer %s: %w", id, library.ErrNotFound)
	}
	return nil
}

// ---- staff ----

const staffCols = `id, full_name, user_name, password_hash, role, is_active, created_at`

func scanStaff(row pgx.Row) (*library.Staff, error) {
	var st library.Staff
	err := row.Scan(&st.ID, &st.FullName, &st.UserName, &st.PasswordHash, &st.Role, &st.IsActive, &st.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) GetStaff(ctx context.Context, id string) (*library.Staff, error) {
	st, err := scanStaff(s.DB.QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("staff %s: %w", id, library.ErrNotFound)
	}
	return st, err
}

func (s *Store) GetStaffByUserName(ctx context.Context, userName string) (*library.Staff, error) {
	st, err := scanStaff(s.DB.QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE user_name=$1`, userName))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("staff %s: %w", userName, library.ErrNotFound)
	}
	return st, err
}

// ---- loans ----

const loanCols = `id, customer_id, book_id, request_date, borrow_date, due_date, return_date,
	status, created_by_customer, COALESCE(processed_by_staff_id,''), fine_amount, is_fine_paid`

func scanLoan(row pgx.Row) (*library.Loan, error) {
	var l library.Loan
	err := row.Scan(&l.ID, &l.CustomerID, &l.BookID, &l.RequestDate, &l.BorrowDate, &l.DueDate,
		&l.ReturnDate, &l.Status, &l.CreatedByCustomer, &l.ProcessedByStaffID, &l.FineAmount, &l.IsFinePaid)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) GetLoan(ctx context.Context, id string) (*library.Loan, error) {
	l, err := scanLoan(s.DB.QueryRow(ctx, `SELECT `+loanCols+` FROM loans WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("loan %s: %w", id, library.ErrNotFound)
	}
	return l, err
}

func (s *Store) ListLoans(ctx context.Context) ([]library.Loan, error) {
	return s.queryLoans(ctx, `SELECT `+loanCols+` FROM loans ORDER BY request_date DESC`)
}

func (s *Store) ListLoansByCustomer(ctx context.Context, customerID string) ([]library.Loan, error) {
	return s.queryLoans(ctx,
		`SELECT `+loanCols+` FROM loans WHERE customer_id=$1 ORDER BY request_date DESC`, customerID)
}

func (s *Store) ListLoansByStatus(ctx context.Context, st library.Status) ([]library.Loan, error) {
	return s.queryLoans(ctx,
		`SELECT `+loanCols+` FROM loans WHERE status=$1 ORDER BY due_date NULLS LAST, request_date DESC`, st)
}

func (s *Store) ListOverdueLoans(ctx context.Context, asOf time.Time) ([]library.Loan, error) {
	return s.queryLoans(ctx,
		`SELECT `+loanCols+` FROM loans WHERE status=$1 AND due_date < $2 ORDER BY due_date`,
		library.StatusBorrowed, asOf)
}

func (s *Store) queryLoans(ctx context.Context, sql string, args ...any) ([]library.Loan, error) {
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []library.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (s *Store) AddLoan(ctx context.Context, l *library.Loan) error {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO loans(id, customer_id, book_id, request_date, borrow_date, due_date, return_date,
			status, created_by_customer, processed_by_staff_id, fine_amount, is_fine_paid)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''),$11,$12)`,
		l.ID, l.CustomerID, l.BookID, l.RequestDate, l.BorrowDate, l.DueDate, l.ReturnDate,
		l.Status, l.CreatedByCustomer, l.ProcessedByStaffID, l.FineAmount, l.IsFinePaid)
	return err
}

func (s *Store) UpdateLoan(ctx context.Context, l *library.Loan) error {
	ct, err := s.DB.Exec(ctx, `
		UPDATE loans SET borrow_date=$2, due_date=$3, return_date=$4, status=$5,
			processed_by_staff_id=NULLIF($6,''), fine_amount=$7, is_fine_paid=$8
		WHERE id=$1`,
		l.ID, l.BorrowDate, l.DueDate, l.ReturnDate, l.Status, l.ProcessedByStaffID, l.FineAmount, l.IsFinePaid)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("loan %s: %w", l.ID, library.ErrNotFound)
	}
	return nil
}

// ApproveLoan moves the loan to Borrowed and takes one copy, in one
// transaction. The status guard and the conditional decrement make racing
// approvals safe: the second caller hits 0 affected rows and rolls back.
func (s *Store) ApproveLoan(ctx context.Context, l *library.Loan) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE loans SET status=$2, borrow_date=$3, due_date=$4, processed_by_staff_id=NULLIF($5,'')
		WHERE id=$1 AND status=$6`,
		l.ID, l.Status, l.BorrowDate, l.DueDate, l.ProcessedByStaffID, library.StatusRequested)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("loan %s is no longer Requested: %w", l.ID, library.ErrInvalidState)
	}

	ct, err = tx.Exec(ctx, `
		UPDATE books SET available_copies = available_copies - 1
		WHERE id=$1 AND available_copies > 0`, l.BookID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("book %s: %w", l.BookID, library.ErrUnavailable)
	}

	return tx.Commit(ctx)
}

// ReturnLoan closes the loan and puts the copy back, in one transaction.
func (s *Store) ReturnLoan(ctx context.Context, l *library.Loan) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE loans SET status=$2, return_date=$3, processed_by_staff_id=NULLIF($4,''), fine_amount=$5
		WHERE id=$1 AND status=$6`,
		l.ID, l.Status, l.ReturnDate, l.ProcessedByStaffID, l.FineAmount, library.StatusBorrowed)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("loan %s is no longer Borrowed: %w", l.ID, library.ErrInvalidState)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE books SET available_copies = available_copies + 1 WHERE id=$1`, l.BookID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
