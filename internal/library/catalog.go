package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Catalog is the CRUD facade for books, categories and authors. Copy counts
// on existing books are otherwise only touched by the Engine.
type Catalog struct {
	Store Store
}

func (c *Catalog) GetBook(ctx context.Context, id string) (*Book, error) {
	return c.Store.GetBook(ctx, id)
}

func (c *Catalog) ListBooks(ctx context.Context) ([]Book, error) {
	return c.Store.ListBooks(ctx)
}

func (c *Catalog) SearchBooks(ctx context.Context, q BookSearch) ([]Book, error) {
	return c.Store.SearchBooks(ctx, q)
}

// AddBook stores a new title. All copies of a new book start on the shelf.
func (c *Catalog) AddBook(ctx context.Context, b *Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("book title is required: %w", ErrValidation)
	}
	if b.TotalCopies < 0 {
		return fmt.Errorf("total copies cannot be negative: %w", ErrValidation)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.AvailableCopies = b.TotalCopies
	return c.Store.AddBook(ctx, b)
}

func (c *Catalog) UpdateBook(ctx context.Context, b *Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("book title is required: %w", ErrValidation)
	}
	if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return fmt.Errorf("available copies must stay within 0..totalCopies: %w", ErrValidation)
	}
	return c.Store.UpdateBook(ctx, b)
}

func (c *Catalog) DeleteBook(ctx context.Context, id string) error {
	return c.Store.DeleteBook(ctx, id)
}

func (c *Catalog) ListCategories(ctx context.Context) ([]Category, error) {
	return c.Store.ListCategories(ctx)
}

func (c *Catalog) AddCategory(ctx context.Context, cat *Category) error {
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("category name is required: %w", ErrValidation)
	}
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	return c.Store.AddCategory(ctx, cat)
}

func (c *Catalog) UpdateCategory(ctx context.Context, cat *Category) error {
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("category name is required: %w", ErrValidation)
	}
	return c.Store.UpdateCategory(ctx, cat)
}

func (c *Catalog) DeleteCategory(ctx context.Context, id string) error {
	return c.Store.DeleteCategory(ctx, id)
}

func (c *Catalog) ListAuthors(ctx context.Context) ([]Author, error) {
	return c.Store.ListAuthors(ctx)
}

func (c *Catalog) AddAuthor(ctx context.Context, a *Author) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("author name is required: %w", ErrValidation)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return c.Store.AddAuthor(ctx, a)
}

func (c *Catalog) UpdateAuthor(ctx context.Context, a *Author) error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("author name is required: %w", ErrValidation)
	}
	return c.Store.UpdateAuthor(ctx, a)
}

func (c *Catalog) DeleteAuthor(ctx context.Context, id string) error {
	return c.Store.DeleteAuthor(ctx, id)
}
