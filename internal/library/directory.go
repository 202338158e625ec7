package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Directory manages customers and staff accounts. Logins deliberately return
// the same error whether the username or the password is wrong.
type Directory struct {
	Store Store
}

func (d *Directory) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return d.Store.GetCustomer(ctx, id)
}

func (d *Directory) ListCustomers(ctx context.Context) ([]Customer, error) {
	return d.Store.ListCustomers(ctx)
}

// AddCustomer registers a customer with an Active card, hashing the submitted
// password. The plaintext never touches the store.
func (d *Directory) AddCustomer(ctx context.Context, c *Customer, password string) error {
	if strings.TrimSpace(c.FullName) == "" || strings.TrimSpace(c.UserName) == "" {
		return fmt.Errorf("full name and username are required: %w", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("password is required: %w", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.PasswordHash = string(hash)
	c.CardStatus = CardActive
	c.CreatedAt = time.Now().UTC()
	return d.Store.AddCustomer(ctx, c)
}

// UpdateCustomer edits contact fields. Credential, card status and creation
// time are preserved from the stored record.
func (d *Directory) UpdateCustomer(ctx context.Context, c *Customer) error {
	existing, err := d.Store.GetCustomer(ctx, c.ID)
	if err != nil {
		return err
	}
	c.PasswordHash = existing.PasswordHash
	c.CardStatus = existing.CardStatus
	c.CreatedAt = existing.CreatedAt
	return d.Store.UpdateCustomer(ctx, c)
}

func (d *Directory) DeleteCustomer(ctx context.Context, id string) error {
	return d.Store.DeleteCustomer(ctx, id)
}

func (d *Directory) ActivateCard(ctx context.Context, customerID string) error {
	return d.setCardStatus(ctx, customerID, CardActive)
}

func (d *Directory) DeactivateCard(ctx context.Context, customerID string) error {
	return d.setCardStatus(ctx, customerID, CardDisabled)
}

func (d *Directory) setCardStatus(ctx context.Context, customerID string, st CardStatus) error {
	customer, err := d.Store.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	customer.CardStatus = st
	return d.Store.UpdateCustomer(ctx, customer)
}

func (d *Directory) CustomerLogin(ctx context.Context, userName, password string) (*Customer, error) {
	customer, err := d.Store.GetCustomerByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return customer, nil
}

// StaffLogin verifies the credential and that the account is still active.
func (d *Directory) StaffLogin(ctx context.Context, userName, password string) (*Staff, error) {
	staff, err := d.Store.GetStaffByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !staff.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return staff, nil
}
