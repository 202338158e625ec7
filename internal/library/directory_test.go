package library_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-library-loans.git/internal/library"
	"github.com/ariefcatur/go-library-loans.git/internal/memstore"
)

func seedStaff(t *testing.T, store *memstore.Store, userName, password string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	store.SeedStaff(library.Staff{
		ID: "staff-" + userName, FullName: "Staff " + userName, UserName: userName,
		PasswordHash: string(hash), Role: library.RoleAdmin, IsActive: active,
		CreatedAt: time.Now().UTC(),
	})
}

func TestAddCustomerAndLogin(t *testing.T) {
	store := memstore.New()
	dir := &library.Directory{Store: store}
	ctx := context.Background()

	c := &library.Customer{FullName: "Alice Reader", UserName: "alice"}
	require.NoError(t, dir.AddCustomer(ctx, c, "s3cret"))
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, library.CardActive, c.CardStatus)
	assert.NotEqual(t, "s3cret", c.PasswordHash, "plaintext must not be stored")

	got, err := dir.CustomerLogin(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = dir.CustomerLogin(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, library.ErrInvalidCredentials)
	_, err = dir.CustomerLogin(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, library.ErrInvalidCredentials)
}

func TestAddCustomerValidation(t *testing.T) {
	dir := &library.Directory{Store: memstore.New()}
	ctx := context.Background()

	err := dir.AddCustomer(ctx, &library.Customer{UserName: "x"}, "pw")
	assert.ErrorIs(t, err, library.ErrValidation)
	err = dir.AddCustomer(ctx, &library.Customer{FullName: "X", UserName: "x"}, "")
	assert.ErrorIs(t, err, library.ErrValidation)
}

func TestUpdateCustomerPreservesCredential(t *testing.T) {
	store := memstore.New()
	dir := &library.Directory{Store: store}
	ctx := context.Background()

	c := &library.Customer{FullName: "Alice Reader", UserName: "alice"}
	require.NoError(t, dir.AddCustomer(ctx, c, "s3cret"))

	edit := &library.Customer{ID: c.ID, FullName: "Alice R.", UserName: "alice", Email: "alice@example.com"}
	require.NoError(t, dir.UpdateCustomer(ctx, edit))

	_, err := dir.CustomerLogin(ctx, "alice", "s3cret")
	require.NoError(t, err, "credential must survive a profile edit")
}

func TestCardStatusToggle(t *testing.T) {
	store := memstore.New()
	dir := &library.Directory{Store: store}
	ctx := context.Background()

	c := &library.Customer{FullName: "Alice Reader", UserName: "alice"}
	require.NoError(t, dir.AddCustomer(ctx, c, "pw"))

	require.NoError(t, dir.DeactivateCard(ctx, c.ID))
	got, _ := store.GetCustomer(ctx, c.ID)
	assert.Equal(t, library.CardDisabled, got.CardStatus)

	require.NoError(t, dir.ActivateCard(ctx, c.ID))
	got, _ = store.GetCustomer(ctx, c.ID)
	assert.Equal(t, library.CardActive, got.CardStatus)
}

func TestStaffLogin(t *testing.T) {
	store := memstore.New()
	dir := &library.Directory{Store: store}
	ctx := context.Background()

	seedStaff(t, store, "bob", "hunter2", true)
	seedStaff(t, store, "eve", "hunter2", false)

	staff, err := dir.StaffLogin(ctx, "bob", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "bob", staff.UserName)

	_, err = dir.StaffLogin(ctx, "bob", "wrong")
	assert.ErrorIs(t, err, library.ErrInvalidCredentials)

	// inactive accounts cannot log in even with the right password
	_, err = dir.StaffLogin(ctx, "eve", "hunter2")
	assert.ErrorIs(t, err, library.ErrInvalidCredentials)

	_, err = dir.StaffLogin(ctx, "nobody", "hunter2")
	assert.ErrorIs(t, err, library.ErrInvalidCredentials)
}
