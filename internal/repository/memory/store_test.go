package memory

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paysync/internal/domain"
	"paysync/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func createUserWithAccount(t *testing.T, s *Store, name, email, balance string) (domain.User, domain.Account) {
	t.Helper()
	ctx := context.Background()

	user := domain.User{Name: name, Email: email, PhoneNo: "555"}
	require.NoError(t, s.User().CreateUser(ctx, &user))

	account := domain.Account{UserID: user.ID, Balance: decimal.RequireFromString(balance)}
	require.NoError(t, s.Account().CreateAccount(ctx, &account))
	return user, account
}

func TestCreateAndFetch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, account := createUserWithAccount(t, s, "John Doe", "john@example.com", "100.50")
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, int64(1), account.ID)

	details, err := s.Account().GetAccountByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", details.UserName)
	assert.Equal(t, "john@example.com", details.UserEmail)
	assert.True(t, details.Balance.Equal(decimal.RequireFromString("100.5")))

	_, err = s.Account().GetAccountByUserID(ctx, 42)
	assert.True(t, stderrors.Is(err, errors.ErrAccountNotFound))

	found, err := s.User().GetUserByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := s.User().GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _ := createUserWithAccount(t, s, "John Doe", "john@example.com", "0")

	dup := domain.User{Name: "Other", Email: "john@example.com", PhoneNo: "1"}
	err := s.User().CreateUser(ctx, &dup)
	assert.True(t, stderrors.Is(err, errors.ErrDuplicateUser))

	second := domain.Account{UserID: user.ID}
	assert.Error(t, s.Account().CreateAccount(ctx, &second), "a user owns at most one account")

	orphan := domain.Account{UserID: 99}
	assert.Error(t, s.Account().CreateAccount(ctx, &orphan))
}

func TestTransactionRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, account := createUserWithAccount(t, s, "John Doe", "john@example.com", "100")

	boom := stderrors.New("boom")
	err := s.WithTransaction(ctx, func(tx domain.Store) error {
		if err := tx.Account().UpdateAccountBalance(ctx, account.ID, decimal.NewFromInt(5)); err != nil {
			return err
		}
		other := domain.User{Name: "Jane", Email: "jane@example.com", PhoneNo: "2"}
		if err := tx.User().CreateUser(ctx, &other); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	details, err := s.Account().GetAccountByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, details.Balance.Equal(decimal.NewFromInt(100)))

	jane, err := s.User().GetUserByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Nil(t, jane)
}

func TestTransactionCommit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, account := createUserWithAccount(t, s, "John Doe", "john@example.com", "100")

	err := s.WithTransaction(ctx, func(tx domain.Store) error {
		return tx.Account().UpdateAccountBalance(ctx, account.ID, decimal.NewFromInt(75))
	})
	require.NoError(t, err)

	details, err := s.Account().GetAccountByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, details.Balance.Equal(decimal.NewFromInt(75)))
}

func TestNestedTransactionRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTransaction(ctx, func(tx domain.Store) error {
		return tx.WithTransaction(ctx, func(domain.Store) error { return nil })
	})
	assert.True(t, stderrors.Is(err, errors.ErrCannotBeginTransaction))
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithTransaction(ctx, func(domain.Store) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
	assert.Error(t, s.Ping(ctx))
}

func TestLockAccountsByUserIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	john, _ := createUserWithAccount(t, s, "John Doe", "john@example.com", "1")
	jane, _ := createUserWithAccount(t, s, "Jane Smith", "jane@example.com", "2")

	accounts, err := s.Account().LockAccountsByUserIDs(ctx, john.ID, jane.ID, 404)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Equal(t, "John Doe", accounts[john.ID].UserName)
	assert.Equal(t, "Jane Smith", accounts[jane.ID].UserName)
	assert.NotContains(t, accounts, int64(404))
}

func TestUpdateMissingAccount(t *testing.T) {
	s := newTestStore(t)
	err := s.Account().UpdateAccountBalance(context.Background(), 7, decimal.Zero)
	assert.True(t, stderrors.Is(err, errors.ErrAccountNotFound))
}

func TestListUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createUserWithAccount(t, s, "John Doe", "john@example.com", "0")
	createUserWithAccount(t, s, "Jane Smith", "jane@example.com", "0")
	createUserWithAccount(t, s, "Robert Johnson", "robert@example.com", "0")

	all, err := s.User().ListUsers(ctx, domain.UserFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})

	johns, err := s.User().ListUsers(ctx, domain.UserFilter{Name: "JOHN"})
	require.NoError(t, err)
	require.Len(t, johns, 2)
	assert.Equal(t, "John Doe", johns[0].Name)
	assert.Equal(t, "Robert Johnson", johns[1].Name)

	none, err := s.User().ListUsers(ctx, domain.UserFilter{PhoneNo: "999"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
