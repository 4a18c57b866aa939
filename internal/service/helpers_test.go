package service

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"paysync/internal/domain"
	"paysync/internal/errors"
	"paysync/internal/repository/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	d := dec(t, s)
	return &d
}

// seedUser creates a user with an account holding balance and returns the user id as a string.
func seedUser(t *testing.T, users *UserService, name, email, balance string) string {
	t.Helper()
	created, err := users.CreateUser(context.Background(), &CreateUserRequest{
		Name:           name,
		Email:          email,
		PhoneNo:        "5550100",
		InitialBalance: decPtr(t, balance),
	})
	require.NoError(t, err)
	return itoa(created.ID)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func balanceOf(t *testing.T, accounts *AccountService, userID string) decimal.Decimal {
	t.Helper()
	res, err := accounts.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return res.Balance
}

// untouchableStore fails the test on any access; validation must reject input before reaching it.
type untouchableStore struct {
	t *testing.T
}

func (s untouchableStore) Account() domain.AccountRepository {
	s.t.Fatal("store accessed")
	return nil
}

func (s untouchableStore) User() domain.UserRepository {
	s.t.Fatal("store accessed")
	return nil
}

func (s untouchableStore) WithTransaction(context.Context, func(domain.Store) error) error {
	s.t.Fatal("transaction started")
	return nil
}

func (s untouchableStore) Ping(context.Context) error { return nil }
func (s untouchableStore) Close() error              { return nil }

// faultyStore wraps the memory store and fails the failOnUpdate-th balance
// update (1-based) with an internal error.
type faultyStore struct {
	domain.Store
	failOnUpdate int32
	updates      *int32
}

func newFaultyStore(inner domain.Store, failOnUpdate int32) *faultyStore {
	return &faultyStore{Store: inner, failOnUpdate: failOnUpdate, updates: new(int32)}
}

func (s *faultyStore) Account() domain.AccountRepository {
	return &faultyAccounts{AccountRepository: s.Store.Account(), store: s}
}

func (s *faultyStore) WithTransaction(ctx context.Context, fn func(domain.Store) error) error {
	return s.Store.WithTransaction(ctx, func(tx domain.Store) error {
		return fn(&faultyStore{Store: tx, failOnUpdate: s.failOnUpdate, updates: s.updates})
	})
}

type faultyAccounts struct {
	domain.AccountRepository
	store *faultyStore
}

func (r *faultyAccounts) UpdateAccountBalance(ctx context.Context, accountID int64, newBalance decimal.Decimal) error {
	if atomic.AddInt32(r.store.updates, 1) == r.store.failOnUpdate {
		return errors.NewAppError(errors.InternalError, "failed to update account balance").WithDetails("injected failure")
	}
	return r.AccountRepository.UpdateAccountBalance(ctx, accountID, newBalance)
}

func newServices() (*memory.Store, *AccountService, *UserService) {
	logger := discardLogger()
	store := memory.NewStore(logger)
	return store, NewAccountService(store, logger), NewUserService(store, logger)
}
