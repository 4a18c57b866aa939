// Package memory is an in-process ledger store. Transactions run one at a
// time behind a single mutex and work on a copy of the state that replaces
// the committed state only when the callback succeeds.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"paysync/internal/domain"
	"paysync/internal/errors"
)

type state struct {
	users         map[int64]domain.User
	accounts      map[int64]domain.Account
	nextUserID    int64
	nextAccountID int64
}

func (st *state) clone() *state {
	cp := &state{
		users:         make(map[int64]domain.User, len(st.users)),
		accounts:      make(map[int64]domain.Account, len(st.accounts)),
		nextUserID:    st.nextUserID,
		nextAccountID: st.nextAccountID,
	}
	for id, u := range st.users {
		cp.users[id] = u
	}
	for id, a := range st.accounts {
		cp.accounts[id] = a
	}
	return cp
}

type Store struct {
	mu     *sync.Mutex
	state  *state
	inTx   bool
	logger *slog.Logger
}

var _ domain.Store = (*Store)(nil)

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		mu: &sync.Mutex{},
		state: &state{
			users:    make(map[int64]domain.User),
			accounts: make(map[int64]domain.Account),
		},
		logger: logger,
	}
}

func (s *Store) Account() domain.AccountRepository {
	return &accountRepository{store: s}
}

func (s *Store) User() domain.UserRepository {
	return &userRepository{store: s}
}

func (s *Store) WithTransaction(ctx context.Context, fn func(domain.Store) error) error {
	if s.inTx {
		return errors.ErrCannotBeginTransaction
	}
	if err := ctx.Err(); err != nil {
		return errors.NewAppError(errors.InternalError, "failed to begin transaction").WithDetails(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txStore := &Store{
		mu:     s.mu,
		state:  s.state.clone(),
		inTx:   true,
		logger: s.logger,
	}

	if err := fn(txStore); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return errors.NewAppError(errors.InternalError, "failed to commit transaction").WithDetails(err.Error())
	}

	s.state = txStore.state
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

// read runs fn against the current state. Outside a transaction it takes
// the mutex; inside one the mutex is already held by WithTransaction.
func (s *Store) read(fn func(st *state)) {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn(s.state)
}

type accountRepository struct {
	store *Store
}

func (r *accountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	var err error
	r.store.read(func(st *state) {
		if _, ok := st.users[account.UserID]; !ok {
			err = errors.NewAppError(errors.InternalError, "failed to create account").WithDetails("owner does not exist")
			return
		}
		for _, existing := range st.accounts {
			if existing.UserID == account.UserID {
				err = errors.NewAppError(errors.InternalError, "failed to create account").WithDetails("user already has an account")
				return
			}
		}
		st.nextAccountID++
		now := time.Now()
		account.ID = st.nextAccountID
		account.CreatedAt = now
		account.UpdatedAt = now
		st.accounts[account.ID] = *account
	})
	if err == nil {
		r.store.logger.Info("Account created successfully", "account_id", account.ID, "user_id", account.UserID)
	}
	return err
}

func (r *accountRepository) GetAccountByUserID(ctx context.Context, userID int64) (*domain.AccountDetails, error) {
	var details *domain.AccountDetails
	r.store.read(func(st *state) {
		details = st.accountByUserID(userID)
	})
	if details == nil {
		r.store.logger.Warn("Account not found", "user_id", userID)
		return nil, errors.ErrAccountNotFound
	}
	return details, nil
}

// GetAccountByUserIDForUpdate needs no extra locking: the transaction
// already holds the store mutex.
func (r *accountRepository) GetAccountByUserIDForUpdate(ctx context.Context, userID int64) (*domain.AccountDetails, error) {
	return r.GetAccountByUserID(ctx, userID)
}

func (r *accountRepository) LockAccountsByUserIDs(ctx context.Context, userIDs ...int64) (map[int64]*domain.AccountDetails, error) {
	accounts := make(map[int64]*domain.AccountDetails, len(userIDs))
	r.store.read(func(st *state) {
		for _, userID := range userIDs {
			if details := st.accountByUserID(userID); details != nil {
				accounts[userID] = details
			}
		}
	})
	return accounts, nil
}

func (r *accountRepository) UpdateAccountBalance(ctx context.Context, accountID int64, newBalance decimal.Decimal) error {
	var found bool
	r.store.read(func(st *state) {
		account, ok := st.accounts[accountID]
		if !ok {
			return
		}
		found = true
		account.Balance = newBalance
		account.UpdatedAt = time.Now()
		st.accounts[accountID] = account
	})
	if !found {
		r.store.logger.Warn("No account found to update", "account_id", accountID)
		return errors.ErrAccountNotFound
	}
	r.store.logger.Info("Account balance updated", "account_id", accountID, "new_balance", newBalance)
	return nil
}

func (st *state) accountByUserID(userID int64) *domain.AccountDetails {
	for _, account := range st.accounts {
		if account.UserID != userID {
			continue
		}
		user := st.users[userID]
		return &domain.AccountDetails{
			Account:   account,
			UserName:  user.Name,
			UserEmail: user.Email,
		}
	}
	return nil
}

type userRepository struct {
	store *Store
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	var err error
	r.store.read(func(st *state) {
		for _, existing := range st.users {
			if existing.Email == user.Email {
				err = errors.ErrDuplicateUser
				return
			}
		}
		st.nextUserID++
		user.ID = st.nextUserID
		user.CreatedAt = time.Now()
		st.users[user.ID] = *user
	})
	if err != nil {
		r.store.logger.Warn("Duplicate user creation attempt", "email", user.Email)
		return err
	}
	r.store.logger.Info("User created successfully", "user_id", user.ID)
	return nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var found *domain.User
	r.store.read(func(st *state) {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				found = &u
				return
			}
		}
	})
	return found, nil
}

func (r *userRepository) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	name := strings.ToLower(filter.Name)
	phone := strings.ToLower(filter.PhoneNo)

	users := make([]domain.User, 0)
	r.store.read(func(st *state) {
		for _, u := range st.users {
			if name != "" && !strings.Contains(strings.ToLower(u.Name), name) {
				continue
			}
			if phone != "" && !strings.Contains(strings.ToLower(u.PhoneNo), phone) {
				continue
			}
			users = append(users, u)
		}
	})

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
