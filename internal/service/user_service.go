package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"paysync/internal/domain"
	"paysync/internal/errors"
)

type UserService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewUserService(store domain.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

type CreateUserRequest struct {
	Name    string
	Email   string
	PhoneNo string
	// InitialBalance defaults to zero when nil.
	InitialBalance *decimal.Decimal
}

type UserWithAccount struct {
	domain.User
	Account domain.Account
}

// CreateUser inserts the user and its account in one transaction.
func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*UserWithAccount, error) {
	if req == nil || isBlank(req.Name) || isBlank(req.Email) || isBlank(req.PhoneNo) {
		return nil, errors.ErrUserFieldsRequired
	}

	initialBalance := decimal.Zero
	if req.InitialBalance != nil {
		initialBalance = *req.InitialBalance
	}
	if initialBalance.IsNegative() {
		return nil, errors.ErrNegativeBalance
	}
	if err := validateMoney(initialBalance); err != nil {
		return nil, err
	}

	user := domain.User{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		PhoneNo: strings.TrimSpace(req.PhoneNo),
	}

	s.logger.Info("Creating user", "email", user.Email, "initial_balance", initialBalance)

	var created *UserWithAccount
	err := s.store.WithTransaction(ctx, func(tx domain.Store) error {
		existing, err := tx.User().GetUserByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.ErrDuplicateUser
		}

		if err := tx.User().CreateUser(ctx, &user); err != nil {
			return err
		}

		account := domain.Account{
			UserID:  user.ID,
			Balance: initialBalance,
		}
		if err := tx.Account().CreateAccount(ctx, &account); err != nil {
			return err
		}

		created = &UserWithAccount{User: user, Account: account}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created with account", "user_id", created.ID, "account_id", created.Account.ID)
	return created, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	filter.PhoneNo = strings.TrimSpace(filter.PhoneNo)
	return s.store.User().ListUsers(ctx, filter)
}
