// Package seed loads the demo data set used for local development.
package seed

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"paysync/internal/domain"
	"paysync/internal/errors"
	"paysync/internal/service"
)

type DemoUser struct {
	Name           string
	Email          string
	PhoneNo        string
	InitialBalance decimal.Decimal
}

type DemoTransfer struct {
	FromEmail string
	ToEmail   string
	Amount    decimal.Decimal
}

var DemoUsers = []DemoUser{
	{"John Doe", "john@example.com", "1234567890", decimal.RequireFromString("1000.00")},
	{"Jane Smith", "jane@example.com", "2345678901", decimal.RequireFromString("1500.00")},
	{"Robert Johnson", "robert@example.com", "3456789012", decimal.RequireFromString("750.50")},
	{"Sarah Williams", "sarah@example.com", "4567890123", decimal.RequireFromString("2500.75")},
	{"Michael Brown", "michael@example.com", "5678901234", decimal.RequireFromString("500.25")},
}

var DemoTransfers = []DemoTransfer{
	{"john@example.com", "jane@example.com", decimal.RequireFromString("100")},
	{"jane@example.com", "robert@example.com", decimal.RequireFromString("50")},
}

// Balance is one line of the post-seed report.
type Balance struct {
	UserID  int64
	Name    string
	Email   string
	Balance decimal.Decimal
}

type Seeder struct {
	users    *service.UserService
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewSeeder(store domain.Store, logger *slog.Logger) *Seeder {
	return &Seeder{
		users:    service.NewUserService(store, logger),
		accounts: service.NewAccountService(store, logger),
		logger:   logger,
	}
}

// Run creates the demo users, replays the demo transfers and reports every
// user's balance. Existing users are left alone, and the transfers only run
// when all of their participants were created by this call, so running it
// twice does not move money twice.
func (s *Seeder) Run(ctx context.Context) ([]Balance, error) {
	created := make(map[string]int64, len(DemoUsers))

	for _, u := range DemoUsers {
		balance := u.InitialBalance
		user, err := s.users.CreateUser(ctx, &service.CreateUserRequest{
			Name:           u.Name,
			Email:          u.Email,
			PhoneNo:        u.PhoneNo,
			InitialBalance: &balance,
		})
		if stderrors.Is(err, errors.ErrDuplicateUser) {
			s.logger.Info("User already exists, skipping", "email", u.Email)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", u.Email, err)
		}

		created[u.Email] = user.ID
		s.logger.Info("Created user", "user_id", user.ID, "email", u.Email, "balance", u.InitialBalance)
	}

	if s.freshlyCreated(created) {
		for _, t := range DemoTransfers {
			amount := t.Amount
			_, err := s.accounts.Transfer(ctx, &service.TransferRequest{
				FromUserID: strconv.FormatInt(created[t.FromEmail], 10),
				ToUserID:   strconv.FormatInt(created[t.ToEmail], 10),
				Amount:     &amount,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to transfer %s from %s to %s: %w", amount, t.FromEmail, t.ToEmail, err)
			}
		}
	} else {
		s.logger.Info("Skipping demo transfers, not every participant was created by this run")
	}

	return s.balances(ctx)
}

func (s *Seeder) freshlyCreated(created map[string]int64) bool {
	for _, t := range DemoTransfers {
		if _, ok := created[t.FromEmail]; !ok {
			return false
		}
		if _, ok := created[t.ToEmail]; !ok {
			return false
		}
	}
	return true
}

func (s *Seeder) balances(ctx context.Context) ([]Balance, error) {
	users, err := s.users.ListUsers(ctx, domain.UserFilter{})
	if err != nil {
		return nil, err
	}

	report := make([]Balance, 0, len(users))
	for _, u := range users {
		result, err := s.accounts.GetBalance(ctx, strconv.FormatInt(u.ID, 10))
		if err != nil {
			return nil, err
		}
		report = append(report, Balance{
			UserID:  u.ID,
			Name:    u.Name,
			Email:   u.Email,
			Balance: result.Balance,
		})
	}
	return report, nil
}
