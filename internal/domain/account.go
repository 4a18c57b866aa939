package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID        int64           `json:"account_id"`
	UserID    int64           `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountDetails is an account joined with its owner's name and email.
type AccountDetails struct {
	Account
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccountByUserID(ctx context.Context, userID int64) (*AccountDetails, error)
	// GetAccountByUserIDForUpdate reads the account and holds its row lock
	// until the surrounding transaction ends.
	GetAccountByUserIDForUpdate(ctx context.Context, userID int64) (*AccountDetails, error)
	// LockAccountsByUserIDs locks every existing account owned by userIDs in
	// ascending account id order. Missing owners are absent from the result.
	LockAccountsByUserIDs(ctx context.Context, userIDs ...int64) (map[int64]*AccountDetails, error)
	UpdateAccountBalance(ctx context.Context, accountID int64, newBalance decimal.Decimal) error
}
