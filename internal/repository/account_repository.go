package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"paysync/internal/domain"
	"paysync/internal/errors"
)

const accountDetailsColumns = `
	a.id, a.user_id, a.balance, a.created_at, a.updated_at, u.name, u.email
	FROM accounts a
	JOIN users u ON u.id = a.user_id
`

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (user_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(
		ctx,
		query,
		account.UserID,
		account.Balance.String(),
		now,
		now,
	).Scan(&account.ID)

	if err != nil {
		r.logger.Error("Failed to create account", "user_id", account.UserID, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to create account").WithDetails(err.Error())
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created successfully", "account_id", account.ID, "user_id", account.UserID)
	return nil
}

func (r *accountRepository) GetAccountByUserID(ctx context.Context, userID int64) (*domain.AccountDetails, error) {
	query := `SELECT ` + accountDetailsColumns + ` WHERE a.user_id = $1`

	return r.scanAccount(ctx, query, userID)
}

func (r *accountRepository) GetAccountByUserIDForUpdate(ctx context.Context, userID int64) (*domain.AccountDetails, error) {
	query := `SELECT ` + accountDetailsColumns + ` WHERE a.user_id = $1 FOR UPDATE OF a`

	return r.scanAccount(ctx, query, userID)
}

func (r *accountRepository) LockAccountsByUserIDs(ctx context.Context, userIDs ...int64) (map[int64]*domain.AccountDetails, error) {
	// Rows are locked in the sort order, so every caller acquires locks
	// lowest account id first.
	query := `SELECT ` + accountDetailsColumns + `
		WHERE a.user_id = ANY($1)
		ORDER BY a.id
		FOR UPDATE OF a
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		r.logger.Error("Failed to lock accounts", "user_ids", userIDs, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to lock accounts").WithDetails(err.Error())
	}
	defer rows.Close()

	accounts := make(map[int64]*domain.AccountDetails, len(userIDs))
	for rows.Next() {
		account, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		accounts[account.UserID] = account
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate locked accounts", "user_ids", userIDs, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to lock accounts").WithDetails(err.Error())
	}

	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *accountRepository) scanAccount(ctx context.Context, query string, userID int64) (*domain.AccountDetails, error) {
	account, err := r.scanRow(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Warn("Account not found", "user_id", userID)
			return nil, errors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// scanRow returns sql.ErrNoRows untouched so callers can map it to their own not-found error.
func (r *accountRepository) scanRow(row rowScanner) (*domain.AccountDetails, error) {
	var account domain.AccountDetails
	var balanceStr string

	err := row.Scan(
		&account.ID,
		&account.UserID,
		&balanceStr,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.UserName,
		&account.UserEmail,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		r.logger.Error("Failed to get account", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get account").WithDetails(err.Error())
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		r.logger.Error("Failed to parse balance", "account_id", account.ID, "balance_str", balanceStr, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to parse balance").WithDetails(err.Error())
	}

	account.Balance = balance
	return &account, nil
}

func (r *accountRepository) UpdateAccountBalance(ctx context.Context, accountID int64, newBalance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, newBalance.String(), time.Now(), accountID)
	if err != nil {
		r.logger.Error("Failed to update account balance", "account_id", accountID, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to update account balance").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to get rows affected").WithDetails(err.Error())
	}

	if rowsAffected == 0 {
		r.logger.Warn("No account found to update", "account_id", accountID)
		return errors.ErrAccountNotFound
	}

	r.logger.Info("Account balance updated", "account_id", accountID, "new_balance", newBalance)
	return nil
}
