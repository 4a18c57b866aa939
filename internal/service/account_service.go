package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"paysync/internal/domain"
	"paysync/internal/errors"
)

// AccountService runs balance queries and mutations. Every mutation is a
// single store transaction that locks the rows it reads.
type AccountService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewAccountService(store domain.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

type BalanceResult struct {
	AccountID int64
	Balance   decimal.Decimal
	UserName  string
	UserEmail string
}

// AmountRequest carries a deposit or withdrawal. A nil Amount means it was not supplied.
type AmountRequest struct {
	UserID string
	Amount *decimal.Decimal
}

type MovementResult struct {
	AccountID  int64
	NewBalance decimal.Decimal
	UserName   string
	Amount     decimal.Decimal
}

type TransferRequest struct {
	FromUserID string
	ToUserID   string
	Amount     *decimal.Decimal
}

type TransferLeg struct {
	UserID     int64
	AccountID  int64
	NewBalance decimal.Decimal
	UserName   string
}

type TransferResult struct {
	Source      TransferLeg
	Destination TransferLeg
	Amount      decimal.Decimal
}

func (s *AccountService) GetBalance(ctx context.Context, rawUserID string) (*BalanceResult, error) {
	if isBlank(rawUserID) {
		return nil, errors.ErrUserIDRequired
	}
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}

	account, err := s.store.Account().GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BalanceResult{
		AccountID: account.ID,
		Balance:   account.Balance,
		UserName:  account.UserName,
		UserEmail: account.UserEmail,
	}, nil
}

func (s *AccountService) Deposit(ctx context.Context, req *AmountRequest) (*MovementResult, error) {
	userID, amount, err := s.validateMovement(req, "Deposit amount must be positive")
	if err != nil {
		return nil, err
	}

	s.logger.Info("Processing deposit", "user_id", userID, "amount", amount)

	var result *MovementResult
	err = s.store.WithTransaction(ctx, func(tx domain.Store) error {
		account, err := tx.Account().GetAccountByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		newBalance := account.Balance.Add(amount)
		if err := checkBalanceLimit(newBalance); err != nil {
			return err
		}
		if err := tx.Account().UpdateAccountBalance(ctx, account.ID, newBalance); err != nil {
			return err
		}

		result = &MovementResult{
			AccountID:  account.ID,
			NewBalance: newBalance,
			UserName:   account.UserName,
			Amount:     amount,
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Deposit failed", "user_id", userID, "amount", amount, "error", err)
		return nil, err
	}

	s.logger.Info("Deposit completed", "account_id", result.AccountID, "new_balance", result.NewBalance)
	return result, nil
}

func (s *AccountService) Withdraw(ctx context.Context, req *AmountRequest) (*MovementResult, error) {
	userID, amount, err := s.validateMovement(req, "Withdrawal amount must be positive")
	if err != nil {
		return nil, err
	}

	s.logger.Info("Processing withdrawal", "user_id", userID, "amount", amount)

	var result *MovementResult
	err = s.store.WithTransaction(ctx, func(tx domain.Store) error {
		account, err := tx.Account().GetAccountByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		// The row stays locked until commit, so no other debit can slip in
		// between this check and the update.
		if account.Balance.LessThan(amount) {
			return errors.NewAppError(errors.InsufficientBalance, "Insufficient balance for withdrawal")
		}

		newBalance := account.Balance.Sub(amount)
		if err := tx.Account().UpdateAccountBalance(ctx, account.ID, newBalance); err != nil {
			return err
		}

		result = &MovementResult{
			AccountID:  account.ID,
			NewBalance: newBalance,
			UserName:   account.UserName,
			Amount:     amount,
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Withdrawal failed", "user_id", userID, "amount", amount, "error", err)
		return nil, err
	}

	s.logger.Info("Withdrawal completed", "account_id", result.AccountID, "new_balance", result.NewBalance)
	return result, nil
}

func (s *AccountService) Transfer(ctx context.Context, req *TransferRequest) (*TransferResult, error) {
	fromID, toID, amount, err := s.validateTransfer(req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Processing transfer",
		"from_user_id", fromID,
		"to_user_id", toID,
		"amount", amount)

	var result *TransferResult
	err = s.store.WithTransaction(ctx, func(tx domain.Store) error {
		accounts, err := tx.Account().LockAccountsByUserIDs(ctx, fromID, toID)
		if err != nil {
			return err
		}

		source, ok := accounts[fromID]
		if !ok {
			return errors.ErrSourceAccountNotFound
		}

		if source.Balance.LessThan(amount) {
			return errors.NewAppError(errors.InsufficientBalance, "Insufficient balance for transfer")
		}

		dest, ok := accounts[toID]
		if !ok {
			return errors.ErrDestinationAccountNotFound
		}

		newSourceBalance := source.Balance.Sub(amount)
		newDestBalance := dest.Balance.Add(amount)
		if err := checkBalanceLimit(newDestBalance); err != nil {
			return err
		}

		if err := tx.Account().UpdateAccountBalance(ctx, source.ID, newSourceBalance); err != nil {
			return err
		}

		if err := tx.Account().UpdateAccountBalance(ctx, dest.ID, newDestBalance); err != nil {
			return err
		}

		result = &TransferResult{
			Source: TransferLeg{
				UserID:     fromID,
				AccountID:  source.ID,
				NewBalance: newSourceBalance,
				UserName:   source.UserName,
			},
			Destination: TransferLeg{
				UserID:     toID,
				AccountID:  dest.ID,
				NewBalance: newDestBalance,
				UserName:   dest.UserName,
			},
			Amount: amount,
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Transfer failed", "from_user_id", fromID, "to_user_id", toID, "error", err)
		return nil, err
	}

	s.logger.Info("Transfer completed successfully",
		"source_account_id", result.Source.AccountID,
		"destination_account_id", result.Destination.AccountID)
	return result, nil
}

func (s *AccountService) validateMovement(req *AmountRequest, positiveMsg string) (int64, decimal.Decimal, error) {
	if req == nil || isBlank(req.UserID) || req.Amount == nil {
		return 0, decimal.Zero, errors.ErrAmountRequired
	}

	userID, err := parseUserID(req.UserID)
	if err != nil {
		return 0, decimal.Zero, err
	}

	if err := validateAmount(*req.Amount, positiveMsg); err != nil {
		return 0, decimal.Zero, err
	}

	return userID, *req.Amount, nil
}

func (s *AccountService) validateTransfer(req *TransferRequest) (int64, int64, decimal.Decimal, error) {
	if req == nil || isBlank(req.FromUserID) || isBlank(req.ToUserID) || req.Amount == nil {
		return 0, 0, decimal.Zero, errors.ErrTransferFieldsRequired
	}

	fromID, err := parseUserID(req.FromUserID)
	if err != nil {
		return 0, 0, decimal.Zero, err
	}

	toID, err := parseUserID(req.ToUserID)
	if err != nil {
		return 0, 0, decimal.Zero, err
	}

	if fromID == toID {
		return 0, 0, decimal.Zero, errors.ErrSameAccountTransfer
	}

	if err := validateAmount(*req.Amount, "Transfer amount must be positive"); err != nil {
		return 0, 0, decimal.Zero, err
	}

	return fromID, toID, *req.Amount, nil
}
