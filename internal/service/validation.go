package service

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"paysync/internal/errors"
)

const (
	amountScale = 2
	// maxAmountDigits is the number of integer digits of maxAmount.
	maxAmountDigits = 11
)

var (
	// maxAmount bounds single amounts and initial balances to 10 billion.
	maxAmount = decimal.NewFromInt(10_000_000_000)
	// maxBalance is the largest value a NUMERIC(20,2) balance column holds.
	maxBalance = decimal.RequireFromString("999999999999999999.99")
)

// parseUserID converts a raw user id. Callers check presence first so the
// missing case can carry an operation-specific message.
func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.ErrInvalidUserID
	}
	return id, nil
}

// validateAmount enforces a strictly positive amount with cent precision.
// positiveMsg names the operation, e.g. "Deposit amount must be positive".
func validateAmount(amount decimal.Decimal, positiveMsg string) error {
	if !amount.IsPositive() {
		return errors.NewAppError(errors.ValidationError, positiveMsg)
	}
	return validateMoney(amount)
}

// validateMoney checks precision and magnitude from the exponent and the
// coefficient digits before any arithmetic. Rescaling a value such as
// 1e-999999999 or comparing 1e999999999 would build a 10^999999999 big.Int.
func validateMoney(amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}

	exp := int64(amount.Exponent())
	if exp < -amountScale {
		// Extra fractional digits are only allowed when they are all zero.
		coef := strings.TrimPrefix(amount.Coefficient().String(), "-")
		extra := -amountScale - exp
		if extra >= int64(len(coef)) || strings.TrimRight(coef[len(coef)-int(extra):], "0") != "" {
			return errors.ErrAmountPrecision
		}
	}

	if int64(amount.NumDigits())+exp > maxAmountDigits {
		return errors.ErrAmountTooLarge
	}
	if amount.GreaterThan(maxAmount) {
		return errors.ErrAmountTooLarge
	}
	return nil
}

// checkBalanceLimit rejects a credit that would leave the balance above maxBalance.
func checkBalanceLimit(newBalance decimal.Decimal) error {
	if newBalance.GreaterThan(maxBalance) {
		return errors.ErrBalanceLimit
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
