package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")

	ErrNotEnoughBalance        = errors.New("not enough balance")
	ErrNonPositiveAmount       = errors.New("amount must be positive")
	ErrKYCRequired             = errors.New("kyc verification required")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// AmountOutOfPlanRangeError возвращается при попытке создать инвестицию с суммой
// вне границ [Plan.MinAmount, Plan.MaxAmount].
type AmountOutOfPlanRangeError struct {
	PlanName  string
	Amount    decimal.Decimal
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
}

func (e *AmountOutOfPlanRangeError) Error() string {
	return fmt.Sprintf(
		"amount %s is out of range [%s, %s] for plan %s",
		e.Amount, e.MinAmount, e.MaxAmount, e.PlanName,
	)
}
