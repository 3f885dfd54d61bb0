package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID                int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Username          string
	EncryptedPassword string
	Balance           decimal.Decimal
	KYCVerified       bool
	Role              RoleType
}

// Plan тарифный план. Инвестиции создаются только в рамках плана и копируют
// из него ставку и срок на момент создания.
type Plan struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	ROI       decimal.Decimal
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	TermDays  int
}

// Investment подписка юзера на план. StartedAt выставляется при активации и служит
// якорем срока инвестиции, LastPayout - якорем последней выплаты.
type Investment struct {
	ID         int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     int64
	PlanName   string
	OrderCode  string
	Amount     decimal.Decimal
	ROI        decimal.Decimal
	Status     InvestmentStatusType
	StartedAt  *time.Time
	LastPayout *time.Time
	TermDays   int
}

// Transaction неизменяемая запись о движении средств. Amount всегда положительный,
// направление определяется полем Type.
type Transaction struct {
	ID            int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        int64
	Type          TransactionType
	Amount        decimal.Decimal
	Status        TransactionStatusType
	ReferenceCode string
	Description   string
}
