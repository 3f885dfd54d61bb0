package repoargs

import (
	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/shopspring/decimal"
)

type TransactionCreate struct {
	UserID        int64
	Type          domain.TransactionType
	Amount        decimal.Decimal
	Status        domain.TransactionStatusType
	ReferenceCode string
	Description   string
}

// TransactionTotals агрегация завершенных транзакций юзера по типам. Используется
// для сверки аудиторского следа с текущим балансом.
type TransactionTotals struct {
	Deposited decimal.Decimal
	Withdrawn decimal.Decimal
	Accrued   decimal.Decimal
	Adjusted  decimal.Decimal
}
