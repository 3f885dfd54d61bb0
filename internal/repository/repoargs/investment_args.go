package repoargs

import (
	"github.com/shopspring/decimal"
)

type InvestmentCreate struct {
	UserID    int64
	PlanName  string
	OrderCode string
	Amount    decimal.Decimal
	ROI       decimal.Decimal
	TermDays  int
}
