package domain

type RoleType string

const (
	RoleUser  RoleType = "user"
	RoleAdmin RoleType = "admin"
)

type InvestmentStatusType string

const (
	InvestmentStatusPending   InvestmentStatusType = "pending"
	InvestmentStatusActive    InvestmentStatusType = "active"
	InvestmentStatusCompleted InvestmentStatusType = "completed"
	InvestmentStatusCancelled InvestmentStatusType = "cancelled"
)

type TransactionType string

const (
	TransactionTypeDeposit         TransactionType = "deposit"
	TransactionTypeWithdrawal      TransactionType = "withdrawal"
	TransactionTypeROI             TransactionType = "roi"
	TransactionTypeAdminAdjustment TransactionType = "admin_adjustment"
)

type TransactionStatusType string

const (
	TransactionStatusPending   TransactionStatusType = "pending"
	TransactionStatusCompleted TransactionStatusType = "completed"
	TransactionStatusFailed    TransactionStatusType = "failed"
)
