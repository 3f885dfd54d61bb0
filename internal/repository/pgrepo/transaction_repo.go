package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/repository/repoargs"
	"github.com/fsdevblog/copytrade/pkg/uow"
)

const transactionColumns = `id, created_at, updated_at, user_id, type, amount, status,
	reference_code, description`

type TransactionRepository struct {
	db uow.DBTX
}

func NewTransactionRepository(db uow.DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create создает запись о движении средств. Отклоняет неположительные суммы
// с ошибкой domain.ErrNonPositiveAmount - знак задается типом транзакции, а не суммой.
func (t *TransactionRepository) Create(
	ctx context.Context,
	args repoargs.TransactionCreate,
) (*domain.Transaction, error) {
	if !args.Amount.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}

	row := t.db.QueryRow(ctx, `
		INSERT INTO transactions (user_id, type, amount, status, reference_code, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+transactionColumns,
		args.UserID, args.Type, args.Amount, args.Status, args.ReferenceCode, args.Description)

	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating transaction")
	}
	return transaction, nil
}

func (t *TransactionRepository) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	row := t.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)

	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "finding transaction by id %d", id)
	}
	return transaction, nil
}

// GetByUserID возвращает транзакции юзера, отсортированные по дате создания по убыванию.
func (t *TransactionRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	rows, err := t.db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, convertErr(err, "getting transactions of user %d", userID)
	}
	return collectTransactions(rows)
}

func (t *TransactionRepository) GetByType(
	ctx context.Context,
	userID int64,
	transactionType domain.TransactionType,
) ([]domain.Transaction, error) {
	rows, err := t.db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1 AND type = $2
		ORDER BY created_at DESC`, userID, transactionType)
	if err != nil {
		return nil, convertErr(err, "getting %s transactions of user %d", transactionType, userID)
	}
	return collectTransactions(rows)
}

// UpdateStatus условный переход статуса from -> to. Если транзакция уже не в статусе from,
// вернется domain.ErrRecordNotFound.
func (t *TransactionRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	from, to domain.TransactionStatusType,
) (*domain.Transaction, error) {
	row := t.db.QueryRow(ctx, `
		UPDATE transactions
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		RETURNING `+transactionColumns, to, id, from)

	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "updating status of transaction %d", id)
	}
	return transaction, nil
}

// SumByType агрегирует суммы завершенных транзакций юзера по типам.
func (t *TransactionRepository) SumByType(ctx context.Context, userID int64) (*repoargs.TransactionTotals, error) {
	rows, err := t.db.Query(ctx, `
		SELECT type, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND status = $2
		GROUP BY type`, userID, domain.TransactionStatusCompleted)
	if err != nil {
		return nil, convertErr(err, "getting transaction totals of user %d", userID)
	}
	defer rows.Close()

	var totals repoargs.TransactionTotals
	for rows.Next() {
		var transactionType domain.TransactionType
		var sum decimal.Decimal
		if scanErr := rows.Scan(&transactionType, &sum); scanErr != nil {
			return nil, convertErr(scanErr, "scanning transaction totals")
		}
		switch transactionType {
		case domain.TransactionTypeDeposit:
			totals.Deposited = sum
		case domain.TransactionTypeWithdrawal:
			totals.Withdrawn = sum
		case domain.TransactionTypeROI:
			totals.Accrued = sum
		case domain.TransactionTypeAdminAdjustment:
			totals.Adjusted = sum
		}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting transaction totals of user %d", userID)
	}
	return &totals, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		transaction, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning transaction")
		}
		transactions = append(transactions, *transaction)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "collecting transactions")
	}
	return transactions, nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var transaction domain.Transaction
	err := row.Scan(
		&transaction.ID,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
		&transaction.UserID,
		&transaction.Type,
		&transaction.Amount,
		&transaction.Status,
		&transaction.ReferenceCode,
		&transaction.Description,
	)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}
