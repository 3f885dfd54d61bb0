package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/repository/repoargs"
	"github.com/fsdevblog/copytrade/pkg/uow"
)

type TransactionService struct {
	uow             uow.UOW
	transactionRepo TransactionRepository
	userRepo        UserRepository
}

func NewTransactionService(u uow.UOW) (*TransactionService, error) {
	transactionRepo, transactionRepoErr :=
		uow.GetRepositoryAs[TransactionRepository](u, uow.RepositoryName(repoargs.TransactionRepoName))
	if transactionRepoErr != nil {
		return nil, transactionRepoErr
	}
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &TransactionService{
		uow:             u,
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
	}, nil
}

// UserBalance текущий баланс юзера вместе с агрегатами аудиторского следа.
type UserBalance struct {
	UserID  int64
	Current decimal.Decimal
	Totals  repoargs.TransactionTotals
}

func (s *TransactionService) GetUserBalance(ctx context.Context, userID int64) (*UserBalance, error) {
	user, userErr := s.userRepo.FindByID(ctx, userID)
	if userErr != nil {
		return nil, fmt.Errorf("getting balance of user %d: %w", userID, userErr)
	}
	totals, totalsErr := s.transactionRepo.SumByType(ctx, userID)
	if totalsErr != nil {
		return nil, fmt.Errorf("getting balance of user %d: %w", userID, totalsErr)
	}
	return &UserBalance{
		UserID:  userID,
		Current: user.Balance,
		Totals:  *totals,
	}, nil
}

// Deposit создает заявку на пополнение в статусе pending. Баланс будет увеличен только
// после подтверждения оплаты админом (SetStatus).
func (s *TransactionService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("deposit: %w", domain.ErrNonPositiveAmount)
	}
	transaction, err := s.transactionRepo.Create(ctx, repoargs.TransactionCreate{
		UserID:        userID,
		Type:          domain.TransactionTypeDeposit,
		Amount:        amount,
		Status:        domain.TransactionStatusPending,
		ReferenceCode: uuid.NewString(),
		Description:   "Deposit request",
	})
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	return transaction, nil
}

// Withdraw создает заявку на вывод средств. Сумма удерживается с баланса сразу, в одной
// транзакции с созданием записи: удержание гарантирует что баланс не уйдет в минус
// (domain.ErrNotEnoughBalance) и что конкурирующие выводы не спишут одни и те же средства.
// Вывод доступен только юзерам, прошедшим KYC верификацию (domain.ErrKYCRequired).
func (s *TransactionService) Withdraw(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("withdraw: %w", domain.ErrNonPositiveAmount)
	}

	var transaction *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		transactionRepo, transactionRepoErr :=
			uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if transactionRepoErr != nil {
			return transactionRepoErr //nolint:wrapcheck
		}

		user, findErr := userRepo.FindByID(c, userID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if !user.KYCVerified {
			return domain.ErrKYCRequired
		}

		if _, incErr := userRepo.IncrementBalance(c, userID, amount.Neg()); incErr != nil {
			return incErr //nolint:wrapcheck
		}

		var createErr error
		transaction, createErr = transactionRepo.Create(c, repoargs.TransactionCreate{
			UserID:        userID,
			Type:          domain.TransactionTypeWithdrawal,
			Amount:        amount,
			Status:        domain.TransactionStatusPending,
			ReferenceCode: uuid.NewString(),
			Description:   "Withdrawal request",
		})
		return createErr //nolint:wrapcheck
	})

	if txErr != nil {
		if errors.Is(txErr, domain.ErrNotEnoughBalance) ||
			errors.Is(txErr, domain.ErrKYCRequired) ||
			errors.Is(txErr, domain.ErrRecordNotFound) {
			return nil, txErr
		}
		return nil, fmt.Errorf("withdraw: %w", txErr)
	}
	return transaction, nil
}

// SetStatus админский перевод транзакции из pending в completed или failed,
// с соответствующим движением средств в той же транзакции БД:
//   - deposit + completed: зачисление суммы на баланс;
//   - withdrawal + failed: возврат удержанной суммы на баланс;
//   - остальные комбинации баланс не трогают.
//
// Повторный перевод уже обработанной транзакции вернет domain.ErrInvalidStatusTransition.
func (s *TransactionService) SetStatus(
	ctx context.Context,
	transactionID int64,
	status domain.TransactionStatusType,
) (*domain.Transaction, error) {
	if status != domain.TransactionStatusCompleted && status != domain.TransactionStatusFailed {
		return nil, fmt.Errorf("transaction %d: %w", transactionID, domain.ErrInvalidStatusTransition)
	}

	var transaction *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		transactionRepo, transactionRepoErr :=
			uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if transactionRepoErr != nil {
			return transactionRepoErr //nolint:wrapcheck
		}

		updated, updErr := transactionRepo.UpdateStatus(c, transactionID, domain.TransactionStatusPending, status)
		if updErr != nil {
			if errors.Is(updErr, domain.ErrRecordNotFound) {
				return s.convertStatusErr(c, transactionRepo, transactionID)
			}
			return updErr //nolint:wrapcheck
		}

		var delta decimal.Decimal
		switch {
		case updated.Type == domain.TransactionTypeDeposit && status == domain.TransactionStatusCompleted:
			delta = updated.Amount
		case updated.Type == domain.TransactionTypeWithdrawal && status == domain.TransactionStatusFailed:
			delta = updated.Amount
		default:
			transaction = updated
			return nil
		}

		if _, incErr := userRepo.IncrementBalance(c, updated.UserID, delta); incErr != nil {
			return incErr //nolint:wrapcheck
		}
		transaction = updated
		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, domain.ErrInvalidStatusTransition) || errors.Is(txErr, domain.ErrRecordNotFound) {
			return nil, txErr
		}
		return nil, fmt.Errorf("setting status of transaction %d: %w", transactionID, txErr)
	}
	return transaction, nil
}

// AdminAdjust ручная корректировка баланса админом. Знак delta задает направление,
// сумма транзакции в аудиторском следе всегда положительная. Отрицательная корректировка
// не может увести баланс в минус.
func (s *TransactionService) AdminAdjust(
	ctx context.Context,
	userID int64,
	delta decimal.Decimal,
	reason string,
) (*domain.Transaction, error) {
	if delta.IsZero() {
		return nil, fmt.Errorf("admin adjustment: %w", domain.ErrNonPositiveAmount)
	}

	var transaction *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}
		transactionRepo, transactionRepoErr :=
			uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
		if transactionRepoErr != nil {
			return transactionRepoErr //nolint:wrapcheck
		}

		if _, incErr := userRepo.IncrementBalance(c, userID, delta); incErr != nil {
			return incErr //nolint:wrapcheck
		}

		direction := "credit"
		if delta.IsNegative() {
			direction = "debit"
		}

		var createErr error
		transaction, createErr = transactionRepo.Create(c, repoargs.TransactionCreate{
			UserID:        userID,
			Type:          domain.TransactionTypeAdminAdjustment,
			Amount:        delta.Abs(),
			Status:        domain.TransactionStatusCompleted,
			ReferenceCode: uuid.NewString(),
			Description:   fmt.Sprintf("Admin %s adjustment: %s", direction, reason),
		})
		return createErr //nolint:wrapcheck
	})

	if txErr != nil {
		if errors.Is(txErr, domain.ErrNotEnoughBalance) || errors.Is(txErr, domain.ErrRecordNotFound) {
			return nil, txErr
		}
		return nil, fmt.Errorf("admin adjustment for user %d: %w", userID, txErr)
	}
	return transaction, nil
}

// GetByUserID возвращает транзакции юзера, отсортированные по дате создания по убыванию.
func (s *TransactionService) GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	transactions, err := s.transactionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}

func (s *TransactionService) GetByType(
	ctx context.Context,
	userID int64,
	transactionType domain.TransactionType,
) ([]domain.Transaction, error) {
	transactions, err := s.transactionRepo.GetByType(ctx, userID, transactionType)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}

// convertStatusErr уточняет ошибку условного перехода: существующая, но уже обработанная
// транзакция дает domain.ErrInvalidStatusTransition вместо domain.ErrRecordNotFound.
func (s *TransactionService) convertStatusErr(
	ctx context.Context,
	transactionRepo TransactionRepository,
	transactionID int64,
) error {
	if _, findErr := transactionRepo.FindByID(ctx, transactionID); findErr != nil {
		return findErr //nolint:wrapcheck
	}
	return domain.ErrInvalidStatusTransition
}
