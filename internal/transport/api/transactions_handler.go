package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/copytrade/internal/domain"
)

type TransactionsHandler struct {
	transactionSvs TransactionServicer
}

func NewTransactionsHandler(transactionSvs TransactionServicer) *TransactionsHandler {
	return &TransactionsHandler{
		transactionSvs: transactionSvs,
	}
}

type BalanceResponse struct {
	Current   float64 `json:"current"`
	Deposited float64 `json:"deposited"`
	Withdrawn float64 `json:"withdrawn"`
	Accrued   float64 `json:"accrued"`
}

// Balance GET RouteGroup + BalanceRoute. Текущий баланс с агрегатами по завершенным
// транзакциям.
func (h *TransactionsHandler) Balance(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.transactionSvs.GetUserBalance(ctx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, &BalanceResponse{
		Current:   balance.Current.InexactFloat64(),
		Deposited: balance.Totals.Deposited.InexactFloat64(),
		Withdrawn: balance.Totals.Withdrawn.InexactFloat64(),
		Accrued:   balance.Totals.Accrued.InexactFloat64(),
	})
}

type AmountParams struct {
	Amount decimal.Decimal `binding:"required" json:"amount"`
}

type TransactionResponse struct {
	ID            int64                        `json:"id"`
	Type          domain.TransactionType       `json:"type"`
	Amount        float64                      `json:"amount"`
	Status        domain.TransactionStatusType `json:"status"`
	ReferenceCode string                       `json:"referenceCode"`
	Description   string                       `json:"description"`
	CreatedAt     time.Time                    `json:"createdAt"`
}

// Deposit POST RouteGroup + DepositRoute. Создает заявку на пополнение.
func (h *TransactionsHandler) Deposit(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params AmountParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.transactionSvs.Deposit(ctx, currentUserID, params.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrNonPositiveAmount) {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusCreated, newTransactionResponse(transaction))
}

// Withdraw POST RouteGroup + BalanceWithdrawRoute. Создает заявку на вывод с удержанием
// суммы с баланса.
func (h *TransactionsHandler) Withdraw(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params AmountParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.transactionSvs.Withdraw(ctx, currentUserID, params.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotEnoughBalance):
			c.AbortWithStatus(http.StatusPaymentRequired)
		case errors.Is(err, domain.ErrKYCRequired):
			_ = c.AbortWithError(http.StatusForbidden, errors.New("kyc verification required")).
				SetType(gin.ErrorTypePublic)
		case errors.Is(err, domain.ErrNonPositiveAmount):
			c.AbortWithStatus(http.StatusUnprocessableEntity)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusCreated, newTransactionResponse(transaction))
}

// Withdrawals GET RouteGroup + WithdrawalsRoute. История выводов текущего юзера.
func (h *TransactionsHandler) Withdrawals(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := h.transactionSvs.GetByType(ctx, currentUserID, domain.TransactionTypeWithdrawal)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newTransactionsResponse(transactions))
}

// Index GET RouteGroup + TransactionsRoute. Все транзакции текущего юзера, опционально
// отфильтрованные по типу (?type=roi).
func (h *TransactionsHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	var transactions []domain.Transaction
	var err error

	if typeFilter := c.Query("type"); typeFilter != "" {
		transactions, err = h.transactionSvs.GetByType(ctx, currentUserID, domain.TransactionType(typeFilter))
	} else {
		transactions, err = h.transactionSvs.GetByUserID(ctx, currentUserID)
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newTransactionsResponse(transactions))
}

func newTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            transaction.ID,
		Type:          transaction.Type,
		Amount:        transaction.Amount.InexactFloat64(),
		Status:        transaction.Status,
		ReferenceCode: transaction.ReferenceCode,
		Description:   transaction.Description,
		CreatedAt:     transaction.CreatedAt,
	}
}

func newTransactionsResponse(transactions []domain.Transaction) []TransactionResponse {
	response := make([]TransactionResponse, len(transactions))
	for i, transaction := range transactions {
		response[i] = newTransactionResponse(&transaction)
	}
	return response
}
