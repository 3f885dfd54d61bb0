package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/copytrade/internal/domain"
)

// AdminHandler тонкий CRUD слой админки: активация/отмена инвестиций, подтверждение
// транзакций, KYC верификация и ручные корректировки баланса.
type AdminHandler struct {
	userSvs        UserServicer
	investmentSvs  InvestmentServicer
	transactionSvs TransactionServicer
}

func NewAdminHandler(userSvs UserServicer, investmentSvs InvestmentServicer, transactionSvs TransactionServicer) *AdminHandler {
	return &AdminHandler{
		userSvs:        userSvs,
		investmentSvs:  investmentSvs,
		transactionSvs: transactionSvs,
	}
}

// ActivateInvestment POST AdminGroup + AdminInvestmentActivate. Переводит инвестицию
// pending -> active, с этого момента по ней начисляется доходность.
func (h *AdminHandler) ActivateInvestment(c *gin.Context) {
	investmentID := parseIDParam(c, "id")
	if investmentID == 0 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	investment, err := h.investmentSvs.Activate(ctx, investmentID)
	if err != nil {
		h.abortWithTransitionErr(c, err)
		return
	}

	c.JSON(http.StatusOK, newInvestmentResponse(investment))
}

// CancelInvestment POST AdminGroup + AdminInvestmentCancel.
func (h *AdminHandler) CancelInvestment(c *gin.Context) {
	investmentID := parseIDParam(c, "id")
	if investmentID == 0 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	investment, err := h.investmentSvs.Cancel(ctx, investmentID)
	if err != nil {
		h.abortWithTransitionErr(c, err)
		return
	}

	c.JSON(http.StatusOK, newInvestmentResponse(investment))
}

type TransactionStatusParams struct {
	Status domain.TransactionStatusType `binding:"required,oneof=completed failed" json:"status"`
}

// SetTransactionStatus PATCH AdminGroup + AdminTransactionStatus. Подтверждает или
// отклоняет pending транзакцию, с соответствующим движением средств.
func (h *AdminHandler) SetTransactionStatus(c *gin.Context) {
	transactionID := parseIDParam(c, "id")
	if transactionID == 0 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params TransactionStatusParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.transactionSvs.SetStatus(ctx, transactionID, params.Status)
	if err != nil {
		h.abortWithTransitionErr(c, err)
		return
	}

	c.JSON(http.StatusOK, newTransactionResponse(transaction))
}

type KYCParams struct {
	Verified *bool `binding:"required" json:"verified"`
}

// SetUserKYC PATCH AdminGroup + AdminUserKYC.
func (h *AdminHandler) SetUserKYC(c *gin.Context) {
	userID := parseIDParam(c, "id")
	if userID == 0 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params KYCParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.userSvs.VerifyKYC(ctx, userID, *params.Verified)
	if err != nil {
		h.abortWithTransitionErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

type BalanceAdjustmentParams struct {
	Delta  decimal.Decimal `binding:"required"        json:"delta"`
	Reason string          `binding:"required,max=255" json:"reason"`
}

// AdjustUserBalance POST AdminGroup + AdminUserBalanceAdjustment. Ручная корректировка
// баланса, знак delta задает направление.
func (h *AdminHandler) AdjustUserBalance(c *gin.Context) {
	userID := parseIDParam(c, "id")
	if userID == 0 {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var params BalanceAdjustmentParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.transactionSvs.AdminAdjust(ctx, userID, params.Delta, params.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotEnoughBalance):
			c.AbortWithStatus(http.StatusPaymentRequired)
		case errors.Is(err, domain.ErrNonPositiveAmount):
			c.AbortWithStatus(http.StatusUnprocessableEntity)
		default:
			h.abortWithTransitionErr(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, newTransactionResponse(transaction))
}

func (h *AdminHandler) abortWithTransitionErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		_ = c.AbortWithError(http.StatusConflict, domain.ErrInvalidStatusTransition).SetType(gin.ErrorTypePublic)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
