package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/copytrade/internal/domain"
	"github.com/fsdevblog/copytrade/internal/service"
)

type InvestmentsHandler struct {
	investmentSvs InvestmentServicer
}

func NewInvestmentsHandler(investmentSvs InvestmentServicer) *InvestmentsHandler {
	return &InvestmentsHandler{
		investmentSvs: investmentSvs,
	}
}

type InvestmentCreateParams struct {
	PlanName string          `binding:"required,min=1,max=50" json:"plan"`
	Amount   decimal.Decimal `binding:"required"              json:"amount"`
}

type InvestmentResponse struct {
	ID         int64                       `json:"id"`
	PlanName   string                      `json:"plan"`
	OrderCode  string                      `json:"orderCode"`
	Amount     float64                     `json:"amount"`
	ROI        float64                     `json:"roi"`
	Status     domain.InvestmentStatusType `json:"status"`
	TermDays   int                         `json:"termDays"`
	StartedAt  *time.Time                  `json:"startedAt,omitempty"`
	LastPayout *time.Time                  `json:"lastPayout,omitempty"`
	CreatedAt  time.Time                   `json:"createdAt"`
}

// Create POST RouteGroup + InvestmentsRoute. Создает инвестицию в статусе pending.
func (h *InvestmentsHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params InvestmentCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	investment, createErr := h.investmentSvs.Create(ctx, service.CreateInvestmentArgs{
		UserID:   currentUserID,
		PlanName: params.PlanName,
		Amount:   params.Amount,
	})
	if createErr != nil {
		var rangeErr *domain.AmountOutOfPlanRangeError
		switch {
		case errors.As(createErr, &rangeErr):
			_ = c.AbortWithError(http.StatusUnprocessableEntity, rangeErr).SetType(gin.ErrorTypePublic)
		case errors.Is(createErr, domain.ErrNonPositiveAmount):
			c.AbortWithStatus(http.StatusUnprocessableEntity)
		case errors.Is(createErr, domain.ErrRecordNotFound):
			_ = c.AbortWithError(http.StatusNotFound, errors.New("plan not found")).SetType(gin.ErrorTypePublic)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, createErr).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusCreated, newInvestmentResponse(investment))
}

// Index GET RouteGroup + InvestmentsRoute. Все инвестиции текущего юзера.
func (h *InvestmentsHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	investments, err := h.investmentSvs.GetByUserID(ctx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := make([]InvestmentResponse, len(investments))
	for i, investment := range investments {
		response[i] = newInvestmentResponse(&investment)
	}
	c.JSON(http.StatusOK, response)
}

type PlanResponse struct {
	Name      string  `json:"name"`
	ROI       float64 `json:"roi"`
	MinAmount float64 `json:"minAmount"`
	MaxAmount float64 `json:"maxAmount"`
	TermDays  int     `json:"termDays"`
}

// Plans GET RouteGroup + PlansRoute. Публичный список тарифных планов.
func (h *InvestmentsHandler) Plans(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	plans, err := h.investmentSvs.Plans(ctx)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := make([]PlanResponse, len(plans))
	for i, plan := range plans {
		response[i] = PlanResponse{
			Name:      plan.Name,
			ROI:       plan.ROI.InexactFloat64(),
			MinAmount: plan.MinAmount.InexactFloat64(),
			MaxAmount: plan.MaxAmount.InexactFloat64(),
			TermDays:  plan.TermDays,
		}
	}
	c.JSON(http.StatusOK, response)
}

func newInvestmentResponse(investment *domain.Investment) InvestmentResponse {
	return InvestmentResponse{
		ID:         investment.ID,
		PlanName:   investment.PlanName,
		OrderCode:  investment.OrderCode,
		Amount:     investment.Amount.InexactFloat64(),
		ROI:        investment.ROI.InexactFloat64(),
		Status:     investment.Status,
		TermDays:   investment.TermDays,
		StartedAt:  investment.StartedAt,
		LastPayout: investment.LastPayout,
		CreatedAt:  investment.CreatedAt,
	}
}
