package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/copytrade/internal/service/psswd"
	"github.com/fsdevblog/copytrade/pkg/uow"
)

type AppServices struct {
	UserService        *UserService
	InvestmentService  *InvestmentService
	TransactionService *TransactionService
	AccrualService     *AccrualService
}

func Factory(unitOfWork uow.UOW, jwtSecret []byte, l *logrus.Logger) (*AppServices, error) {
	userService, userServiceErr := NewUserService(unitOfWork, psswd.PasswordHash(""), jwtSecret)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	investmentService, investmentServiceErr := NewInvestmentService(unitOfWork)
	if investmentServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", investmentServiceErr.Error())
	}

	transactionService, transactionServiceErr := NewTransactionService(unitOfWork)
	if transactionServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", transactionServiceErr.Error())
	}

	accrualService, accrualServiceErr := NewAccrualService(unitOfWork, l)
	if accrualServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", accrualServiceErr.Error())
	}

	return &AppServices{
		UserService:        userService,
		InvestmentService:  investmentService,
		TransactionService: transactionService,
		AccrualService:     accrualService,
	}, nil
}
