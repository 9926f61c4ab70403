package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"homeloan-backend/internal/adapter/middleware"
	"homeloan-backend/internal/infrastructure/metrics"
	"homeloan-backend/internal/usecase/loan"
	"homeloan-backend/internal/usecase/payment"
)

type EMIHandler struct {
	loans    *loan.Usecase
	payments *payment.Usecase
	log      logrus.FieldLogger
}

func NewEMIHandler(loans *loan.Usecase, payments *payment.Usecase, log logrus.FieldLogger) *EMIHandler {
	return &EMIHandler{loans: loans, payments: payments, log: log}
}

type payReq struct {
	InstallmentID string `param:"installment_id" json:"-" validate:"hex32"`
	TransactionID string `json:"transaction_id" validate:"required,max=64"`
}

func (h *EMIHandler) Schedule(c echo.Context) error {
	var p loanPath
	if ok, err := bindAndValidate(c, &p); !ok {
		return err
	}
	l, err := ownedLoan(c, h.loans, p.LoanID)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	rows, err := h.payments.ListSchedule(c.Request().Context(), l.LoanID)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *EMIHandler) Pending(c echo.Context) error {
	rows, err := h.payments.ListPendingForUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *EMIHandler) Pay(c echo.Context) error {
	var req payReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.payments.PayInstallment(c.Request().Context(), req.InstallmentID, req.TransactionID)
	metrics.Payment(err)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
