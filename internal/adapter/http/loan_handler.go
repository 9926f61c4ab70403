package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"homeloan-backend/internal/adapter/middleware"
	domain "homeloan-backend/internal/domain/loan"
	"homeloan-backend/internal/infrastructure/metrics"
	"homeloan-backend/internal/usecase/loan"
)

type LoanHandler struct {
	uc  *loan.Usecase
	log logrus.FieldLogger
}

func NewLoanHandler(uc *loan.Usecase, log logrus.FieldLogger) *LoanHandler {
	return &LoanHandler{uc: uc, log: log}
}

type loanPath struct {
	LoanID string `param:"loan_id" json:"-" validate:"hex32"`
}

type applyLoanReq struct {
	Amount        decimal.Decimal  `json:"amount"         validate:"required,gte=10000,lte=9999999999999.99,dec2"`
	TenureMonths  int              `json:"tenure_months"  validate:"required,gte=6,lte=600"`
	InterestRate  decimal.Decimal  `json:"interest_rate"  validate:"required,gte=0.1,lte=999.99,dec2"`
	PropertyValue *decimal.Decimal `json:"property_value" validate:"omitempty,gte=0,dec2"`
	Purpose       string           `json:"purpose"        validate:"required,max=500"`
}

func (r applyLoanReq) input(applicantID string) loan.ApplyInput {
	in := loan.ApplyInput{
		ApplicantID:  applicantID,
		Amount:       r.Amount,
		TenureMonths: r.TenureMonths,
		InterestRate: r.InterestRate,
		Purpose:      r.Purpose,
	}
	if r.PropertyValue != nil {
		in.PropertyValue = decimal.NewNullDecimal(*r.PropertyValue)
	}
	return in
}

// Apply submits a loan for the authenticated caller.
func (h *LoanHandler) Apply(c echo.Context) error {
	var req applyLoanReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Apply(c.Request().Context(), req.input(middleware.UserID(c)))
	if err != nil {
		return respondErr(c, h.log, err)
	}
	metrics.LoanApplied()
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) MyLoans(c echo.Context) error {
	dtos, err := h.uc.ListForApplicant(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	var p loanPath
	if ok, err := bindAndValidate(c, &p); !ok {
		return err
	}
	dto, err := ownedLoan(c, h.uc, p.LoanID)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// ownedLoan loads a loan visible to the caller. Other applicants' loans
// read as not found.
func ownedLoan(c echo.Context, uc *loan.Usecase, loanID string) (*loan.LoanDTO, error) {
	dto, err := uc.Get(c.Request().Context(), loanID)
	if err != nil {
		return nil, err
	}
	if !middleware.IsAdmin(c) && dto.ApplicantID != middleware.UserID(c) {
		return nil, domain.ErrNotFound
	}
	return dto, nil
}
