package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	domain "homeloan-backend/internal/domain/loan"
	"homeloan-backend/internal/infrastructure/metrics"
	"homeloan-backend/internal/usecase/loan"
)

// AdminHandler serves the review desk; routes are mounted behind RequireAdmin.
type AdminHandler struct {
	uc  *loan.Usecase
	log logrus.FieldLogger
}

func NewAdminHandler(uc *loan.Usecase, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{uc: uc, log: log}
}

type updateStatusReq struct {
	LoanID  string `param:"loan_id" json:"-" validate:"hex32"`
	Status  string `json:"status"            validate:"required"`
	Remarks string `json:"remarks"           validate:"max=500"`
}

type remarksReq struct {
	LoanID  string `param:"loan_id" json:"-" validate:"hex32"`
	Remarks string `json:"remarks"           validate:"max=500"`
}

func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	target, err := domain.ParseStatus(req.Status)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return h.transition(c, req.LoanID, target, req.Remarks)
}

func (h *AdminHandler) Approve(c echo.Context) error {
	var req remarksReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return h.transition(c, req.LoanID, domain.StatusApproved, req.Remarks)
}

func (h *AdminHandler) Reject(c echo.Context) error {
	var req remarksReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return h.transition(c, req.LoanID, domain.StatusRejected, req.Remarks)
}

func (h *AdminHandler) transition(c echo.Context, loanID string, target domain.Status, remarks string) error {
	dto, err := h.uc.Transition(c.Request().Context(), loanID, target, remarks)
	metrics.LoanTransition(string(target), err)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// ListLoans returns every loan, or only those in ?status=.
func (h *AdminHandler) ListLoans(c echo.Context) error {
	var (
		dtos []loan.LoanDTO
		err  error
	)
	if raw := c.QueryParam("status"); raw != "" {
		var s domain.Status
		if s, err = domain.ParseStatus(raw); err == nil {
			dtos, err = h.uc.ListByStatus(c.Request().Context(), s)
		}
	} else {
		dtos, err = h.uc.ListAll(c.Request().Context())
	}
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

// Pending lists loans waiting for review.
func (h *AdminHandler) Pending(c echo.Context) error {
	dtos, err := h.uc.ListByStatus(c.Request().Context(), domain.StatusSubmitted)
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	dto, err := h.uc.Dashboard(c.Request().Context())
	if err != nil {
		return respondErr(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
