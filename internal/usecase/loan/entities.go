package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"homeloan-backend/internal/domain/amortization"
	domain "homeloan-backend/internal/domain/loan"
	"homeloan-backend/internal/usecase/schedule"
)

type ApplyInput struct {
	ApplicantID   string
	Amount        decimal.Decimal
	TenureMonths  int
	InterestRate  decimal.Decimal
	PropertyValue decimal.NullDecimal
	Purpose       string
}

type LoanDTO struct {
	LoanID             string                    `json:"loan_id"`
	ApplicantID        string                    `json:"applicant_id"`
	Amount             string                    `json:"amount"`
	TenureMonths       int                       `json:"tenure_months"`
	InterestRate       string                    `json:"interest_rate"`
	PropertyValue      *string                   `json:"property_value,omitempty"`
	Purpose            string                    `json:"purpose"`
	Status             string                    `json:"status"`
	Remarks            string                    `json:"remarks,omitempty"`
	MonthlyInstallment string                    `json:"monthly_installment,omitempty"`
	TotalPayable       string                    `json:"total_payable,omitempty"`
	SubmittedAt        time.Time                 `json:"submitted_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
	Schedule           []schedule.InstallmentDTO `json:"schedule,omitempty"`
}

type DashboardDTO struct {
	TotalApplicants    int64            `json:"total_applicants"`
	TotalLoans         int64            `json:"total_loans"`
	PendingLoans       int64            `json:"pending_loans"`
	ApprovedLoans      int64            `json:"approved_loans"`
	RejectedLoans      int64            `json:"rejected_loans"`
	ByStatus           map[string]int64 `json:"by_status"`
	TotalLoanAmount    string           `json:"total_loan_amount"`
	ApprovedLoanAmount string           `json:"approved_loan_amount"`
}

func toDTO(l *domain.Application) *LoanDTO {
	dto := &LoanDTO{
		LoanID:       l.LoanID,
		ApplicantID:  l.ApplicantID,
		Amount:       l.Amount.StringFixed(2),
		TenureMonths: l.TenureMonths,
		InterestRate: l.InterestRate.StringFixed(2),
		Purpose:      l.Purpose,
		Status:       string(l.Status),
		Remarks:      l.Remarks,
		SubmittedAt:  l.SubmittedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.PropertyValue.Valid {
		v := l.PropertyValue.Decimal.StringFixed(2)
		dto.PropertyValue = &v
	}
	if len(l.Installments) > 0 {
		emi := l.Installments[0].Amount
		dto.MonthlyInstallment = emi.StringFixed(2)
		dto.TotalPayable = amortization.TotalPayable(emi, len(l.Installments)).StringFixed(2)
		dto.Schedule = schedule.ToDTOs(l.LoanID, l.Installments)
	}
	return dto
}

func toDTOs(ls []domain.Application) []LoanDTO {
	out := make([]LoanDTO, len(ls))
	for i := range ls {
		out[i] = *toDTO(&ls[i])
	}
	return out
}
