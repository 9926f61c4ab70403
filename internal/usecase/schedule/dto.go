package schedule

import (
	"time"

	"homeloan-backend/internal/domain/installment"
)

const DateLayout = "2006-01-02"

type InstallmentDTO struct {
	InstallmentID string     `json:"installment_id"`
	LoanID        string     `json:"loan_id"`
	SeqNo         int        `json:"seq_no"`
	DueDate       string     `json:"due_date"`
	Amount        string     `json:"amount"`
	PaymentStatus string     `json:"payment_status"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

func ToDTO(loanID string, it installment.Installment) InstallmentDTO {
	return InstallmentDTO{
		InstallmentID: it.InstallmentID,
		LoanID:        loanID,
		SeqNo:         it.SeqNo,
		DueDate:       it.DueDate.UTC().Format(DateLayout),
		Amount:        it.Amount.StringFixed(2),
		PaymentStatus: string(it.PaymentStatus),
		TransactionID: it.TransactionID,
		PaidAt:        it.PaidAt,
	}
}

func ToDTOs(loanID string, items []installment.Installment) []InstallmentDTO {
	out := make([]InstallmentDTO, len(items))
	for i, it := range items {
		out[i] = ToDTO(loanID, it)
	}
	return out
}
