package installment

import (
	"time"

	"github.com/shopspring/decimal"

	"homeloan-backend/internal/domain/apperr"
)

type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusPaid    PaymentStatus = "PAID"
)

var (
	ErrNotFound       = apperr.New(apperr.KindNotFound, "installment not found")
	ErrAlreadyPaid    = apperr.New(apperr.KindConflict, "installment already paid")
	ErrScheduleExists = apperr.New(apperr.KindConflict, "schedule already generated for loan")
	ErrEmptyTxnID     = apperr.New(apperr.KindValidation, "transaction id is required")
)

// Installment is one EMI of a loan's repayment schedule. Amount and DueDate
// never change after generation; TransactionID is set exactly when the
// installment becomes PAID.
type Installment struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	InstallmentID string          `gorm:"column:installment_id;type:char(32);not null;uniqueIndex:ux_emi_installment_id" json:"installment_id"`
	LoanID        uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_emi_loan_seq,priority:1;index:idx_emi_loan_status,priority:1" json:"-"`
	SeqNo         int             `gorm:"column:seq_no;not null;uniqueIndex:ux_emi_loan_seq,priority:2" json:"seq_no"`
	DueDate       time.Time       `gorm:"column:due_date;type:date;not null;index:idx_emi_due" json:"due_date"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(15,2);not null" json:"amount"`
	PaymentStatus PaymentStatus   `gorm:"column:payment_status;size:15;not null;default:PENDING;index:idx_emi_loan_status,priority:2" json:"payment_status"`
	TransactionID *string         `gorm:"column:transaction_id;size:64" json:"transaction_id,omitempty"`
	PaidAt        *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (Installment) TableName() string { return "emi_installments" }

func (i *Installment) Paid() bool { return i.PaymentStatus == StatusPaid }
