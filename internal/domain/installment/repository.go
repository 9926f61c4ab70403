package installment

import (
	"context"
	"time"
)

type Repository interface {
	// CreateBatch inserts a whole schedule in one statement.
	CreateBatch(ctx context.Context, items []Installment) error
	CountByLoan(ctx context.Context, loanID uint64) (int64, error)
	ListByLoan(ctx context.Context, loanID uint64) ([]Installment, error)
	GetByInstallmentID(ctx context.Context, installmentID string) (*Installment, error)

	// MarkPaid flips PENDING -> PAID and stores txnID in a single conditional
	// update. It reports false when no PENDING row matched.
	MarkPaid(ctx context.Context, installmentID, txnID string, at time.Time) (bool, error)

	// ListPendingByLoans returns PENDING rows of the given loans ordered by due date.
	ListPendingByLoans(ctx context.Context, loanIDs []uint64) ([]Installment, error)
	// ListPendingDueBetween returns PENDING rows with from <= due_date <= to.
	ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]Installment, error)
}
