package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, l *Application) error
	GetByLoanID(ctx context.Context, loanID string) (*Application, error)
	// GetByLoanIDForUpdate locks the row for the rest of the transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Application, error)
	GetByID(ctx context.Context, id uint64) (*Application, error)

	// UpdateStatus is a compare-and-set on (id, version). It touches only
	// status, remarks, updated_at and version; ErrConcurrentUpdate when the
	// version moved.
	UpdateStatus(ctx context.Context, l *Application, to Status, remarks string, at time.Time) error

	ListByApplicant(ctx context.Context, applicantID string) ([]Application, error)
	ListByStatus(ctx context.Context, s Status) ([]Application, error)
	ListAll(ctx context.Context) ([]Application, error)
	Stats(ctx context.Context) (*Stats, error)
}

// Stats backs the admin dashboard.
type Stats struct {
	TotalLoans     int64
	ByStatus       map[Status]int64
	TotalAmount    decimal.Decimal
	ApprovedAmount decimal.Decimal
}
