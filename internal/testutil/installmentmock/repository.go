package installmentmock

import (
	"context"
	"time"

	domain "homeloan-backend/internal/domain/installment"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateBatchFn           func(ctx context.Context, items []domain.Installment) error
	CountByLoanFn           func(ctx context.Context, loanID uint64) (int64, error)
	ListByLoanFn            func(ctx context.Context, loanID uint64) ([]domain.Installment, error)
	GetByInstallmentIDFn    func(ctx context.Context, installmentID string) (*domain.Installment, error)
	MarkPaidFn              func(ctx context.Context, installmentID, txnID string, at time.Time) (bool, error)
	ListPendingByLoansFn    func(ctx context.Context, loanIDs []uint64) ([]domain.Installment, error)
	ListPendingDueBetweenFn func(ctx context.Context, from, to time.Time) ([]domain.Installment, error)
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) CreateBatch(ctx context.Context, items []domain.Installment) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, items)
	}
	return nil
}
func (m *Repo) CountByLoan(ctx context.Context, loanID uint64) (int64, error) {
	if m.CountByLoanFn != nil {
		return m.CountByLoanFn(ctx, loanID)
	}
	return 0, nil
}
func (m *Repo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.Installment, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, context.Canceled
}
func (m *Repo) GetByInstallmentID(ctx context.Context, installmentID string) (*domain.Installment, error) {
	if m.GetByInstallmentIDFn != nil {
		return m.GetByInstallmentIDFn(ctx, installmentID)
	}
	return nil, context.Canceled
}
func (m *Repo) MarkPaid(ctx context.Context, installmentID, txnID string, at time.Time) (bool, error) {
	if m.MarkPaidFn != nil {
		return m.MarkPaidFn(ctx, installmentID, txnID, at)
	}
	return false, context.Canceled
}
func (m *Repo) ListPendingByLoans(ctx context.Context, loanIDs []uint64) ([]domain.Installment, error) {
	if m.ListPendingByLoansFn != nil {
		return m.ListPendingByLoansFn(ctx, loanIDs)
	}
	return nil, context.Canceled
}
func (m *Repo) ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]domain.Installment, error) {
	if m.ListPendingDueBetweenFn != nil {
		return m.ListPendingDueBetweenFn(ctx, from, to)
	}
	return nil, context.Canceled
}
