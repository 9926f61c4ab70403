package uow

import (
	"context"

	"homeloan-backend/internal/domain/installment"
	"homeloan-backend/internal/domain/loan"
)

// Repos are bound to the surrounding transaction.
type Repos struct {
	Loans        loan.Repository
	Installments installment.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Application) error) error
}
