// Package schedule builds and persists the EMI schedule of a loan.
package schedule

import (
	"context"
	"errors"

	"homeloan-backend/internal/domain/amortization"
	"homeloan-backend/internal/domain/apperr"
	"homeloan-backend/internal/domain/installment"
	"homeloan-backend/internal/domain/loan"
	"homeloan-backend/pkg/id"
)

var errUnsavedLoan = errors.New("loan must be persisted before its schedule")

type Generator struct {
	newID func() string
}

func NewGenerator() *Generator { return &Generator{newID: id.NewID32} }

// Build returns tenure installments of the constant EMI. The first is due one
// calendar month after the submission date and each later one a calendar
// month after the previous, so a day clamped at month end stays clamped.
// Nothing is persisted.
func (g *Generator) Build(l *loan.Application) ([]installment.Installment, error) {
	amount, err := amortization.MonthlyInstallment(l.Amount, l.InterestRate, l.TenureMonths)
	if err != nil {
		return nil, err
	}

	first := amortization.AddMonths(amortization.DateOf(l.SubmittedAt), 1)
	items := make([]installment.Installment, l.TenureMonths)
	for i := range items {
		seq := i + 1
		items[i] = installment.Installment{
			InstallmentID: g.newID(),
			LoanID:        l.ID,
			SeqNo:         seq,
			DueDate:       amortization.AddMonths(first, i),
			Amount:        amount,
			PaymentStatus: installment.StatusPending,
		}
	}
	return items, nil
}

// Generate builds the schedule and stores it through repo, which must be
// bound to the same transaction as the loan insert. A loan that already has
// installments is rejected with installment.ErrScheduleExists.
func (g *Generator) Generate(ctx context.Context, repo installment.Repository, l *loan.Application) ([]installment.Installment, error) {
	if l.ID == 0 {
		return nil, apperr.Fatal("generate schedule", errUnsavedLoan)
	}
	n, err := repo.CountByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, installment.ErrScheduleExists
	}

	items, err := g.Build(l)
	if err != nil {
		return nil, err
	}
	if err := repo.CreateBatch(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}
