package loanmock

import (
	"context"
	"time"

	domain "homeloan-backend/internal/domain/loan"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset functions return context.Canceled (or nil for writes).
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Application) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Application, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Application, error)
	GetByIDFn              func(ctx context.Context, id uint64) (*domain.Application, error)
	UpdateStatusFn         func(ctx context.Context, l *domain.Application, to domain.Status, remarks string, at time.Time) error
	ListByApplicantFn      func(ctx context.Context, applicantID string) ([]domain.Application, error)
	ListByStatusFn         func(ctx context.Context, s domain.Status) ([]domain.Application, error)
	ListAllFn              func(ctx context.Context) ([]domain.Application, error)
	StatsFn                func(ctx context.Context) (*domain.Stats, error)
}

var _ domain.Repository = (*Repo)(nil)

func (m *Repo) Create(ctx context.Context, l *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}
func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Application, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}
func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Application, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}
func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Application, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

// UpdateStatus mirrors the real repository: on success the passed loan is
// updated in place.
func (m *Repo) UpdateStatus(ctx context.Context, l *domain.Application, to domain.Status, remarks string, at time.Time) error {
	if m.UpdateStatusFn != nil {
		if err := m.UpdateStatusFn(ctx, l, to, remarks, at); err != nil {
			return err
		}
	}
	l.Status, l.Remarks, l.UpdatedAt = to, remarks, at
	l.Version++
	return nil
}
func (m *Repo) ListByApplicant(ctx context.Context, applicantID string) ([]domain.Application, error) {
	if m.ListByApplicantFn != nil {
		return m.ListByApplicantFn(ctx, applicantID)
	}
	return nil, context.Canceled
}
func (m *Repo) ListByStatus(ctx context.Context, s domain.Status) ([]domain.Application, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, s)
	}
	return nil, context.Canceled
}
func (m *Repo) ListAll(ctx context.Context) ([]domain.Application, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return nil, context.Canceled
}
func (m *Repo) Stats(ctx context.Context) (*domain.Stats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx)
	}
	return nil, context.Canceled
}
