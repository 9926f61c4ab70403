package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	loanDomain "homeloan-backend/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Application) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Application, error) {
	var out loanDomain.Application
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return found(&out, res.Error)
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Application, error) {
	var out loanDomain.Application
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return found(&out, res.Error)
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Application, error) {
	var out loanDomain.Application
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return found(&out, res.Error)
}

func (r *LoanRepository) UpdateStatus(ctx context.Context, l *loanDomain.Application, to loanDomain.Status, remarks string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Application{}).
		Where("id = ? AND version = ?", l.ID, l.Version).
		Updates(map[string]any{
			"status":     to,
			"remarks":    remarks,
			"updated_at": at,
			"version":    l.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanDomain.ErrConcurrentUpdate
	}
	l.Status = to
	l.Remarks = remarks
	l.UpdatedAt = at
	l.Version++
	return nil
}

func (r *LoanRepository) ListByApplicant(ctx context.Context, applicantID string) ([]loanDomain.Application, error) {
	var out []loanDomain.Application
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("submitted_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListByStatus(ctx context.Context, s loanDomain.Status) ([]loanDomain.Application, error) {
	var out []loanDomain.Application
	err := r.db.WithContext(ctx).
		Where("status = ?", s).
		Order("submitted_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *LoanRepository) ListAll(ctx context.Context) ([]loanDomain.Application, error) {
	var out []loanDomain.Application
	err := r.db.WithContext(ctx).Order("submitted_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *LoanRepository) Stats(ctx context.Context) (*loanDomain.Stats, error) {
	var rows []struct {
		Status loanDomain.Status
		N      int64
		Total  decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&loanDomain.Application{}).
		Select("status, COUNT(*) AS n, COALESCE(SUM(amount), 0) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	st := &loanDomain.Stats{
		ByStatus:       make(map[loanDomain.Status]int64, len(loanDomain.AllStatuses)),
		TotalAmount:    decimal.Zero,
		ApprovedAmount: decimal.Zero,
	}
	for _, row := range rows {
		st.ByStatus[row.Status] = row.N
		st.TotalLoans += row.N
		st.TotalAmount = st.TotalAmount.Add(row.Total)
		if row.Status == loanDomain.StatusApproved {
			st.ApprovedAmount = row.Total
		}
	}
	return st, nil
}

func found(l *loanDomain.Application, err error) (*loanDomain.Application, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}
