package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	emi "homeloan-backend/internal/domain/installment"
)

const scheduleBatchSize = 120

type InstallmentRepository struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) CreateBatch(ctx context.Context, items []emi.Installment) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, scheduleBatchSize).Error
}

func (r *InstallmentRepository) CountByLoan(ctx context.Context, loanID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&emi.Installment{}).Where("loan_id = ?", loanID).Count(&n).Error
	return n, err
}

func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanID uint64) ([]emi.Installment, error) {
	var out []emi.Installment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("seq_no ASC").
		Find(&out).Error
	return out, err
}

func (r *InstallmentRepository) GetByInstallmentID(ctx context.Context, installmentID string) (*emi.Installment, error) {
	var out emi.Installment
	err := r.db.WithContext(ctx).Where("installment_id = ?", installmentID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, emi.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkPaid relies on the payment_status predicate: of two racing updates on
// the same row only one can still see PENDING.
func (r *InstallmentRepository) MarkPaid(ctx context.Context, installmentID, txnID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&emi.Installment{}).
		Where("installment_id = ? AND payment_status = ?", installmentID, emi.StatusPending).
		Updates(map[string]any{
			"payment_status": emi.StatusPaid,
			"transaction_id": txnID,
			"paid_at":        at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *InstallmentRepository) ListPendingByLoans(ctx context.Context, loanIDs []uint64) ([]emi.Installment, error) {
	if len(loanIDs) == 0 {
		return nil, nil
	}
	var out []emi.Installment
	err := r.db.WithContext(ctx).
		Where("loan_id IN ? AND payment_status = ?", loanIDs, emi.StatusPending).
		Order("due_date ASC, loan_id ASC, seq_no ASC").
		Find(&out).Error
	return out, err
}

func (r *InstallmentRepository) ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]emi.Installment, error) {
	var out []emi.Installment
	err := r.db.WithContext(ctx).
		Where("payment_status = ? AND due_date >= ? AND due_date <= ?", emi.StatusPending, from, to).
		Order("due_date ASC, loan_id ASC, seq_no ASC").
		Find(&out).Error
	return out, err
}
