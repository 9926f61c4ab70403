package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeloan-backend/internal/domain/amortization"
	"homeloan-backend/internal/domain/apperr"
	"homeloan-backend/internal/domain/installment"
	"homeloan-backend/internal/domain/loan"
	"homeloan-backend/internal/testutil/installmentmock"
	"homeloan-backend/pkg/id"
)

func newLoan(amount, rate string, tenure int, submitted time.Time) *loan.Application {
	return &loan.Application{
		ID:           42,
		LoanID:       id.NewID32(),
		Amount:       decimal.RequireFromString(amount),
		InterestRate: decimal.RequireFromString(rate),
		TenureMonths: tenure,
		Status:       loan.StatusSubmitted,
		SubmittedAt:  submitted,
	}
}

func TestBuild_ZeroRateSplitsEvenly(t *testing.T) {
	l := newLoan("120000", "0", 12, time.Date(2025, 3, 10, 15, 4, 5, 0, time.UTC))

	items, err := NewGenerator().Build(l)
	require.NoError(t, err)
	require.Len(t, items, 12)

	seen := map[string]bool{}
	for i, it := range items {
		assert.Equal(t, i+1, it.SeqNo)
		assert.Equal(t, uint64(42), it.LoanID)
		assert.Equal(t, "10000.00", it.Amount.StringFixed(2))
		assert.Equal(t, installment.StatusPending, it.PaymentStatus)
		assert.Nil(t, it.TransactionID)
		assert.True(t, id.Valid(it.InstallmentID))
		assert.False(t, seen[it.InstallmentID], "duplicate installment id")
		seen[it.InstallmentID] = true
	}
	assert.Equal(t, "2025-04-10", items[0].DueDate.Format(DateLayout))
	assert.Equal(t, "2026-03-10", items[11].DueDate.Format(DateLayout))
}

func TestBuild_StandardLoanDueDatesAscending(t *testing.T) {
	l := newLoan("100000", "12", 12, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

	items, err := NewGenerator().Build(l)
	require.NoError(t, err)
	for i, it := range items {
		assert.Equal(t, "8884.88", it.Amount.StringFixed(2))
		if i > 0 {
			assert.True(t, it.DueDate.After(items[i-1].DueDate), "due dates must ascend")
		}
	}
}

func TestBuild_MonthEndClamps(t *testing.T) {
	l := newLoan("100000", "10", 7, time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC))

	items, err := NewGenerator().Build(l)
	require.NoError(t, err)

	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.DueDate.Format(DateLayout)
	}
	assert.Equal(t, []string{
		"2024-02-29", "2024-03-29", "2024-04-29", "2024-05-29",
		"2024-06-29", "2024-07-29", "2024-08-29",
	}, got)
	assert.Equal(t, "14765.86", items[0].Amount.StringFixed(2))
}

func TestBuild_EachDueDateIsOneMonthAfterThePrevious(t *testing.T) {
	for _, submitted := range []time.Time{
		time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	} {
		items, err := NewGenerator().Build(newLoan("500000", "8.5", 24, submitted))
		require.NoError(t, err)

		want := amortization.AddMonths(amortization.DateOf(submitted), 1)
		assert.True(t, items[0].DueDate.Equal(want), "first due %s, want %s", items[0].DueDate, want)
		for i := 1; i < len(items); i++ {
			next := amortization.AddMonths(items[i-1].DueDate, 1)
			assert.True(t, items[i].DueDate.Equal(next),
				"from %s: seq %d due %s, want %s", submitted.Format(DateLayout), items[i].SeqNo,
				items[i].DueDate.Format(DateLayout), next.Format(DateLayout))
		}
	}
}

func TestBuild_InvalidLoanIsValidationError(t *testing.T) {
	l := newLoan("0", "10", 12, time.Now())
	_, err := NewGenerator().Build(l)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestGenerate_PersistsSchedule(t *testing.T) {
	var stored []installment.Installment
	repo := &installmentmock.Repo{
		CreateBatchFn: func(_ context.Context, items []installment.Installment) error {
			stored = items
			return nil
		},
	}
	l := newLoan("500000", "8.5", 240, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

	items, err := NewGenerator().Generate(context.Background(), repo, l)
	require.NoError(t, err)
	require.Len(t, items, 240)
	assert.Equal(t, items, stored)
	assert.Equal(t, "4339.12", items[239].Amount.StringFixed(2))
}

func TestGenerate_RefusesSecondSchedule(t *testing.T) {
	writes := 0
	repo := &installmentmock.Repo{
		CountByLoanFn: func(context.Context, uint64) (int64, error) { return 12, nil },
		CreateBatchFn: func(context.Context, []installment.Installment) error { writes++; return nil },
	}
	l := newLoan("100000", "12", 12, time.Now())

	_, err := NewGenerator().Generate(context.Background(), repo, l)
	assert.ErrorIs(t, err, installment.ErrScheduleExists)
	assert.True(t, apperr.IsConflict(err))
	assert.Zero(t, writes)
}

func TestGenerate_Errors(t *testing.T) {
	boom := errors.New("db down")
	tests := []struct {
		name string
		repo *installmentmock.Repo
		loan *loan.Application
	}{
		{"unsaved loan", &installmentmock.Repo{}, func() *loan.Application {
			l := newLoan("100000", "12", 12, time.Now())
			l.ID = 0
			return l
		}()},
		{"count fails", &installmentmock.Repo{
			CountByLoanFn: func(context.Context, uint64) (int64, error) { return 0, boom },
		}, newLoan("100000", "12", 12, time.Now())},
		{"insert fails", &installmentmock.Repo{
			CreateBatchFn: func(context.Context, []installment.Installment) error { return boom },
		}, newLoan("100000", "12", 12, time.Now())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := NewGenerator().Generate(context.Background(), tt.repo, tt.loan)
			assert.Error(t, err)
			assert.Nil(t, items)
			assert.Equal(t, apperr.KindFatal, apperr.KindOf(err), fmt.Sprint(err))
		})
	}
}

func TestToDTO(t *testing.T) {
	txn := "TXN-1"
	paidAt := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	dto := ToDTO("abc", installment.Installment{
		InstallmentID: "i1",
		SeqNo:         3,
		DueDate:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString("10000"),
		PaymentStatus: installment.StatusPaid,
		TransactionID: &txn,
		PaidAt:        &paidAt,
	})
	assert.Equal(t, "abc", dto.LoanID)
	assert.Equal(t, "2025-02-01", dto.DueDate)
	assert.Equal(t, "10000.00", dto.Amount)
	assert.Equal(t, "PAID", dto.PaymentStatus)
	assert.Equal(t, &txn, dto.TransactionID)
}
