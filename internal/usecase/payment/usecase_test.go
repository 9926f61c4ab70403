package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeloan-backend/internal/domain/applicant"
	"homeloan-backend/internal/domain/apperr"
	"homeloan-backend/internal/domain/installment"
	"homeloan-backend/internal/domain/loan"
	"homeloan-backend/internal/domain/notification"
	"homeloan-backend/internal/domain/uow"
	"homeloan-backend/internal/testutil/applicantmock"
	"homeloan-backend/internal/testutil/installmentmock"
	"homeloan-backend/internal/testutil/loanmock"
	"homeloan-backend/internal/testutil/notifymock"
	"homeloan-backend/internal/testutil/uowmock"
)

const userID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

var paidAt = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	uc     *Usecase
	loans  *loanmock.Repo
	items  *installmentmock.Repo
	users  *applicantmock.Directory
	events *notifymock.Publisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		loans:  &loanmock.Repo{},
		items:  &installmentmock.Repo{},
		users:  applicantmock.NewDirectory(&applicant.Applicant{UserID: userID, Email: "asha@example.com", FullName: "Asha Rao"}),
		events: &notifymock.Publisher{},
	}
	f.loans.GetByIDFn = func(_ context.Context, id uint64) (*loan.Application, error) {
		return &loan.Application{ID: id, LoanID: "cccccccccccccccccccccccccccccccc", ApplicantID: userID}, nil
	}
	log, _ := logtest.NewNullLogger()
	tx := uowmock.PassThrough(uow.Repos{Loans: f.loans, Installments: f.items})
	f.uc = NewUsecase(tx, f.loans, f.items, f.users, f.events, log).
		WithClock(func() time.Time { return paidAt })
	return f
}

func pendingRow() *installment.Installment {
	return &installment.Installment{
		InstallmentID: "i1",
		LoanID:        7,
		SeqNo:         2,
		DueDate:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString("8884.88"),
		PaymentStatus: installment.StatusPending,
	}
}

func TestPayInstallment_Success(t *testing.T) {
	f := newFixture(t)
	row := pendingRow()
	f.items.MarkPaidFn = func(_ context.Context, id, txn string, at time.Time) (bool, error) {
		row.PaymentStatus, row.TransactionID, row.PaidAt = installment.StatusPaid, &txn, &at
		return true, nil
	}
	f.items.GetByInstallmentIDFn = func(context.Context, string) (*installment.Installment, error) {
		cp := *row
		return &cp, nil
	}

	dto, err := f.uc.PayInstallment(context.Background(), "i1", "  TXN-42 ")
	require.NoError(t, err)
	assert.Equal(t, "PAID", dto.PaymentStatus)
	assert.Equal(t, "TXN-42", *dto.TransactionID)
	assert.Equal(t, "cccccccccccccccccccccccccccccccc", dto.LoanID)
	assert.True(t, dto.PaidAt.Equal(paidAt))

	ev, ok := f.events.Last()
	require.True(t, ok)
	assert.Equal(t, notification.KindInstallmentPaid, ev.Kind)
	assert.Equal(t, "asha@example.com", ev.Recipient)
	assert.Equal(t, "TXN-42", ev.Payload[notification.KeyTransactionID])
	assert.Equal(t, "8884.88", ev.Payload[notification.KeyAmount])
	assert.Equal(t, "2025-03-01", ev.Payload[notification.KeyDueDate])
}

func TestPayInstallment_BlankTransactionID(t *testing.T) {
	for _, txn := range []string{"", "   ", "\t\n"} {
		f := newFixture(t)
		called := false
		f.items.MarkPaidFn = func(context.Context, string, string, time.Time) (bool, error) {
			called = true
			return true, nil
		}

		_, err := f.uc.PayInstallment(context.Background(), "i1", txn)
		assert.ErrorIs(t, err, installment.ErrEmptyTxnID)
		assert.True(t, apperr.IsValidation(err))
		assert.False(t, called, "no write for an invalid request")
	}
}

func TestPayInstallment_TransactionIDTooLong(t *testing.T) {
	f := newFixture(t)
	long := make([]byte, MaxTransactionIDLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err := f.uc.PayInstallment(context.Background(), "i1", string(long))
	assert.True(t, apperr.IsValidation(err))
}

func TestPayInstallment_AlreadyPaid(t *testing.T) {
	f := newFixture(t)
	txn := "TXN-1"
	row := pendingRow()
	row.PaymentStatus, row.TransactionID = installment.StatusPaid, &txn
	f.items.MarkPaidFn = func(context.Context, string, string, time.Time) (bool, error) { return false, nil }
	f.items.GetByInstallmentIDFn = func(context.Context, string) (*installment.Installment, error) { return row, nil }

	_, err := f.uc.PayInstallment(context.Background(), "i1", "TXN-2")
	assert.ErrorIs(t, err, installment.ErrAlreadyPaid)
	assert.True(t, apperr.IsConflict(err))
	assert.Equal(t, "TXN-1", *row.TransactionID)
	assert.Empty(t, f.events.Kinds())
}

func TestPayInstallment_Unknown(t *testing.T) {
	f := newFixture(t)
	f.items.MarkPaidFn = func(context.Context, string, string, time.Time) (bool, error) { return false, nil }
	f.items.GetByInstallmentIDFn = func(context.Context, string) (*installment.Installment, error) {
		return nil, installment.ErrNotFound
	}

	_, err := f.uc.PayInstallment(context.Background(), "missing", "TXN-1")
	assert.ErrorIs(t, err, installment.ErrNotFound)
	assert.True(t, apperr.IsNotFound(err))
}

func TestPayInstallment_StoreFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.items.MarkPaidFn = func(context.Context, string, string, time.Time) (bool, error) {
		return false, errors.New("lock wait timeout")
	}

	_, err := f.uc.PayInstallment(context.Background(), "i1", "TXN-1")
	assert.Equal(t, apperr.KindFatal, apperr.KindOf(err))
}

func TestPayInstallment_NotificationProblemKeepsPayment(t *testing.T) {
	f := newFixture(t)
	log, hook := logtest.NewNullLogger()
	f.uc.log = log
	f.users.GetErr = errors.New("identity down")
	row := pendingRow()
	f.items.MarkPaidFn = func(context.Context, string, string, time.Time) (bool, error) { return true, nil }
	f.items.GetByInstallmentIDFn = func(context.Context, string) (*installment.Installment, error) { return row, nil }

	_, err := f.uc.PayInstallment(context.Background(), "i1", "TXN-1")
	require.NoError(t, err)
	assert.Empty(t, f.events.Kinds())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestListSchedule(t *testing.T) {
	f := newFixture(t)
	f.loans.GetByLoanIDFn = func(_ context.Context, loanID string) (*loan.Application, error) {
		if loanID != "L1" {
			return nil, loan.ErrNotFound
		}
		return &loan.Application{ID: 7, LoanID: "L1"}, nil
	}
	f.items.ListByLoanFn = func(_ context.Context, id uint64) ([]installment.Installment, error) {
		require.Equal(t, uint64(7), id)
		a, b := *pendingRow(), *pendingRow()
		a.SeqNo, b.SeqNo = 1, 2
		return []installment.Installment{a, b}, nil
	}

	got, err := f.uc.ListSchedule(context.Background(), "L1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].SeqNo)
	assert.Equal(t, "L1", got[1].LoanID)

	_, err = f.uc.ListSchedule(context.Background(), "L2")
	assert.ErrorIs(t, err, loan.ErrNotFound)
}

func TestListPendingForUser(t *testing.T) {
	f := newFixture(t)
	f.loans.ListByApplicantFn = func(context.Context, string) ([]loan.Application, error) {
		return []loan.Application{{ID: 1, LoanID: "L1"}, {ID: 2, LoanID: "L2"}}, nil
	}
	f.items.ListPendingByLoansFn = func(_ context.Context, ids []uint64) ([]installment.Installment, error) {
		assert.ElementsMatch(t, []uint64{1, 2}, ids)
		return []installment.Installment{
			{InstallmentID: "a", LoanID: 2, DueDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), PaymentStatus: installment.StatusPending},
			{InstallmentID: "b", LoanID: 1, DueDate: time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), PaymentStatus: installment.StatusPending},
		}, nil
	}

	got, err := f.uc.ListPendingForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "L2", got[0].LoanID)
	assert.Equal(t, "L1", got[1].LoanID)

	_, err = f.uc.ListPendingForUser(context.Background(), "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	assert.ErrorIs(t, err, applicant.ErrNotFound)
}

func TestListPendingForUser_NoLoans(t *testing.T) {
	f := newFixture(t)
	f.loans.ListByApplicantFn = func(context.Context, string) ([]loan.Application, error) { return nil, nil }

	got, err := f.uc.ListPendingForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
