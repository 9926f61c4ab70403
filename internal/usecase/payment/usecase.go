// Package payment records EMI payments and serves the repayment views.
package payment

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"homeloan-backend/internal/domain/applicant"
	"homeloan-backend/internal/domain/apperr"
	"homeloan-backend/internal/domain/installment"
	"homeloan-backend/internal/domain/loan"
	"homeloan-backend/internal/domain/notification"
	"homeloan-backend/internal/domain/uow"
	"homeloan-backend/internal/usecase/schedule"
	"homeloan-backend/pkg/id"
)

// MaxTransactionIDLength matches the transaction_id column.
const MaxTransactionIDLength = 64

type Usecase struct {
	tx           uow.UnitOfWork
	loans        loan.Repository
	installments installment.Repository
	applicants   applicant.Directory
	events       notification.Publisher
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, loans loan.Repository, installments installment.Repository, applicants applicant.Directory, events notification.Publisher, log logrus.FieldLogger) *Usecase {
	return &Usecase{
		tx:           tx,
		loans:        loans,
		installments: installments,
		applicants:   applicants,
		events:       events,
		log:          log,
		now:          time.Now,
	}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// PayInstallment flips a PENDING installment to PAID. The check and the
// write are one conditional UPDATE, so of two concurrent payers exactly one
// wins and the other gets installment.ErrAlreadyPaid.
func (u *Usecase) PayInstallment(ctx context.Context, installmentID, transactionID string) (*schedule.InstallmentDTO, error) {
	txn := strings.TrimSpace(transactionID)
	if txn == "" {
		return nil, installment.ErrEmptyTxnID
	}
	if len(txn) > MaxTransactionIDLength {
		return nil, apperr.Validation("transaction_id must be at most %d characters", MaxTransactionIDLength)
	}

	var paid *installment.Installment
	err := u.tx.WithinTx(ctx, func(r uow.Repos) error {
		ok, err := r.Installments.MarkPaid(ctx, installmentID, txn, u.now().UTC())
		if err != nil {
			return err
		}
		cur, err := r.Installments.GetByInstallmentID(ctx, installmentID)
		if err != nil {
			return err
		}
		if !ok {
			return installment.ErrAlreadyPaid
		}
		paid = cur
		return nil
	})
	if err != nil {
		return nil, apperr.Classify("pay installment", err)
	}

	log := u.log.WithFields(logrus.Fields{
		"installment_id": paid.InstallmentID,
		"seq_no":         paid.SeqNo,
	})
	l, err := u.loans.GetByID(ctx, paid.LoanID)
	if err != nil {
		// The payment is committed; only the loan id in the response is missing.
		log.WithError(err).Warn("payment recorded but loan lookup failed")
		dto := schedule.ToDTO("", *paid)
		return &dto, nil
	}
	log.WithField("loan_id", l.LoanID).Info("installment paid")

	u.notifyPaid(ctx, l, paid)
	dto := schedule.ToDTO(l.LoanID, *paid)
	return &dto, nil
}

// ListSchedule returns every installment of the loan in sequence order.
func (u *Usecase) ListSchedule(ctx context.Context, loanID string) ([]schedule.InstallmentDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperr.Classify("get loan", err)
	}
	items, err := u.installments.ListByLoan(ctx, l.ID)
	if err != nil {
		return nil, apperr.Classify("list schedule", err)
	}
	return schedule.ToDTOs(l.LoanID, items), nil
}

// ListPendingForUser aggregates PENDING installments over all loans of the
// user, earliest due first.
func (u *Usecase) ListPendingForUser(ctx context.Context, userID string) ([]schedule.InstallmentDTO, error) {
	if _, err := u.applicants.Get(ctx, userID); err != nil {
		return nil, apperr.Classify("load applicant", err)
	}
	loans, err := u.loans.ListByApplicant(ctx, userID)
	if err != nil {
		return nil, apperr.Classify("list loans", err)
	}
	if len(loans) == 0 {
		return []schedule.InstallmentDTO{}, nil
	}

	publicID := make(map[uint64]string, len(loans))
	ids := make([]uint64, 0, len(loans))
	for _, l := range loans {
		publicID[l.ID] = l.LoanID
		ids = append(ids, l.ID)
	}
	items, err := u.installments.ListPendingByLoans(ctx, ids)
	if err != nil {
		return nil, apperr.Classify("list pending installments", err)
	}

	out := make([]schedule.InstallmentDTO, len(items))
	for i, it := range items {
		out[i] = schedule.ToDTO(publicID[it.LoanID], it)
	}
	return out, nil
}

func (u *Usecase) notifyPaid(ctx context.Context, l *loan.Application, it *installment.Installment) {
	who, err := u.applicants.Get(ctx, l.ApplicantID)
	if err != nil {
		u.log.WithError(err).WithField("installment_id", it.InstallmentID).Warn("payment notification skipped")
		return
	}
	payload := map[string]string{
		notification.KeyLoanID:        l.LoanID,
		notification.KeyApplicantName: who.FullName,
		notification.KeyInstallmentID: it.InstallmentID,
		notification.KeyAmount:        it.Amount.StringFixed(2),
		notification.KeyDueDate:       it.DueDate.UTC().Format(schedule.DateLayout),
	}
	if it.TransactionID != nil {
		payload[notification.KeyTransactionID] = *it.TransactionID
	}
	at := u.now().UTC()
	if it.PaidAt != nil {
		at = *it.PaidAt
	}
	u.events.Publish(ctx, notification.Event{
		ID:        id.NewID32(),
		Kind:      notification.KindInstallmentPaid,
		Recipient: who.Email,
		Payload:   payload,
		CreatedAt: at,
	})
}
