// Package reminder announces installments that fall due soon.
package reminder

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"homeloan-backend/internal/domain/amortization"
	"homeloan-backend/internal/domain/applicant"
	"homeloan-backend/internal/domain/apperr"
	"homeloan-backend/internal/domain/installment"
	"homeloan-backend/internal/domain/loan"
	"homeloan-backend/internal/domain/notification"
	"homeloan-backend/internal/usecase/schedule"
	"homeloan-backend/pkg/id"
)

const DefaultLeadDays = 3

type Job struct {
	loans        loan.Repository
	installments installment.Repository
	applicants   applicant.Directory
	events       notification.Publisher
	leadDays     int
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewJob(loans loan.Repository, installments installment.Repository, applicants applicant.Directory, events notification.Publisher, leadDays int, log logrus.FieldLogger) *Job {
	if leadDays < 0 {
		leadDays = DefaultLeadDays
	}
	return &Job{
		loans:        loans,
		installments: installments,
		applicants:   applicants,
		events:       events,
		leadDays:     leadDays,
		log:          log,
		now:          time.Now,
	}
}

func (j *Job) WithClock(now func() time.Time) *Job {
	j.now = now
	return j
}

// Run publishes one installment.due event per PENDING installment due
// between today and today+leadDays inclusive. It only reads; a reminder
// that cannot be addressed is logged and skipped.
func (j *Job) Run(ctx context.Context) (int, error) {
	from := amortization.DateOf(j.now())
	to := from.AddDate(0, 0, j.leadDays)

	due, err := j.installments.ListPendingDueBetween(ctx, from, to)
	if err != nil {
		return 0, apperr.Classify("list due installments", err)
	}

	loans := map[uint64]*loan.Application{}
	people := map[string]*applicant.Applicant{}
	sent := 0
	for i := range due {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		it := &due[i]
		log := j.log.WithField("installment_id", it.InstallmentID)

		l, ok := loans[it.LoanID]
		if !ok {
			if l, err = j.loans.GetByID(ctx, it.LoanID); err != nil {
				log.WithError(err).Warn("reminder skipped: loan lookup failed")
				continue
			}
			loans[it.LoanID] = l
		}
		who, ok := people[l.ApplicantID]
		if !ok {
			if who, err = j.applicants.Get(ctx, l.ApplicantID); err != nil {
				log.WithError(err).Warn("reminder skipped: applicant lookup failed")
				continue
			}
			people[l.ApplicantID] = who
		}

		j.events.Publish(ctx, notification.Event{
			ID:        id.NewID32(),
			Kind:      notification.KindInstallmentDue,
			Recipient: who.Email,
			Payload: map[string]string{
				notification.KeyLoanID:        l.LoanID,
				notification.KeyApplicantName: who.FullName,
				notification.KeyInstallmentID: it.InstallmentID,
				notification.KeyAmount:        it.Amount.StringFixed(2),
				notification.KeyDueDate:       it.DueDate.UTC().Format(schedule.DateLayout),
			},
			CreatedAt: j.now().UTC(),
		})
		sent++
	}

	j.log.WithFields(logrus.Fields{"due": len(due), "sent": sent, "from": from.Format(schedule.DateLayout), "to": to.Format(schedule.DateLayout)}).
		Info("installment reminders published")
	return sent, nil
}
