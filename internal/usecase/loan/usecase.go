package loan

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"homeloan-backend/internal/domain/amortization"
	"homeloan-backend/internal/domain/applicant"
	"homeloan-backend/internal/domain/apperr"
	"homeloan-backend/internal/domain/installment"
	domain "homeloan-backend/internal/domain/loan"
	"homeloan-backend/internal/domain/notification"
	"homeloan-backend/internal/domain/uow"
	"homeloan-backend/internal/usecase/schedule"
	"homeloan-backend/pkg/id"
)

var (
	MinAmount       = decimal.NewFromInt(10000)
	// decimal(15,2) column
	MaxAmount       = decimal.RequireFromString("9999999999999.99")
	MinInterestRate = decimal.RequireFromString("0.1")
	// decimal(5,2) column
	MaxInterestRate = decimal.RequireFromString("999.99")
)

const (
	MinTenureMonths  = 6
	MaxPurposeLength = 500
	MaxRemarksLength = 500
)

type Usecase struct {
	tx         uow.UnitOfWork
	repo       domain.Repository
	applicants applicant.Directory
	schedule   *schedule.Generator
	events     notification.Publisher
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, repo domain.Repository, applicants applicant.Directory, gen *schedule.Generator, events notification.Publisher, log logrus.FieldLogger) *Usecase {
	return &Usecase{
		tx:         tx,
		repo:       repo,
		applicants: applicants,
		schedule:   gen,
		events:     events,
		log:        log,
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

func (in ApplyInput) validate() error {
	switch {
	case !id.Valid(in.ApplicantID):
		return apperr.Validation("applicant_id must be a 32-char lowercase hex id")
	case in.Amount.LessThan(MinAmount):
		return apperr.Validation("amount must be at least %s", MinAmount.StringFixed(2))
	case in.Amount.GreaterThan(MaxAmount):
		return apperr.Validation("amount must not exceed %s", MaxAmount.StringFixed(2))
	case !in.Amount.Equal(in.Amount.Round(2)):
		return apperr.Validation("amount must have at most 2 decimal places")
	case in.TenureMonths < MinTenureMonths:
		return apperr.Validation("tenure_months must be at least %d", MinTenureMonths)
	case in.InterestRate.LessThan(MinInterestRate):
		return apperr.Validation("interest_rate must be at least %s", MinInterestRate.String())
	case in.InterestRate.GreaterThan(MaxInterestRate):
		return apperr.Validation("interest_rate must not exceed %s", MaxInterestRate.String())
	case !in.InterestRate.Equal(in.InterestRate.Round(2)):
		return apperr.Validation("interest_rate must have at most 2 decimal places")
	case in.PropertyValue.Valid && in.PropertyValue.Decimal.IsNegative():
		return apperr.Validation("property_value must not be negative")
	case strings.TrimSpace(in.Purpose) == "":
		return apperr.Validation("purpose is required")
	case utf8.RuneCountInString(in.Purpose) > MaxPurposeLength:
		return apperr.Validation("purpose must be at most %d characters", MaxPurposeLength)
	}
	return nil
}

// Apply stores a SUBMITTED application and its full EMI schedule in one
// transaction, then announces the submission.
func (u *Usecase) Apply(ctx context.Context, in ApplyInput) (*LoanDTO, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	who, err := u.applicants.Get(ctx, in.ApplicantID)
	if err != nil {
		return nil, apperr.Classify("load applicant", err)
	}

	now := u.now().UTC()
	l := &domain.Application{
		LoanID:        id.NewID32(),
		ApplicantID:   in.ApplicantID,
		Amount:        in.Amount,
		TenureMonths:  in.TenureMonths,
		InterestRate:  in.InterestRate,
		PropertyValue: in.PropertyValue,
		Purpose:       strings.TrimSpace(in.Purpose),
		Status:        domain.StatusSubmitted,
		SubmittedAt:   now,
		UpdatedAt:     now,
	}

	var items []installment.Installment
	err = u.tx.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		var err error
		items, err = u.schedule.Generate(ctx, r.Installments, l)
		return err
	})
	if err != nil {
		return nil, apperr.Classify("apply loan", err)
	}
	l.Installments = items

	fields := logrus.Fields{
		"loan_id":      l.LoanID,
		"applicant_id": l.ApplicantID,
		"tenure":       l.TenureMonths,
	}
	u.log.WithFields(fields).Info("loan application submitted")
	// the last installment is not adjusted; record how far the schedule drifts
	if len(items) > 0 {
		drift := amortization.Residual(l.Amount, l.InterestRate, l.TenureMonths, items[0].Amount)
		if !drift.IsZero() {
			u.log.WithFields(fields).WithField("residual", drift.StringFixed(2)).Debug("schedule rounding drift")
		}
	}

	u.events.Publish(ctx, submittedEvent(who, l, now))
	return toDTO(l), nil
}

// Transition moves a loan along the lifecycle table under a row lock.
func (u *Usecase) Transition(ctx context.Context, loanID string, target domain.Status, remarks string) (*LoanDTO, error) {
	if !target.Valid() {
		return nil, domain.ErrUnknownStatus
	}
	remarks = strings.TrimSpace(remarks)
	if utf8.RuneCountInString(remarks) > MaxRemarksLength {
		return nil, apperr.Validation("remarks must be at most %d characters", MaxRemarksLength)
	}

	var (
		updated domain.Application
		from    domain.Status
	)
	err := u.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Application) error {
		from = l.Status
		if err := domain.Transition(l.Status, target); err != nil {
			return err
		}
		if err := r.Loans.UpdateStatus(ctx, l, target, remarks, u.now().UTC()); err != nil {
			return err
		}
		updated = *l
		return nil
	})
	if err != nil {
		return nil, apperr.Classify("transition loan", err)
	}

	u.log.WithFields(logrus.Fields{
		"loan_id": updated.LoanID,
		"from":    from,
		"to":      updated.Status,
	}).Info("loan status changed")

	u.notifyStatus(ctx, &updated)
	return toDTO(&updated), nil
}

func (u *Usecase) Approve(ctx context.Context, loanID, remarks string) (*LoanDTO, error) {
	return u.Transition(ctx, loanID, domain.StatusApproved, remarks)
}

func (u *Usecase) Reject(ctx context.Context, loanID, reason string) (*LoanDTO, error) {
	return u.Transition(ctx, loanID, domain.StatusRejected, reason)
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperr.Classify("get loan", err)
	}
	return toDTO(l), nil
}

func (u *Usecase) ListForApplicant(ctx context.Context, applicantID string) ([]LoanDTO, error) {
	if _, err := u.applicants.Get(ctx, applicantID); err != nil {
		return nil, apperr.Classify("load applicant", err)
	}
	ls, err := u.repo.ListByApplicant(ctx, applicantID)
	if err != nil {
		return nil, apperr.Classify("list loans", err)
	}
	return toDTOs(ls), nil
}

func (u *Usecase) ListByStatus(ctx context.Context, s domain.Status) ([]LoanDTO, error) {
	if !s.Valid() {
		return nil, domain.ErrUnknownStatus
	}
	ls, err := u.repo.ListByStatus(ctx, s)
	if err != nil {
		return nil, apperr.Classify("list loans", err)
	}
	return toDTOs(ls), nil
}

func (u *Usecase) ListAll(ctx context.Context) ([]LoanDTO, error) {
	ls, err := u.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Classify("list loans", err)
	}
	return toDTOs(ls), nil
}

func (u *Usecase) Dashboard(ctx context.Context) (*DashboardDTO, error) {
	st, err := u.repo.Stats(ctx)
	if err != nil {
		return nil, apperr.Classify("loan stats", err)
	}
	users, err := u.applicants.Count(ctx)
	if err != nil {
		return nil, apperr.Classify("count applicants", err)
	}

	byStatus := make(map[string]int64, len(domain.AllStatuses))
	for _, s := range domain.AllStatuses {
		byStatus[string(s)] = st.ByStatus[s]
	}
	return &DashboardDTO{
		TotalApplicants:    users,
		TotalLoans:         st.TotalLoans,
		PendingLoans:       st.ByStatus[domain.StatusSubmitted],
		ApprovedLoans:      st.ByStatus[domain.StatusApproved],
		RejectedLoans:      st.ByStatus[domain.StatusRejected],
		ByStatus:           byStatus,
		TotalLoanAmount:    st.TotalAmount.StringFixed(2),
		ApprovedLoanAmount: st.ApprovedAmount.StringFixed(2),
	}, nil
}

// notifyStatus runs after commit; nothing here can fail the transition.
func (u *Usecase) notifyStatus(ctx context.Context, l *domain.Application) {
	who, err := u.applicants.Get(ctx, l.ApplicantID)
	if err != nil {
		u.log.WithError(err).WithField("loan_id", l.LoanID).Warn("status notification skipped")
		return
	}
	u.events.Publish(ctx, notification.Event{
		ID:        id.NewID32(),
		Kind:      notification.KindLoanStatusChanged,
		Recipient: who.Email,
		Payload: map[string]string{
			notification.KeyLoanID:        l.LoanID,
			notification.KeyApplicantName: who.FullName,
			notification.KeyAmount:        l.Amount.StringFixed(2),
			notification.KeyStatus:        string(l.Status),
			notification.KeyRemarks:       l.Remarks,
		},
		CreatedAt: l.UpdatedAt,
	})
}

func submittedEvent(who *applicant.Applicant, l *domain.Application, at time.Time) notification.Event {
	payload := map[string]string{
		notification.KeyLoanID:        l.LoanID,
		notification.KeyApplicantName: who.FullName,
		notification.KeyAmount:        l.Amount.StringFixed(2),
		notification.KeyTenureMonths:  strconv.Itoa(l.TenureMonths),
		notification.KeyInterestRate:  l.InterestRate.StringFixed(2),
		notification.KeyStatus:        string(l.Status),
		notification.KeySubmittedAt:   l.SubmittedAt.Format(time.RFC3339),
	}
	if l.PropertyValue.Valid {
		payload[notification.KeyPropertyValue] = l.PropertyValue.Decimal.StringFixed(2)
	}
	return notification.Event{
		ID:        id.NewID32(),
		Kind:      notification.KindLoanSubmitted,
		Recipient: who.Email,
		Payload:   payload,
		CreatedAt: at,
	}
}
