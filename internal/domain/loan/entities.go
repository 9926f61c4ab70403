package loan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"homeloan-backend/internal/domain/apperr"
	"homeloan-backend/internal/domain/installment"
)

type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusDisbursed   Status = "DISBURSED"
	StatusClosed      Status = "CLOSED"
)

var (
	ErrNotFound          = apperr.New(apperr.KindNotFound, "loan not found")
	ErrInvalidTransition = apperr.New(apperr.KindConflict, "invalid state transition")
	ErrConcurrentUpdate  = apperr.New(apperr.KindConflict, "loan was modified concurrently")
	ErrUnknownStatus     = apperr.New(apperr.KindValidation, "unknown loan status")
)

// AllStatuses in lifecycle order.
var AllStatuses = []Status{
	StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved,
	StatusRejected, StatusDisbursed, StatusClosed,
}

// transitions is the complete edge set; anything absent is rejected.
var transitions = map[Status][]Status{
	StatusSubmitted:   {StatusUnderReview},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusDisbursed},
	StatusDisbursed:   {StatusClosed},
}

// ParseStatus accepts the status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", &apperr.Error{Kind: apperr.KindValidation, Msg: ErrUnknownStatus.Msg, Err: errors.New(strconv.Quote(s))}
}

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool { return s == StatusRejected || s == StatusClosed }

func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Transition validates the edge from -> to.
func Transition(from, to Status) error {
	if !to.Valid() {
		return ErrUnknownStatus
	}
	if !from.CanTransitionTo(to) {
		return &apperr.Error{
			Kind: apperr.KindConflict,
			Msg:  ErrInvalidTransition.Msg,
			Err:  fmt.Errorf("%s -> %s", from, to),
		}
	}
	return nil
}

// Application is a home loan application together with its repayment schedule.
type Application struct {
	ID            uint64              `gorm:"primaryKey;column:id" json:"-"`
	LoanID        string              `gorm:"column:loan_id;type:char(32);not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	ApplicantID   string              `gorm:"column:applicant_id;type:char(32);not null;index:idx_loans_applicant" json:"applicant_id"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:decimal(15,2);not null" json:"amount"`
	TenureMonths  int                 `gorm:"column:tenure_months;not null" json:"tenure_months"`
	InterestRate  decimal.Decimal     `gorm:"column:interest_rate;type:decimal(5,2);not null" json:"interest_rate"`
	PropertyValue decimal.NullDecimal `gorm:"column:property_value;type:decimal(15,2)" json:"property_value"`
	Purpose       string              `gorm:"column:purpose;size:500" json:"purpose"`
	Status        Status              `gorm:"column:status;size:30;not null;index:idx_loans_status" json:"status"`
	Remarks       string              `gorm:"column:remarks;size:500" json:"remarks,omitempty"`
	SubmittedAt   time.Time           `gorm:"column:submitted_at;not null" json:"submitted_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
	Version       uint64              `gorm:"column:version;not null;default:0" json:"-"`

	Installments []installment.Installment `gorm:"foreignKey:LoanID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Application) TableName() string { return "home_loan_applications" }
