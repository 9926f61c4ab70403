// Package notification describes the outbound, best-effort event channel.
// Events are published after the owning transaction commits; delivery
// failures never flow back into the operation that produced them.
package notification

import (
	"context"
	"errors"
	"time"
)

type Kind string

const (
	KindLoanSubmitted     Kind = "loan.submitted"
	KindLoanStatusChanged Kind = "loan.status_changed"
	KindInstallmentPaid   Kind = "installment.paid"
	KindInstallmentDue    Kind = "installment.due"
)

// ErrQueueEmpty is returned by Queue.Pop when nothing arrived before the wait elapsed.
var ErrQueueEmpty = errors.New("notification queue empty")

// Payload keys shared by producers and gateways.
const (
	KeyLoanID        = "loan_id"
	KeyApplicantName = "applicant_name"
	KeyAmount        = "amount"
	KeyTenureMonths  = "tenure_months"
	KeyInterestRate  = "interest_rate"
	KeyPropertyValue = "property_value"
	KeyStatus        = "status"
	KeyRemarks       = "remarks"
	KeyInstallmentID = "installment_id"
	KeyDueDate       = "due_date"
	KeyTransactionID = "transaction_id"
	KeySubmittedAt   = "submitted_at"
)

type Event struct {
	ID        string            `json:"id"`
	Kind      Kind              `json:"kind"`
	Recipient string            `json:"recipient"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

// Gateway delivers a single notification (email, sms, ...).
type Gateway interface {
	Notify(ctx context.Context, kind Kind, recipient string, payload map[string]string) error
}

// Queue buffers events between producers and the dispatcher.
type Queue interface {
	Push(ctx context.Context, ev Event) error
	// Pop blocks up to wait; ErrQueueEmpty when nothing arrived.
	Pop(ctx context.Context, wait time.Duration) (Event, error)
}

// Publisher is fire-and-forget: it has no error to return to the caller.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}
