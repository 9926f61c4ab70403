package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"homeloan-backend/internal/domain/notification"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestRender_AllKinds(t *testing.T) {
	payload := map[string]string{
		notification.KeyLoanID:        "L1",
		notification.KeyApplicantName: "Asha",
		notification.KeyAmount:        "100000.00",
		notification.KeyTenureMonths:  "12",
		notification.KeyInterestRate:  "12.00",
		notification.KeyStatus:        "APPROVED",
		notification.KeyInstallmentID: "I1",
		notification.KeyDueDate:       "2025-02-28",
		notification.KeyTransactionID: "TXN-9",
	}
	tests := []struct {
		kind    notification.Kind
		subject string
		body    string
	}{
		{notification.KindLoanSubmitted, "Home loan application L1 received", "Tenure:         12 months"},
		{notification.KindLoanStatusChanged, "Home loan application L1 is now APPROVED", "changed to APPROVED"},
		{notification.KindInstallmentPaid, "Payment received for loan L1", "Transaction ID: TXN-9"},
		{notification.KindInstallmentDue, "EMI of 100000.00 due on 2025-02-28", "Installment ID: I1"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			subject, body, err := Render(tt.kind, payload)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, subject)
			assert.Contains(t, body, tt.body)
			assert.Contains(t, body, "Dear Asha")
		})
	}
}

func TestRender_OptionalSections(t *testing.T) {
	_, body, err := Render(notification.KindLoanStatusChanged, map[string]string{notification.KeyStatus: "REJECTED"})
	require.NoError(t, err)
	assert.NotContains(t, body, "Remarks")

	_, body, err = Render(notification.KindLoanStatusChanged, map[string]string{notification.KeyRemarks: "low income"})
	require.NoError(t, err)
	assert.Contains(t, body, "Remarks: low income")

	_, _, err = Render(notification.Kind("unknown"), nil)
	assert.Error(t, err)
}

func TestMailGateway_Sends(t *testing.T) {
	d := &fakeDialer{}
	gw := NewMailGatewayWithDialer(d, "loans@bank.example")

	err := gw.Notify(context.Background(), notification.KindInstallmentDue, "asha@example.com",
		map[string]string{notification.KeyAmount: "10.00", notification.KeyDueDate: "2025-02-01"})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"asha@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"loans@bank.example"}, m.GetHeader("From"))
	assert.Equal(t, []string{"EMI of 10.00 due on 2025-02-01"}, m.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err = m.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "text/plain")
}

func TestMailGateway_Errors(t *testing.T) {
	gw := NewMailGatewayWithDialer(&fakeDialer{err: errors.New("535 auth failed")}, "x@y")
	err := gw.Notify(context.Background(), notification.KindLoanSubmitted, "a@b", nil)
	assert.ErrorContains(t, err, "535 auth failed")

	err = gw.Notify(context.Background(), notification.KindLoanSubmitted, "", nil)
	assert.ErrorContains(t, err, "empty recipient")
}

func TestLogGateway(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	err := NewLogGateway(log).Notify(context.Background(), notification.KindLoanSubmitted, "a@b",
		map[string]string{notification.KeyLoanID: "L9"})
	require.NoError(t, err)

	e := hook.LastEntry()
	require.NotNil(t, e)
	assert.Equal(t, "Home loan application L9 received", e.Message)
	assert.Equal(t, "a@b", e.Data["recipient"])
	assert.Equal(t, "L9", e.Data["loan_id"])
}
