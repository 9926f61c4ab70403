package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"homeloan-backend/internal/domain/notification"
)

type mailTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustMail(subject, body string) mailTemplate {
	return mailTemplate{
		subject: template.Must(template.New("subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New("body").Option("missingkey=zero").Parse(body)),
	}
}

var mails = map[notification.Kind]mailTemplate{
	notification.KindLoanSubmitted: mustMail(
		`Home loan application {{.loan_id}} received`,
		`Dear {{.applicant_name}},

We have received your home loan application.

Application ID: {{.loan_id}}
Amount:         {{.amount}}
Tenure:         {{.tenure_months}} months
Interest rate:  {{.interest_rate}}% p.a.
{{- if .property_value}}
Property value: {{.property_value}}
{{- end}}
Status:         {{.status}}
Submitted at:   {{.submitted_at}}

We will notify you when the status changes.
`),
	notification.KindLoanStatusChanged: mustMail(
		`Home loan application {{.loan_id}} is now {{.status}}`,
		`Dear {{.applicant_name}},

The status of your home loan application {{.loan_id}} ({{.amount}}) changed to {{.status}}.
{{- if .remarks}}

Remarks: {{.remarks}}
{{- end}}
`),
	notification.KindInstallmentPaid: mustMail(
		`Payment received for loan {{.loan_id}}`,
		`Dear {{.applicant_name}},

We received your EMI payment.

Loan ID:        {{.loan_id}}
Installment ID: {{.installment_id}}
Due date:       {{.due_date}}
Amount:         {{.amount}}
Transaction ID: {{.transaction_id}}
`),
	notification.KindInstallmentDue: mustMail(
		`EMI of {{.amount}} due on {{.due_date}}`,
		`Dear {{.applicant_name}},

This is a reminder that the EMI for loan {{.loan_id}} is due.

Installment ID: {{.installment_id}}
Due date:       {{.due_date}}
Amount:         {{.amount}}
`),
}

// Render returns the subject and plain-text body of a notification mail.
func Render(kind notification.Kind, payload map[string]string) (string, string, error) {
	t, ok := mails[kind]
	if !ok {
		return "", "", fmt.Errorf("no mail template for %q", kind)
	}
	var subject, body bytes.Buffer
	if err := t.subject.Execute(&subject, payload); err != nil {
		return "", "", err
	}
	if err := t.body.Execute(&body, payload); err != nil {
		return "", "", err
	}
	return subject.String(), body.String(), nil
}

// Dialer is the part of *gomail.Dialer the gateway needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type MailGateway struct {
	dialer Dialer
	from   string
}

var _ notification.Gateway = (*MailGateway)(nil)

func NewMailGateway(host string, port int, user, pass, from string) *MailGateway {
	return NewMailGatewayWithDialer(gomail.NewDialer(host, port, user, pass), from)
}

func NewMailGatewayWithDialer(d Dialer, from string) *MailGateway {
	return &MailGateway{dialer: d, from: from}
}

func (g *MailGateway) Notify(ctx context.Context, kind notification.Kind, recipient string, payload map[string]string) error {
	if recipient == "" {
		return fmt.Errorf("notify %s: empty recipient", kind)
	}
	subject, body, err := Render(kind, payload)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", g.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := g.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s mail: %w", kind, err)
	}
	return nil
}

// LogGateway writes notifications to the log; used when SMTP is not configured.
type LogGateway struct {
	log logrus.FieldLogger
}

var _ notification.Gateway = (*LogGateway)(nil)

func NewLogGateway(log logrus.FieldLogger) *LogGateway { return &LogGateway{log: log} }

func (g *LogGateway) Notify(_ context.Context, kind notification.Kind, recipient string, payload map[string]string) error {
	subject, _, err := Render(kind, payload)
	if err != nil {
		return err
	}
	fields := logrus.Fields{"kind": kind, "recipient": recipient}
	for k, v := range payload {
		fields[k] = v
	}
	g.log.WithFields(fields).Info(subject)
	return nil
}
