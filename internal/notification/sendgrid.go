package notification

import (
	"fmt"
	"net/http"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/report"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// EmailNotifier emails the finance team on workflow transitions. Sends run in
// a goroutine and failures are only logged: notification is best effort and
// never fails the transition that triggered it.
type EmailNotifier struct {
	key    string
	from   *sgmail.Email
	to     []string
	logger *zap.Logger
}

// NewEmailNotifier creates a SendGrid-backed notifier.
func NewEmailNotifier(key, fromName, fromEmail string, to []string, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		key:    key,
		from:   sgmail.NewEmail(fromName, fromEmail),
		to:     to,
		logger: logger,
	}
}

// NotifyTransition sends a transition summary to the configured recipients.
func (n *EmailNotifier) NotifyTransition(expense *models.Expense, entry *models.HistoryEntry) {
	if len(n.to) == 0 {
		return
	}

	subject := fmt.Sprintf("[CI %d] %s", expense.NumeroCI, entry.Action)
	body := fmt.Sprintf(
		"CI %d (%s, R$ %s) moved from %s to %s by %s.",
		expense.NumeroCI,
		expense.Description,
		report.FormatAmount(expense.AmountCents),
		entry.PreviousStatus,
		entry.NewStatus,
		entry.ActorName,
	)
	if entry.Justification != "" {
		body += "\n\nJustification: " + entry.Justification
	}

	go n.send(subject, body, expense.NumeroCI)
}

func (n *EmailNotifier) send(subject, body string, numeroCI int64) {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	for _, addr := range n.to {
		p.AddTos(sgmail.NewEmail("", addr))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(n.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))

	req := sendgrid.GetRequest(n.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		n.logger.Warn("Failed to send notification email",
			zap.Int64("numero_ci", numeroCI),
			zap.Error(err))
		return
	}
	if res.StatusCode >= http.StatusBadRequest {
		n.logger.Warn("Notification email rejected",
			zap.Int64("numero_ci", numeroCI),
			zap.Int("status", res.StatusCode),
			zap.String("body", res.Body))
	}
}
