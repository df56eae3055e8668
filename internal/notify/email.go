package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"rentaldesk-backend/internal/logger"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailNotifier mails the digest to the branch alert address through SendGrid.
type EmailNotifier struct {
	client    mailSender
	fromEmail string
	fromName  string
}

func NewEmailNotifier(apiKey, fromEmail, fromName string) *EmailNotifier {
	return &EmailNotifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (n *EmailNotifier) Channel() string { return "email" }

func (n *EmailNotifier) NotifyLateOrders(ctx context.Context, digest LateOrderDigest) error {
	if digest.Branch.AlertEmail == "" {
		logger.Debug("Branch has no alert email, skipping", "branch_id", digest.Branch.ID)
		return nil
	}
	if len(digest.Orders) == 0 {
		return nil
	}

	subject, plain, htmlBody := renderDigest(digest)
	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(digest.Branch.Name, digest.Branch.AlertEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, htmlBody)

	logger.ExternalServiceCall("SendGrid", "Send", "branch_id", digest.Branch.ID, "orders", len(digest.Orders))
	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return fmt.Errorf("failed to send late order email: %w", err)
	}
	if resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
		logger.ExternalServiceResult("SendGrid", "Send", err)
		return err
	}
	logger.ExternalServiceResult("SendGrid", "Send", nil)
	return nil
}

func renderDigest(d LateOrderDigest) (subject, plain, htmlBody string) {
	orders := d.Sorted()
	subject = fmt.Sprintf("%d late order(s) at %s", len(orders), d.Branch.Name)

	var p, h strings.Builder
	fmt.Fprintf(&p, "The following orders at %s are past their return date:\n\n", d.Branch.Name)
	h.WriteString("<html><body>")
	fmt.Fprintf(&h, "<h2>Late orders at %s</h2><table>", html.EscapeString(d.Branch.Name))
	h.WriteString("<tr><th>Invoice</th><th>Customer</th><th>Phone</th><th>Due</th><th>Days late</th></tr>")
	for _, o := range orders {
		days := d.DaysOverdue(o)
		fmt.Fprintf(&p, "- %s  %s (%s)  due %s, %d day(s) late\n",
			o.InvoiceNumber, o.Customer.Name, o.Customer.Phone, o.EndTimestamp(), days)
		fmt.Fprintf(&h, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>",
			html.EscapeString(o.InvoiceNumber),
			html.EscapeString(o.Customer.Name),
			html.EscapeString(o.Customer.Phone),
			html.EscapeString(o.EndTimestamp()),
			days)
	}
	h.WriteString("</table></body></html>")
	return subject, p.String(), h.String()
}
