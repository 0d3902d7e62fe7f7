package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends the order confirmation through SendGrid.
type Mailer struct {
	from   string
	client *sendgrid.Client
}

// NewMailer returns nil when no API key is configured.
func NewMailer(apiKey, from string) *Mailer {
	if apiKey == "" {
		return nil
	}
	return &Mailer{from: from, client: sendgrid.NewSendClient(apiKey)}
}

func (m *Mailer) Name() string { return "sendgrid" }

func (m *Mailer) OrderPlaced(ctx context.Context, ev OrderEvent) error {
	if ev.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("Order #%d confirmed", ev.OrderID)
	body := confirmationBody(ev)
	message := mail.NewSingleEmail(
		mail.NewEmail("VTU Store", m.from),
		subject,
		mail.NewEmail("", ev.Email),
		body,
		confirmationHTML(body),
	)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// confirmationHTML wraps the plain body; product names are admin-entered text.
func confirmationHTML(body string) string {
	return "<pre>" + html.EscapeString(body) + "</pre>"
}

func confirmationBody(ev OrderEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks! Your order #%d has been paid.\n\n", ev.OrderID)
	for _, it := range ev.Items {
		fmt.Fprintf(&b, "%d x %s @ ₦%s\n", it.Quantity, it.Name, it.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: ₦%s\nReference: %s\n", ev.Total.StringFixed(2), ev.Reference)
	return b.String()
}
