package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ephremt/travelbook/config"
	"github.com/ephremt/travelbook/internal/kafka"
)

// Sender delivers the payment confirmation message for a settled booking.
type Sender struct {
	smtpAddr string
	from     string
}

func NewSender(cfg config.EmailConfig) *Sender {
	return &Sender{smtpAddr: cfg.SMTPAddr, from: cfg.From}
}

func (s *Sender) Send(ctx context.Context, event kafka.PaymentEvent) error {
	subject := fmt.Sprintf("Payment confirmed for booking #%d", event.BookingID)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour payment of %.2f %s for %s (%s to %s) has been received. Your booking is confirmed.\n\nReference: %s\n",
		event.UserName,
		event.Amount,
		event.Currency,
		event.ListingTitle,
		event.StartDate.Format("2006-01-02"),
		event.EndDate.Format("2006-01-02"),
		event.Reference,
	)

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + event.Email,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(s.smtpAddr, nil, s.from, []string{event.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("send confirmation email to %s: %w", event.Email, err)
	}
	return nil
}
