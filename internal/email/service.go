package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/medisync/hms-api/internal/config"
	"github.com/medisync/hms-api/internal/model"
)

type Service interface {
	SendAppointmentConfirmation(ctx context.Context, to string, apt *model.Appointment) error
	SendInvoiceReceipt(ctx context.Context, to string, invoice *model.Invoice) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

// NewService returns an SMTP-backed sender, or a no-op one when SMTP is
// disabled in config so the rest of the system never has to care.
func NewService(cfg config.SMTPConfig) Service {
	if !cfg.Enabled {
		return &noopService{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendAppointmentConfirmation(ctx context.Context, to string, apt *model.Appointment) error {
	body := fmt.Sprintf(
		"<p>Your appointment has been booked.</p><p>From: %s<br>To: %s</p>",
		apt.StartTime.Format("Mon, 02 Jan 2006 15:04"),
		apt.EndTime.Format("Mon, 02 Jan 2006 15:04"),
	)
	return s.send(ctx, to, "Appointment confirmed", body)
}

func (s *smtpService) SendInvoiceReceipt(ctx context.Context, to string, invoice *model.Invoice) error {
	body := fmt.Sprintf(
		"<p>Invoice %s is now %s.</p><p>Total: %s</p>",
		invoice.ID, invoice.Status, invoice.TotalAmount.StringFixed(2),
	)
	return s.send(ctx, to, fmt.Sprintf("Invoice %s", invoice.Status), body)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	return s.send(ctx, to, subject, content)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

type noopService struct{}

func (n *noopService) SendAppointmentConfirmation(context.Context, string, *model.Appointment) error {
	return nil
}

func (n *noopService) SendInvoiceReceipt(context.Context, string, *model.Invoice) error {
	return nil
}

func (n *noopService) SendCustom(context.Context, string, string, string) error {
	return nil
}
