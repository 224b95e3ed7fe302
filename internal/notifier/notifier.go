package notifier

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/email"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	"github.com/medisync/hms-api/pkg/logger"
	"github.com/medisync/hms-api/pkg/messaging"
)

// Notifier consumes broker events and sends the matching patient emails:
// a confirmation when an appointment is booked and a receipt when an
// invoice is paid. Failures are logged, never retried; email is best effort.
type Notifier struct {
	broker       messaging.Broker
	email        email.Service
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	users        repository.UserRepository
	logger       *logger.Logger
}

func New(
	broker messaging.Broker,
	emailSvc email.Service,
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	users repository.UserRepository,
	logger *logger.Logger,
) *Notifier {
	return &Notifier{
		broker:       broker,
		email:        emailSvc,
		appointments: appointments,
		patients:     patients,
		users:        users,
		logger:       logger,
	}
}

func (n *Notifier) Start(ctx context.Context) error {
	appointments, err := n.broker.Subscribe(ctx, model.EventAppointmentCreated)
	if err != nil {
		return err
	}
	invoices, err := n.broker.Subscribe(ctx, model.EventInvoiceStatusChanged)
	if err != nil {
		return err
	}

	n.logger.Info("starting notifier")
	for {
		select {
		case <-ctx.Done():
			n.logger.Info("shutting down notifier")
			return nil
		case raw, ok := <-appointments:
			if !ok {
				return nil
			}
			n.handleAppointmentCreated(ctx, raw)
		case raw, ok := <-invoices:
			if !ok {
				return nil
			}
			n.handleInvoiceStatusChanged(ctx, raw)
		}
	}
}

func (n *Notifier) handleAppointmentCreated(ctx context.Context, raw []byte) {
	var apt model.Appointment
	if err := decodePayload(raw, &apt); err != nil {
		n.logger.Error(err, "failed to decode appointment event")
		return
	}

	to, err := n.patientEmail(ctx, apt.PatientID)
	if err != nil {
		n.logger.Error(err, "failed to resolve patient email")
		return
	}
	if err := n.email.SendAppointmentConfirmation(ctx, to, &apt); err != nil {
		n.logger.Error(err, "failed to send appointment confirmation")
	}
}

func (n *Notifier) handleInvoiceStatusChanged(ctx context.Context, raw []byte) {
	var invoice model.Invoice
	if err := decodePayload(raw, &invoice); err != nil {
		n.logger.Error(err, "failed to decode invoice event")
		return
	}
	if invoice.Status != model.InvoiceStatusPaid {
		return
	}

	apt, err := n.appointments.Get(ctx, invoice.AppointmentID)
	if err != nil {
		n.logger.Error(err, "failed to load appointment for invoice")
		return
	}
	to, err := n.patientEmail(ctx, apt.PatientID)
	if err != nil {
		n.logger.Error(err, "failed to resolve patient email")
		return
	}
	if err := n.email.SendInvoiceReceipt(ctx, to, &invoice); err != nil {
		n.logger.Error(err, "failed to send invoice receipt")
	}
}

func (n *Notifier) patientEmail(ctx context.Context, patientID uuid.UUID) (string, error) {
	patient, err := n.patients.Get(ctx, patientID)
	if err != nil {
		return "", err
	}
	user, err := n.users.Get(ctx, patient.UserID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// decodePayload unwraps the broker envelope and decodes the inner payload.
func decodePayload(raw []byte, out interface{}) error {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return err
	}
	return json.Unmarshal(msg.Payload, out)
}
