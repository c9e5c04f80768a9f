package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alijeyrad/oilcall_backend/pkg/email"
	"github.com/Alijeyrad/oilcall_backend/pkg/sms"
)

type mailer interface {
	Send(ctx context.Context, m email.Message) error
}

// EmailChannel sends one templated message per event to the customer.
type EmailChannel struct {
	mail    mailer
	appName string
	baseURL string
}

func NewEmailChannel(c *email.Client) *EmailChannel {
	appName, baseURL := c.Branding()
	return &EmailChannel{mail: c, appName: appName, baseURL: baseURL}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Handles(event Event) bool { return event.Valid() }

func (c *EmailChannel) Deliver(ctx context.Context, event Event, p Payload) error {
	a := p.Appointment
	if a.CustomerEmail == "" {
		return ErrNoRecipient
	}
	data := email.AppointmentEmailData{
		CustomerName:  a.CustomerName,
		Email:         a.CustomerEmail,
		JobNumber:     a.JobNumber,
		Date:          a.Date,
		TimeSlot:      a.TimeSlot,
		ServiceType:   a.ServiceType,
		Address:       a.Address,
		MechanicName:  p.MechanicName,
		AppName:       c.appName,
		BaseURL:       c.baseURL,
		AppointmentID: a.ID.String(),
	}

	var msg email.Message
	switch event {
	case EventAppointmentCreated:
		msg = email.BuildBookingConfirmationEmail(data)
	case EventAppointmentAssigned:
		msg = email.BuildAssignedEmail(data)
	case EventAppointmentCancelled:
		msg = email.BuildCancellationEmail(data)
	case EventJobCompleted:
		msg = email.BuildJobCompletedEmail(data)
	case EventAppointmentReminder:
		msg = email.BuildReminderEmail(data)
	default:
		return ErrUnknownEvent
	}

	err := c.mail.Send(ctx, msg)
	if errors.Is(err, email.ErrDisabled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("send %s email: %w", event, err)
	}
	return nil
}

type texter interface {
	SendReminder(ctx context.Context, phone string, r sms.Reminder) error
}

// SMSChannel only carries same-day reminders.
type SMSChannel struct {
	sms texter
}

func NewSMSChannel(c *sms.Client) *SMSChannel {
	return &SMSChannel{sms: c}
}

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Handles(event Event) bool { return event == EventAppointmentReminder }

func (c *SMSChannel) Deliver(ctx context.Context, event Event, p Payload) error {
	a := p.Appointment
	if a.CustomerPhone == "" {
		return ErrNoRecipient
	}
	err := c.sms.SendReminder(ctx, a.CustomerPhone, sms.Reminder{
		Name:      a.CustomerName,
		TimeSlot:  a.TimeSlot,
		JobNumber: a.JobNumber,
	})
	if err != nil {
		return fmt.Errorf("send reminder sms: %w", err)
	}
	return nil
}
