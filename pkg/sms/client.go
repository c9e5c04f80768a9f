package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/Alijeyrad/oilcall_backend/config"
)

var ErrMissingRecipient = errors.New("phone number is required")

// Client sends templated SMS via sms.ir. A disabled client no-ops.
type Client struct {
	client     *smsir.Client
	enabled    bool
	templateID string
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}
	if cfg.SMSIR.ReminderTemplateID == "" {
		return nil, fmt.Errorf("sms.ir reminder template ID required when SMS enabled")
	}

	client := smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey)

	return &Client{
		client:     client,
		enabled:    true,
		templateID: cfg.SMSIR.ReminderTemplateID,
	}, nil
}

// Reminder holds the template parameters of an appointment reminder. The
// template must declare "name", "slot" and "job".
type Reminder struct {
	Name      string
	TimeSlot  string
	JobNumber int64
}

// SendReminder sends today's appointment reminder to phoneNumber (E.164).
func (c *Client) SendReminder(ctx context.Context, phoneNumber string, r Reminder) error {
	if !c.enabled {
		return nil
	}
	if phoneNumber == "" {
		return ErrMissingRecipient
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     phoneNumber,
		TemplateID: c.templateID,
		Parameters: []smsir.UltraFastParameter{
			{Key: "name", Value: r.Name},
			{Key: "slot", Value: r.TimeSlot},
			{Key: "job", Value: fmt.Sprintf("%d", r.JobNumber)},
		},
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
