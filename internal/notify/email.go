package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kenobul/portfolio/pkg/logging"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrMissingAPIKey is returned by senders constructed without credentials.
var ErrMissingAPIKey = errors.New("notify: email provider API key is not configured")

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (Brevo, SendGrid, SES) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// readiness is implemented by senders that can report a configuration problem
// before any message is attempted.
type readiness interface {
	Ready() error
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	FromName string // overrides the sender display name when set
	To       string
	ToName   string
	Subject  string
	Body     string // Plain text body
	HTML     string // Optional HTML body

	// TemplateID selects a provider-side template; Subject and bodies are then
	// owned by the template and TemplateParams fill its variables.
	TemplateID     string
	TemplateParams map[string]string
}

// UsesTemplate reports whether the message is rendered by the provider.
func (m EmailMessage) UsesTemplate() bool {
	return m.TemplateID != ""
}

// ProviderError is a non-success answer from an email provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("notify: %s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("notify: %s rejected message: %s", e.Provider, e.Message)
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	BaseURL   string // optional, defaults to https://api.sendgrid.com
}

// NewSendGridSender creates a new SendGrid email sender. Without an API key the
// sender is still returned but every send fails with ErrMissingAPIKey.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Portfolio"
	}
	s := &SendGridSender{
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
	if cfg.APIKey != "" {
		s.client = sendgrid.NewSendClient(cfg.APIKey)
		if cfg.BaseURL != "" {
			s.client.Request.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v3/mail/send"
		}
	}
	return s
}

// Ready reports whether the sender has credentials.
func (s *SendGridSender) Ready() error {
	if s.client == nil {
		return ErrMissingAPIKey
	}
	return nil
}

// Send sends an email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := s.Ready(); err != nil {
		return err
	}

	fromName := s.fromName
	if msg.FromName != "" {
		fromName = msg.FromName
	}
	from := mail.NewEmail(fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	var message *mail.SGMailV3
	if msg.UsesTemplate() {
		message = mail.NewV3Mail()
		message.SetFrom(from)
		message.SetTemplateID(msg.TemplateID)
		p := mail.NewPersonalization()
		p.AddTos(to)
		for k, v := range msg.TemplateParams {
			p.SetDynamicTemplateData(k, v)
		}
		message.AddPersonalizations(p)
	} else if msg.Body != "" {
		message = mail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.HTML)
	} else {
		message = mail.NewSingleEmail(from, msg.Subject, to, msg.HTML, msg.HTML)
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}

	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return &ProviderError{
			Provider:   "sendgrid",
			StatusCode: response.StatusCode,
			Message:    sendGridErrorMessage(response.Body),
		}
	}

	s.logger.Info("email sent via sendgrid", "to", msg.To, "subject", msg.Subject, "status", response.StatusCode)
	return nil
}

func sendGridErrorMessage(body string) string {
	var payload struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal([]byte(body), &payload) == nil && len(payload.Errors) > 0 && payload.Errors[0].Message != "" {
		return payload.Errors[0].Message
	}
	return "SendGrid API error"
}

// StubEmailSender is a no-op sender for local development.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender creates a stub email sender that logs but doesn't send.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send logs the email but doesn't actually send it.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("stub email sender: would send email", "to", msg.To, "subject", msg.Subject, "template_id", msg.TemplateID)
	return nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
)
