package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kenobul/portfolio/pkg/logging"
	"github.com/sendgrid/rest"
)

const brevoSendPath = "/v3/smtp/email"

// BrevoSender sends emails through the Brevo transactional email API.
type BrevoSender struct {
	client    *rest.Client
	apiKey    string
	baseURL   string
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// BrevoConfig holds configuration for Brevo.
type BrevoConfig struct {
	APIKey     string
	BaseURL    string // defaults to https://api.brevo.com
	FromEmail  string
	FromName   string
	HTTPClient *http.Client
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoAddress      `json:"sender"`
	To          []brevoAddress    `json:"to"`
	Subject     string            `json:"subject,omitempty"`
	HTMLContent string            `json:"htmlContent,omitempty"`
	TextContent string            `json:"textContent,omitempty"`
	TemplateID  int64             `json:"templateId,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
}

// NewBrevoSender creates a Brevo sender. A missing API key is reported on the
// first send attempt rather than at construction.
func NewBrevoSender(cfg BrevoConfig, logger *logging.Logger) *BrevoSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.brevo.com"
	}
	if cfg.FromName == "" {
		cfg.FromName = "Portfolio"
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &BrevoSender{
		client:    &rest.Client{HTTPClient: hc},
		apiKey:    cfg.APIKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Ready reports whether the sender has credentials.
func (s *BrevoSender) Ready() error {
	if s.apiKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Send sends an email via Brevo.
func (s *BrevoSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := s.Ready(); err != nil {
		return err
	}

	payload, err := s.buildRequest(msg)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: encode brevo payload: %w", err)
	}

	response, err := s.client.SendWithContext(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: s.baseURL + brevoSendPath,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"api-key":      s.apiKey,
		},
		Body: body,
	})
	if err != nil {
		s.logger.Error("brevo send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: brevo send failed: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		s.logger.Error("brevo returned error status", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return &ProviderError{
			Provider:   "brevo",
			StatusCode: response.StatusCode,
			Message:    brevoErrorMessage(response.Body),
		}
	}

	s.logger.Info("email sent via brevo", "to", msg.To, "subject", msg.Subject, "status", response.StatusCode)
	return nil
}

func (s *BrevoSender) buildRequest(msg EmailMessage) (brevoRequest, error) {
	fromName := s.fromName
	if msg.FromName != "" {
		fromName = msg.FromName
	}
	req := brevoRequest{
		Sender: brevoAddress{Name: fromName, Email: s.fromEmail},
		To:     []brevoAddress{{Name: msg.ToName, Email: msg.To}},
	}
	if msg.UsesTemplate() {
		id, err := parseBrevoTemplateID(msg.TemplateID)
		if err != nil {
			return brevoRequest{}, err
		}
		req.TemplateID = id
		req.Params = msg.TemplateParams
		return req, nil
	}
	req.Subject = msg.Subject
	req.HTMLContent = msg.HTML
	req.TextContent = msg.Body
	return req, nil
}

// CheckTemplateID reports whether id is usable as a Brevo template id.
func (s *BrevoSender) CheckTemplateID(id string) error {
	_, err := parseBrevoTemplateID(id)
	return err
}

func parseBrevoTemplateID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("notify: brevo template id %q must be a positive integer", raw)
	}
	return id, nil
}

func brevoErrorMessage(body string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(body), &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return "Brevo API error"
}

var (
	_ EmailSender     = (*BrevoSender)(nil)
	_ TemplateChecker = (*BrevoSender)(nil)
)
