package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
	"github.com/kenobul/portfolio/pkg/logging"
)

// SESAPI is the slice of the SES v2 client used by SESSender.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends emails via AWS SES.
type SESSender struct {
	client    SESAPI
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	FromEmail string
	FromName  string
}

// NewSESSender creates a new AWS SES email sender.
func NewSESSender(client SESAPI, cfg SESConfig, logger *logging.Logger) *SESSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Portfolio"
	}
	return &SESSender{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Ready reports whether an SES client is available.
func (s *SESSender) Ready() error {
	if s.client == nil {
		return fmt.Errorf("notify: SES client not configured")
	}
	return nil
}

// Send sends an email via AWS SES.
func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := s.Ready(); err != nil {
		return err
	}

	fromName := s.fromName
	if msg.FromName != "" {
		fromName = msg.FromName
	}
	fromAddress := fmt.Sprintf("%s <%s>", fromName, s.fromEmail)

	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", msg.ToName, msg.To)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
	}

	if msg.UsesTemplate() {
		data, err := json.Marshal(msg.TemplateParams)
		if err != nil {
			return fmt.Errorf("notify: encode SES template data: %w", err)
		}
		input.Content = &types.EmailContent{
			Template: &types.Template{
				TemplateName: aws.String(msg.TemplateID),
				TemplateData: aws.String(string(data)),
			},
		}
	} else {
		input.Content = &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(msg.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{},
			},
		}
		if msg.Body != "" {
			input.Content.Simple.Body.Text = &types.Content{
				Data:    aws.String(msg.Body),
				Charset: aws.String("UTF-8"),
			}
		}
		if msg.HTML != "" {
			input.Content.Simple.Body.Html = &types.Content{
				Data:    aws.String(msg.HTML),
				Charset: aws.String("UTF-8"),
			}
		}
	}

	output, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("SES send failed", "error", err, "to", msg.To)
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return &ProviderError{Provider: "ses", Message: apiErr.ErrorMessage()}
		}
		return fmt.Errorf("notify: SES send failed: %w", err)
	}

	s.logger.Info("email sent via SES", "to", msg.To, "subject", msg.Subject, "message_id", aws.ToString(output.MessageId))
	return nil
}

// Ensure interface compliance
var _ EmailSender = (*SESSender)(nil)
