package bootstrap

import (
	"context"
	"fmt"

	"github.com/kenobul/portfolio/cmd/mainconfig"
	appconfig "github.com/kenobul/portfolio/internal/config"
	"github.com/kenobul/portfolio/internal/notify"
	"github.com/kenobul/portfolio/pkg/logging"
)

// BuildEmailSender selects the provider named by MAIL_PROVIDER.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.MailProvider {
	case "", "brevo":
		if cfg.BrevoAPIKey == "" {
			logger.Warn("BREVO_API_KEY is not set; contact emails will fail until it is configured")
		}
		return notify.NewBrevoSender(notify.BrevoConfig{
			APIKey:    cfg.BrevoAPIKey,
			BaseURL:   cfg.BrevoBaseURL,
			FromEmail: cfg.MailSenderEmail,
			FromName:  cfg.MailSenderName,
		}, logger), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			logger.Warn("SENDGRID_API_KEY is not set; contact emails will fail until it is configured")
		}
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.MailSenderEmail,
			FromName:  cfg.MailSenderName,
		}, logger), nil
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		return notify.NewSESSender(mainconfig.NewSESClient(awsCfg, cfg), notify.SESConfig{
			FromEmail: cfg.MailSenderEmail,
			FromName:  cfg.MailSenderName,
		}, logger), nil
	case "stub":
		logger.Warn("using stub email sender; no email will be delivered")
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown MAIL_PROVIDER %q", cfg.MailProvider)
	}
}

// BuildDispatcher wires the sender into a contact dispatcher. Production
// deployments refuse to start with a template id the provider cannot use.
func BuildDispatcher(sender notify.EmailSender, cfg *appconfig.Config, logger *logging.Logger, opts ...notify.DispatcherOption) (*notify.Dispatcher, error) {
	return notify.NewDispatcher(sender, notify.DispatchConfig{
		SenderName:             cfg.MailSenderName,
		FormSenderName:         cfg.MailFormSenderName,
		OwnerEmail:             cfg.MailOwnerEmail,
		OwnerName:              cfg.MailOwnerName,
		ConfirmationTemplateID: cfg.ConfirmationTemplateID(),
		SendTimeout:            cfg.MailSendTimeout,
		StrictTemplate:         cfg.IsProduction(),
	}, logger, opts...)
}
