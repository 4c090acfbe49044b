package bootstrap

import (
	"context"
	"testing"
	"time"

	appconfig "github.com/kenobul/portfolio/internal/config"
	"github.com/kenobul/portfolio/internal/notify"
	"github.com/kenobul/portfolio/pkg/logging"
)

func TestBuildEmailSenderRequiresConfig(t *testing.T) {
	if _, err := BuildEmailSender(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildEmailSenderProviders(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	logger := logging.New("error")

	tests := []struct {
		provider string
		check    func(notify.EmailSender) bool
	}{
		{"", func(s notify.EmailSender) bool { _, ok := s.(*notify.BrevoSender); return ok }},
		{"brevo", func(s notify.EmailSender) bool { _, ok := s.(*notify.BrevoSender); return ok }},
		{"sendgrid", func(s notify.EmailSender) bool { _, ok := s.(*notify.SendGridSender); return ok }},
		{"ses", func(s notify.EmailSender) bool { _, ok := s.(*notify.SESSender); return ok }},
		{"stub", func(s notify.EmailSender) bool { _, ok := s.(*notify.StubEmailSender); return ok }},
	}
	for _, tt := range tests {
		cfg := &appconfig.Config{
			MailProvider:       tt.provider,
			AWSRegion:          "us-east-1",
			AWSAccessKeyID:     "test",
			AWSSecretAccessKey: "test",
		}
		sender, err := BuildEmailSender(context.Background(), cfg, logger)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.provider, err)
		}
		if !tt.check(sender) {
			t.Fatalf("%q: unexpected sender type %T", tt.provider, sender)
		}
	}
}

func TestBuildEmailSenderUnknownProvider(t *testing.T) {
	_, err := BuildEmailSender(context.Background(), &appconfig.Config{MailProvider: "carrier-pigeon"}, logging.New("error"))
	if err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestBuildDispatcherTemplateMode(t *testing.T) {
	cfg := &appconfig.Config{
		MailProvider:                "brevo",
		BrevoConfirmationTemplateID: "12",
		MailSendTimeout:             time.Second,
	}
	d, err := BuildDispatcher(notify.NewStubEmailSender(nil), cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.TemplateMode() {
		t.Fatalf("expected template mode when a confirmation template is configured")
	}

	cfg.MailProvider = "stub"
	d, err = BuildDispatcher(notify.NewStubEmailSender(nil), cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.TemplateMode() {
		t.Fatalf("expected fallback confirmation for the stub provider")
	}
}

func TestBuildDispatcherUnusableBrevoTemplate(t *testing.T) {
	logger := logging.New("error")
	sender := notify.NewBrevoSender(notify.BrevoConfig{APIKey: "key"}, logger)
	cfg := &appconfig.Config{
		Env:                         "development",
		MailProvider:                "brevo",
		BrevoConfirmationTemplateID: "welcome",
		MailSendTimeout:             time.Second,
	}

	d, err := BuildDispatcher(sender, cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error outside production: %v", err)
	}
	if d.TemplateMode() {
		t.Fatalf("expected fallback confirmation for a non-numeric template id")
	}

	cfg.Env = "production"
	if _, err := BuildDispatcher(sender, cfg, logger); err == nil {
		t.Fatalf("expected production startup to reject a non-numeric template id")
	}
}
