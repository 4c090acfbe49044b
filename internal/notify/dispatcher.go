package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kenobul/portfolio/internal/contact"
	"github.com/kenobul/portfolio/pkg/logging"
	"github.com/osteele/liquid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var dispatchTracer = otel.Tracer("portfolio.internal.notify")

// ErrMissingFields is returned when name, email or message is absent.
var ErrMissingFields = errors.New("notify: missing required fields")

// Kind names one of the two emails produced for a submission.
type Kind string

const (
	KindNotification Kind = "notification"
	KindConfirmation Kind = "confirmation"
)

// Outcome is the aggregated result of a dispatch.
type Outcome string

const (
	OutcomeSent   Outcome = "sent"
	OutcomeBot    Outcome = "bot"
	OutcomeFailed Outcome = "failed"
)

// SendObserver records per-email delivery results. metrics.ContactMetrics implements it.
type SendObserver interface {
	ObserveSend(kind, status string, seconds float64)
}

// TemplateChecker is implemented by senders that can reject a confirmation
// template id before any email is sent.
type TemplateChecker interface {
	CheckTemplateID(id string) error
}

// DispatchConfig is built once at startup.
type DispatchConfig struct {
	SenderName             string // display name on the confirmation
	FormSenderName         string // display name on the owner notification
	OwnerEmail             string
	OwnerName              string
	ConfirmationTemplateID string
	SendTimeout            time.Duration
	// StrictTemplate makes NewDispatcher fail on a template id the sender
	// rejects. Otherwise the fallback confirmation is used.
	StrictTemplate bool
}

// Attempt is one provider call.
type Attempt struct {
	Kind     Kind
	Message  EmailMessage
	Err      error
	Duration time.Duration
}

// DispatchResult aggregates both attempts for one submission.
type DispatchResult struct {
	ID           string
	Outcome      Outcome
	Notification Attempt
	Confirmation Attempt
}

// Err returns the first failed attempt's error, notification first.
func (r DispatchResult) Err() error {
	if r.Notification.Err != nil {
		return r.Notification.Err
	}
	return r.Confirmation.Err
}

// Dispatcher turns a submission into an owner notification and a submitter
// confirmation and sends both concurrently.
type Dispatcher struct {
	sender    EmailSender
	cfg       DispatchConfig
	templates *emailTemplates
	validate  *validator.Validate
	observer  SendObserver
	logger    *logging.Logger
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithObserver records send results.
func WithObserver(o SendObserver) DispatcherOption {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// NewDispatcher creates a dispatcher for the given sender and configuration.
func NewDispatcher(sender EmailSender, cfg DispatchConfig, logger *logging.Logger, opts ...DispatcherOption) (*Dispatcher, error) {
	if sender == nil {
		return nil, fmt.Errorf("notify: email sender is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.FormSenderName == "" {
		cfg.FormSenderName = "Portfolio Contact Form"
	}
	if cfg.ConfirmationTemplateID != "" {
		if tc, ok := sender.(TemplateChecker); ok {
			if err := tc.CheckTemplateID(cfg.ConfirmationTemplateID); err != nil {
				if cfg.StrictTemplate {
					return nil, fmt.Errorf("notify: confirmation template: %w", err)
				}
				logger.Warn("notify: confirmation template id rejected, sending fallback confirmation",
					"template_id", cfg.ConfirmationTemplateID,
					"error", err,
				)
				cfg.ConfirmationTemplateID = ""
			}
		}
	}
	templates, err := parseEmailTemplates()
	if err != nil {
		return nil, err
	}
	d := &Dispatcher{
		sender:    sender,
		cfg:       cfg,
		templates: templates,
		validate:  validator.New(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// TemplateMode reports whether confirmations use a provider template.
func (d *Dispatcher) TemplateMode() bool {
	return d.cfg.ConfirmationTemplateID != ""
}

// Dispatch sends the notification and confirmation for sub. Bot submissions
// return OutcomeBot without contacting the provider. Both emails are always
// attempted; the returned error is the first failure.
func (d *Dispatcher) Dispatch(ctx context.Context, sub contact.Submission) (DispatchResult, error) {
	result := DispatchResult{ID: uuid.NewString()}
	logger := d.logger.With("dispatch_id", result.ID)

	if sub.IsBot() {
		logger.Info("notify: bot attempt blocked")
		result.Outcome = OutcomeBot
		return result, nil
	}
	if err := d.checkRequired(sub); err != nil {
		return result, err
	}
	if r, ok := d.sender.(readiness); ok {
		if err := r.Ready(); err != nil {
			logger.Error("notify: email sender not ready", "error", err)
			return result, err
		}
	}

	notification, err := d.buildNotification(sub)
	if err != nil {
		return result, err
	}
	confirmation, err := d.buildConfirmation(sub)
	if err != nil {
		return result, err
	}
	result.Notification = Attempt{Kind: KindNotification, Message: notification}
	result.Confirmation = Attempt{Kind: KindConfirmation, Message: confirmation}

	ctx, span := dispatchTracer.Start(ctx, "notify.dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("portfolio.dispatch_id", result.ID),
		attribute.Bool("portfolio.template_mode", d.TemplateMode()),
	)

	var wg sync.WaitGroup
	for _, attempt := range []*Attempt{&result.Notification, &result.Confirmation} {
		wg.Add(1)
		go func(a *Attempt) {
			defer wg.Done()
			d.send(ctx, a)
		}(attempt)
	}
	wg.Wait()

	if err := result.Err(); err != nil {
		result.Outcome = OutcomeFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, "email dispatch failed")
		for _, a := range []Attempt{result.Notification, result.Confirmation} {
			if a.Err == nil {
				continue
			}
			logger.Error("notify: email send failed",
				"kind", string(a.Kind),
				"error", a.Err,
				"to", a.Message.To,
				"subject", a.Message.Subject,
				"template_id", a.Message.TemplateID,
			)
		}
		return result, err
	}

	result.Outcome = OutcomeSent
	logger.Info("notify: contact emails sent", "to", sub.Email)
	return result, nil
}

// send performs one provider call under its own timeout. The call is detached
// from the caller's cancellation so the sibling send is always attempted.
func (d *Dispatcher) send(parent context.Context, a *Attempt) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), d.cfg.SendTimeout)
	defer cancel()

	ctx, span := dispatchTracer.Start(ctx, "notify.send."+string(a.Kind), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			a.Err = fmt.Errorf("notify: %s send panicked: %v", a.Kind, rec)
		}
		a.Duration = time.Since(start)
		status := "ok"
		if a.Err != nil {
			status = "error"
			span.RecordError(a.Err)
			span.SetStatus(codes.Error, a.Err.Error())
		}
		if d.observer != nil {
			d.observer.ObserveSend(string(a.Kind), status, a.Duration.Seconds())
		}
	}()

	a.Err = d.sender.Send(ctx, a.Message)
	if errors.Is(a.Err, context.DeadlineExceeded) {
		a.Err = fmt.Errorf("notify: %s send timed out after %s: %w", a.Kind, d.cfg.SendTimeout, a.Err)
	}
}

func (d *Dispatcher) checkRequired(sub contact.Submission) error {
	err := d.validate.Struct(sub)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(fields, ", "))
	}
	return fmt.Errorf("notify: validate submission: %w", err)
}

func (d *Dispatcher) buildNotification(sub contact.Submission) (EmailMessage, error) {
	subject := sub.Subject
	if subject == "" {
		subject = defaultSubject
	}
	bindings := liquid.Bindings{
		"name":    sub.Name,
		"email":   sub.Email,
		"phone":   orNA(sub.Phone),
		"subject": orNA(sub.Subject),
		"message": sub.Message,
	}
	htmlBody, err := render(d.templates.notificationHTML, bindings)
	if err != nil {
		return EmailMessage{}, err
	}
	textBody, err := render(d.templates.notificationText, bindings)
	if err != nil {
		return EmailMessage{}, err
	}
	return EmailMessage{
		FromName: d.cfg.FormSenderName,
		To:       d.cfg.OwnerEmail,
		ToName:   d.cfg.OwnerName,
		Subject:  notificationPrefix + subject,
		Body:     textBody,
		HTML:     htmlBody,
	}, nil
}

func (d *Dispatcher) buildConfirmation(sub contact.Submission) (EmailMessage, error) {
	msg := EmailMessage{
		FromName: d.cfg.SenderName,
		To:       sub.Email,
		ToName:   sub.Name,
	}
	if d.TemplateMode() {
		msg.TemplateID = d.cfg.ConfirmationTemplateID
		msg.TemplateParams = map[string]string{confirmationParam: sub.Name}
		return msg, nil
	}
	htmlBody, err := render(d.templates.confirmationHTML, liquid.Bindings{
		"name":  sub.Name,
		"owner": d.cfg.OwnerName,
	})
	if err != nil {
		return EmailMessage{}, err
	}
	msg.Subject = confirmationTitle
	msg.HTML = htmlBody
	return msg, nil
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
