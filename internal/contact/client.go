package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/kenobul/portfolio/pkg/logging"
)

// Notification texts shown to the user.
const (
	MsgSending      = "Sending your message..."
	MsgSent         = "Message sent successfully!"
	MsgSendFailed   = "Failed to send message."
	MsgNetworkError = "Network error. Please try again later."
	MsgFixErrors    = "Please correct the form errors before submitting."
)

// ErrSubmitInFlight is returned when Submit is called while a request is pending.
var ErrSubmitInFlight = errors.New("contact: submission already in flight")

// Status is the form's submission state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome describes what a Submit call did.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeFailed
	OutcomeInvalid
	OutcomeDropped
	OutcomeBusy
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeFailed:
		return "failed"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeDropped:
		return "dropped"
	case OutcomeBusy:
		return "busy"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ResponseError is returned when the dispatch endpoint answers with a non-2xx status.
type ResponseError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("contact: endpoint returned status %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// FormClient holds one form session: the draft, its inline errors and the
// submission status. It allows a single in-flight submission at a time.
type FormClient struct {
	endpoint     string
	httpClient   *http.Client
	notifier     Notifier
	logger       *logging.Logger
	dismissAfter time.Duration

	mu           sync.Mutex
	draft        Submission
	fieldErrors  FieldErrors
	status       Status
	dismissTimer *time.Timer
}

// ClientOption customizes a FormClient.
type ClientOption func(*FormClient)

// WithHTTPClient sets the HTTP client used for submissions.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *FormClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithNotifier sets where notifications are shown.
func WithNotifier(n Notifier) ClientOption {
	return func(c *FormClient) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *logging.Logger) ClientOption {
	return func(c *FormClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAutoDismiss returns the form to idle d after each success or error.
func WithAutoDismiss(d time.Duration) ClientOption {
	return func(c *FormClient) {
		c.dismissAfter = d
	}
}

// NewFormClient creates a form session that posts to endpoint.
func NewFormClient(endpoint string, opts ...ClientOption) *FormClient {
	c := &FormClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		notifier:   NopNotifier{},
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the current submission status.
func (c *FormClient) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Draft returns a copy of the current draft.
func (c *FormClient) Draft() Submission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// FieldErrors returns a copy of the inline errors from the last validation.
func (c *FormClient) FieldErrors() FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.fieldErrors) == 0 {
		return nil
	}
	out := make(FieldErrors, len(c.fieldErrors))
	for k, v := range c.fieldErrors {
		out[k] = v
	}
	return out
}

// SetField updates one draft field and clears that field's inline error.
func (c *FormClient) SetField(field, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.draft.Set(field, value) {
		return false
	}
	delete(c.fieldErrors, field)
	return true
}

// SetDraft replaces the whole draft and clears inline errors.
func (c *FormClient) SetDraft(s Submission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = s
	c.fieldErrors = nil
}

// Dismiss moves a finished submission back to idle.
func (c *FormClient) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dismissLocked()
}

func (c *FormClient) dismissLocked() {
	if c.dismissTimer != nil {
		c.dismissTimer.Stop()
		c.dismissTimer = nil
	}
	if c.status == StatusSuccess || c.status == StatusError {
		c.status = StatusIdle
	}
}

// Submit validates the draft and, when it is valid and not a bot submission,
// posts it once to the endpoint.
func (c *FormClient) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.status == StatusLoading {
		c.mu.Unlock()
		return OutcomeBusy, ErrSubmitInFlight
	}

	draft := c.draft
	fieldErrs, err := draft.Validate()
	if errors.Is(err, ErrBotDetected) {
		c.mu.Unlock()
		c.logger.Debug("contact: honeypot triggered, dropping submission")
		return OutcomeDropped, nil
	}
	if !fieldErrs.Empty() {
		c.fieldErrors = fieldErrs
		c.mu.Unlock()
		c.notifier.Error("", MsgFixErrors)
		return OutcomeInvalid, fieldErrs
	}

	c.dismissLocked()
	c.fieldErrors = nil
	c.status = StatusLoading
	c.mu.Unlock()

	toastID := c.notifier.Loading(MsgSending)

	if err := c.post(ctx, draft); err != nil {
		var respErr *ResponseError
		msg := MsgNetworkError
		if errors.As(err, &respErr) {
			msg = MsgSendFailed
		}
		c.finish(StatusError, false)
		c.notifier.Error(toastID, msg)
		c.logger.Warn("contact: submission failed", "error", err)
		return OutcomeFailed, err
	}

	c.finish(StatusSuccess, true)
	c.notifier.Success(toastID, MsgSent)
	return OutcomeSent, nil
}

func (c *FormClient) finish(status Status, clearDraft bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
	if clearDraft {
		c.draft = Submission{}
	}
	if c.dismissAfter > 0 {
		c.dismissTimer = time.AfterFunc(c.dismissAfter, c.Dismiss)
	}
}

func (c *FormClient) post(ctx context.Context, s Submission) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("contact: encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("contact: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contact: send: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respErr := &ResponseError{StatusCode: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		respErr.Message = payload.Message
		respErr.Detail = payload.Error
	}
	return respErr
}
