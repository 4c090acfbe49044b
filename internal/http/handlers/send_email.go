package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/kenobul/portfolio/internal/contact"
	"github.com/kenobul/portfolio/internal/notify"
	"github.com/kenobul/portfolio/internal/observability/metrics"
	"github.com/kenobul/portfolio/pkg/logging"
)

// Response messages returned by POST /api/send-email.
const (
	MsgOK             = "OK"
	MsgMissingFields  = "Missing required fields"
	MsgSent           = "Emails sent successfully"
	MsgDeliveryFailed = "Email sending failed for one or more recipients."
	MsgServerError    = "Server error during email process"
)

const maxContactBody = 64 << 10

// ContactDispatcher sends the emails for one submission.
type ContactDispatcher interface {
	Dispatch(ctx context.Context, sub contact.Submission) (notify.DispatchResult, error)
}

// SendEmailResponse is the body of every send-email reply.
type SendEmailResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// SendEmailHandler serves POST /api/send-email.
type SendEmailHandler struct {
	dispatcher ContactDispatcher
	metrics    *metrics.ContactMetrics
	logger     *logging.Logger
}

// NewSendEmailHandler creates the contact endpoint. metrics may be nil.
func NewSendEmailHandler(dispatcher ContactDispatcher, m *metrics.ContactMetrics, logger *logging.Logger) *SendEmailHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SendEmailHandler{
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

// ServeHTTP decodes the submission, dispatches both emails and maps the
// outcome to a status code.
func (h *SendEmailHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := http.StatusInternalServerError
	outcome := "error"
	w := middleware.NewWrapResponseWriter(rw, r.ProtoMajor)
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("send-email handler panicked", "panic", fmt.Sprint(rec))
			outcome = "error"
			if written := w.Status(); written != 0 {
				// Headers are already on the wire.
				status = written
			} else {
				status = http.StatusInternalServerError
				writeJSON(w, status, SendEmailResponse{Message: MsgServerError, Error: "internal error"})
			}
		}
		h.metrics.ObserveSubmission(outcome)
		h.metrics.ObserveRequestLatency(strconv.Itoa(status), time.Since(start).Seconds())
	}()

	var sub contact.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody)).Decode(&sub); err != nil {
		h.logger.Warn("send-email: invalid request body", "error", err)
		writeJSON(w, status, SendEmailResponse{Message: MsgServerError, Error: err.Error()})
		return
	}

	result, err := h.dispatcher.Dispatch(r.Context(), sub)
	var perr *notify.ProviderError
	switch {
	case err == nil && result.Outcome == notify.OutcomeBot:
		status, outcome = http.StatusOK, "bot"
		writeJSON(w, status, SendEmailResponse{Message: MsgOK})
	case err == nil:
		status, outcome = http.StatusOK, "sent"
		writeJSON(w, status, SendEmailResponse{Message: MsgSent})
	case errors.Is(err, notify.ErrMissingFields):
		status, outcome = http.StatusBadRequest, "invalid"
		writeJSON(w, status, SendEmailResponse{Message: MsgMissingFields})
	case errors.As(err, &perr):
		outcome = "failed"
		writeJSON(w, status, SendEmailResponse{Message: MsgDeliveryFailed, Error: perr.Message})
	default:
		h.logger.Error("send-email: dispatch failed", "error", err, "dispatch_id", result.ID)
		writeJSON(w, status, SendEmailResponse{Message: MsgServerError, Error: err.Error()})
	}
}
