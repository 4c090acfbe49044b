// Package contact models a contact-form submission and the client that submits it.
package contact

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

// Field names as they appear in the JSON payload and in FieldErrors.
const (
	FieldName     = "name"
	FieldPhone    = "phone"
	FieldEmail    = "email"
	FieldSubject  = "subject"
	FieldMessage  = "message"
	FieldBotCheck = "botCheck"
)

// ErrBotDetected signals that the honeypot field was populated. Callers drop the
// submission silently and report success.
var ErrBotDetected = errors.New("contact: honeypot triggered")

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Submission is one contact-form draft or payload.
type Submission struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email" validate:"required"`
	Subject  string `json:"subject,omitempty"`
	Message  string `json:"message" validate:"required"`
	BotCheck string `json:"botCheck,omitempty"`
}

// IsBot reports whether the hidden honeypot field was filled in.
func (s Submission) IsBot() bool {
	return s.BotCheck != ""
}

// Validate checks the draft. The honeypot is evaluated first and reported as
// ErrBotDetected, never as a field error.
func (s Submission) Validate() (FieldErrors, error) {
	if s.IsBot() {
		return nil, ErrBotDetected
	}

	errs := FieldErrors{}
	if s.Name == "" {
		errs[FieldName] = "Name is required"
	}
	if s.Email == "" {
		errs[FieldEmail] = "Email is required"
	} else if !emailPattern.MatchString(s.Email) {
		errs[FieldEmail] = "Invalid email"
	}
	if s.Message == "" {
		errs[FieldMessage] = "Message is required"
	}
	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

// Set assigns a field by its JSON name. Unknown names are ignored.
func (s *Submission) Set(field, value string) bool {
	switch field {
	case FieldName:
		s.Name = value
	case FieldPhone:
		s.Phone = value
	case FieldEmail:
		s.Email = value
	case FieldSubject:
		s.Subject = value
	case FieldMessage:
		s.Message = value
	case FieldBotCheck:
		s.BotCheck = value
	default:
		return false
	}
	return true
}

// FieldErrors maps a field name to its inline error message.
type FieldErrors map[string]string

// Empty reports whether there are no field errors.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Fields returns the failing field names in a stable order.
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+e[f])
	}
	return "contact: invalid submission (" + strings.Join(parts, "; ") + ")"
}
