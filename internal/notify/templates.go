package notify

import (
	"fmt"
	"html"

	"github.com/osteele/liquid"
)

const (
	defaultSubject     = "General Inquiry"
	notificationPrefix = "NEW CONTACT FORM: "
	confirmationTitle  = "Your message has been received!"
	confirmationParam  = "contact_name"
)

// User-supplied values pass through the escape filter; the message keeps its
// newlines and is shown with white-space: pre-wrap. Optional fields arrive
// already defaulted to "N/A".
const notificationHTML = `<html>
  <body>
    <p>You have received a new message from your portfolio contact form:</p>
    <hr>
    <p><strong>Name:</strong> {{ name | escape }}</p>
    <p><strong>Email:</strong> {{ email | escape }}</p>
    <p><strong>Phone:</strong> {{ phone | escape }}</p>
    <p><strong>Subject:</strong> {{ subject | escape }}</p>
    <p><strong>Message:</strong></p>
    <p style="white-space: pre-wrap; border: 1px solid #ccc; padding: 10px; background: #f9f9f9;">{{ message | escape }}</p>
    <hr>
    <p>Sent via the portfolio contact API.</p>
  </body>
</html>
`

const notificationText = `New message from your portfolio contact form

Name: {{ name }}
Email: {{ email }}
Phone: {{ phone }}
Subject: {{ subject }}

{{ message }}
`

const confirmationHTML = `<html>
  <body>
    <p>Hello {{ name | escape }},</p>
    <p>Thank you for reaching out! I have received your message and will get back to you soon.</p>
    <br>
    <p>Best Regards,<br/>{{ owner | escape }}</p>
  </body>
</html>
`

// emailTemplates holds the parsed Liquid bodies.
type emailTemplates struct {
	notificationHTML *liquid.Template
	notificationText *liquid.Template
	confirmationHTML *liquid.Template
}

func parseEmailTemplates() (*emailTemplates, error) {
	engine := liquid.NewEngine()
	engine.RegisterFilter("escape", html.EscapeString)
	parse := func(name, src string) (*liquid.Template, error) {
		tpl, err := engine.ParseString(src)
		if err != nil {
			return nil, fmt.Errorf("notify: parse %s template: %w", name, err)
		}
		return tpl, nil
	}

	var (
		t   emailTemplates
		err error
	)
	if t.notificationHTML, err = parse("notification html", notificationHTML); err != nil {
		return nil, err
	}
	if t.notificationText, err = parse("notification text", notificationText); err != nil {
		return nil, err
	}
	if t.confirmationHTML, err = parse("confirmation html", confirmationHTML); err != nil {
		return nil, err
	}
	return &t, nil
}

func render(tpl *liquid.Template, bindings liquid.Bindings) (string, error) {
	out, err := tpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("notify: render template: %w", err)
	}
	return out, nil
}
