// Package mail delivers the account emails: activation links and password
// reset links. Delivery is synchronous and never retried; a failure reaches
// the caller as an internal error.
package mail

import (
	"bytes"
	"context"
	htmltmpl "html/template"
	"net/url"
	"strings"
	texttmpl "text/template"

	"github.com/pkg/errors"

	"github.com/Igor-Lacko/wis2-backend-sub000/internal/apperr"
)

// Message is a rendered email ready for a Sender.
type Message struct {
	To          string
	Subject     string
	TextContent string
	HTMLContent string
}

// Sender moves a rendered Message to its recipient.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var (
	activationText = texttmpl.Must(texttmpl.New("activation").Parse(
		"Hello {{.Username}},\n\nactivate your account by opening the link below:\n\n{{.Link}}\n"))
	activationHTML = htmltmpl.Must(htmltmpl.New("activation").Parse(
		`<p>Hello {{.Username}},</p><p>activate your account by opening <a href="{{.Link}}">this link</a>.</p>`))
	resetText = texttmpl.Must(texttmpl.New("reset").Parse(
		"Somebody asked to reset the password of your account.\n\nSet a new one here:\n\n{{.Link}}\n\nIgnore this email if it was not you.\n"))
	resetHTML = htmltmpl.Must(htmltmpl.New("reset").Parse(
		`<p>Somebody asked to reset the password of your account.</p><p><a href="{{.Link}}">Set a new password</a>.</p><p>Ignore this email if it was not you.</p>`))
)

type linkData struct {
	Username string
	Link     string
}

// Mailer renders the account emails and hands them to a Sender.
type Mailer struct {
	sender      Sender
	frontendURL string
}

func NewMailer(sender Sender, frontendURL string) *Mailer {
	return &Mailer{sender: sender, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// ActivationLink returns the frontend URL that consumes an activation token.
func (m *Mailer) ActivationLink(token string) string {
	return m.frontendURL + "/activate?token=" + url.QueryEscape(token)
}

// PasswordResetLink returns the frontend URL of the reset form for token.
func (m *Mailer) PasswordResetLink(token string) string {
	return m.frontendURL + "/password/reset?token=" + url.QueryEscape(token)
}

func (m *Mailer) SendActivationEmail(ctx context.Context, to, username, link string) error {
	msg, err := render(to, "Activate your account", activationText, activationHTML, linkData{Username: username, Link: link})
	if err != nil {
		return err
	}
	return m.send(ctx, msg)
}

func (m *Mailer) SendPasswordResetMail(ctx context.Context, to, link string) error {
	msg, err := render(to, "Password reset", resetText, resetHTML, linkData{Link: link})
	if err != nil {
		return err
	}
	return m.send(ctx, msg)
}

func (m *Mailer) send(ctx context.Context, msg Message) error {
	if err := m.sender.Send(ctx, msg); err != nil {
		return apperr.Internal(err, "sending email")
	}
	return nil
}

func render(to, subject string, text *texttmpl.Template, html *htmltmpl.Template, data linkData) (Message, error) {
	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, data); err != nil {
		return Message{}, apperr.Internal(errors.Wrap(err, text.Name()), "rendering email")
	}
	if err := html.Execute(&hb, data); err != nil {
		return Message{}, apperr.Internal(errors.Wrap(err, html.Name()), "rendering email")
	}
	return Message{To: to, Subject: subject, TextContent: tb.String(), HTMLContent: hb.String()}, nil
}
