// Package mail sends transactional email.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"shopfront/internal/config"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"
)

// Message is an email with a plain text body and an optional HTML alternative.
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpSender struct {
	cfg    config.MailConfig
	opts   []gomail.Option
	logger zerolog.Logger
}

// NewSMTPSender creates a Sender that relays through an SMTP server using
// STARTTLS when offered.
func NewSMTPSender(cfg config.MailConfig, logger zerolog.Logger) Sender {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(10 * time.Second),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	return &smtpSender{
		cfg:    cfg,
		opts:   opts,
		logger: logger.With().Str("component", "smtp-sender").Logger(),
	}
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	m, err := compose(s.cfg.From, msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

// compose builds the MIME message, with the HTML part as an alternative to
// the text body when present.
func compose(from string, msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}

type logSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a Sender that only logs messages. It is used when SMTP
// is not configured.
func NewLogSender(logger zerolog.Logger) Sender {
	return &logSender{logger: logger.With().Str("component", "log-sender").Logger()}
}

// Send logs the envelope at info and the body at debug with link query
// strings redacted.
func (s *logSender) Send(_ context.Context, msg Message) error {
	s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email not sent, SMTP disabled")
	s.logger.Debug().
		Str("to", msg.To).
		Str("body", redactQueries(msg.Body)).
		Msg("email body")
	return nil
}

// redactQueries strips query strings from any URL in s.
func redactQueries(s string) string {
	fields := strings.Fields(s)
	for _, f := range fields {
		u, err := url.Parse(f)
		if err != nil || u.Scheme == "" || u.RawQuery == "" {
			continue
		}
		u.RawQuery = "redacted"
		s = strings.ReplaceAll(s, f, u.String())
	}
	return s
}

var resetHTML = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #222;">
  <p>Hello {{.Name}},</p>
  <p>Use the button below to reset your password. It expires in 24 hours.</p>
  <p><a href="{{.Link}}" style="display: inline-block; padding: 10px 18px; background: #1a73e8; color: #fff; text-decoration: none; border-radius: 4px;">Reset password</a></p>
  <p>If the button does not work, open this link:<br><a href="{{.Link}}">{{.Link}}</a></p>
  <p>If you did not request this, ignore this email.</p>
</body>
</html>
`))

// PasswordReset builds the reset email for a user.
func PasswordReset(to, name, link string) Message {
	var html bytes.Buffer
	if err := resetHTML.Execute(&html, struct{ Name, Link string }{name, link}); err != nil {
		html.Reset()
	}
	return Message{
		To:      to,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hello %s,\r\n\r\nUse the link below to reset your password. "+
			"It expires in 24 hours.\r\n\r\n%s\r\n\r\nIf you did not request this, ignore this email.\r\n",
			name, link),
		HTML: html.String(),
	}
}
