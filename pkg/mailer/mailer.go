package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

const maxRetries = 3

// Client sends transactional mail.
type Client interface {
	SendPasswordReset(to, name, link string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

var resetTemplate = template.Must(template.New("reset").Parse(`<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2>Reset your password</h2>
	<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
	<p>Someone asked to reset the password for your account. If it was you, follow the link below.</p>
	<p><a href="{{.Link}}">Choose a new password</a></p>
	<p>If you did not ask for this you can ignore this email.</p>
</body>
</html>`))

// SMTPMailer delivers through an SMTP relay.
type SMTPMailer struct {
	cfg    Config
	dialer *mail.Dialer
}

func NewSMTP(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) SendPasswordReset(to, name, link string) error {
	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, struct{ Name, Link string }{name, link}); err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Reset your password")
	msg.SetBody("text/html", body.String())

	var err error
	for i := 0; i < maxRetries; i++ {
		if err = m.dialer.DialAndSend(msg); err == nil {
			return nil
		}
	}
	return fmt.Errorf("send reset email after %d attempts: %w", maxRetries, err)
}

// LogMailer writes links to the log instead of sending them. Used when SMTP
// is not configured.
type LogMailer struct {
	log *zap.SugaredLogger
}

func NewLog(log *zap.SugaredLogger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(to, name, link string) error {
	m.log.Infow("password reset link (SMTP not configured)", "email", to, "link", link)
	return nil
}

// New picks SMTP when a host is configured and the log mailer otherwise.
func New(cfg Config, log *zap.SugaredLogger) Client {
	if cfg.Host == "" {
		return NewLog(log)
	}
	return NewSMTP(cfg)
}
