package email

import (
	"fmt"

	"cutordie_backend/internal/config"

	"gopkg.in/gomail.v2"
)

// SMTPProvider delivers mail through the configured SMTP relay.
type SMTPProvider struct {
	cfg *config.Config
}

func NewSMTPProvider(cfg *config.Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", p.cfg.Email.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(
		p.cfg.Email.SMTPHost,
		p.cfg.Email.SMTPPort,
		p.cfg.Email.SMTPUser,
		p.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(m)
}

func (p *SMTPProvider) SendResetCode(to, code string) error {
	body := fmt.Sprintf("Forgot your password? Enter this code on the site: %s\nThe code is valid for 10 minutes.", code)
	return p.Send(to, "Forgot your password?", body)
}
