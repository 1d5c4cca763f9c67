package services

import (
	"fmt"
	"net/smtp"

	"classroom-energy-api/config"
)

// Mailer sends account activation mail. Implementations must tolerate
// concurrent use.
type Mailer interface {
	SendActivation(to, username, token string) error
}

// SMTPMailer sends mail through a plain SMTP relay. A nil SMTPMailer is
// valid and silently drops mail, so local setups without a relay still
// work (the activation endpoint accepts the token directly).
type SMTPMailer struct {
	addr    string
	auth    smtp.Auth
	sender  string
	baseURL string
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Server)
	}
	return &SMTPMailer{
		addr:    fmt.Sprintf("%s:%d", cfg.Server, cfg.Port),
		auth:    auth,
		sender:  cfg.Sender,
		baseURL: cfg.BaseURL,
	}
}

func (m *SMTPMailer) SendActivation(to, username, token string) error {
	if m == nil {
		return nil
	}

	link := fmt.Sprintf("%s/api/auth/activate/%s", m.baseURL, token)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Activate your account\r\n\r\n"+
		"Hi %s,\r\n\r\nClick the link below to activate your account:\r\n%s\r\n",
		m.sender, to, username, link)

	return smtp.SendMail(m.addr, m.auth, m.sender, []string{to}, []byte(msg))
}
