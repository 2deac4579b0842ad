package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Sender delivers one message to one recipient. Delivery is best effort: the
// caller decides whether a failure matters.
type Sender interface {
	Send(subject, body, recipient string) error
}

type Config struct {
	Host     string
	Port     string
	From     string
	Password string
}

type SMTP struct {
	cfg Config
	log *zerolog.Logger
}

func NewSMTP(cfg Config, log *zerolog.Logger) *SMTP {
	return &SMTP{cfg: cfg, log: log}
}

func (m *SMTP) Send(subject, body, recipient string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, recipient, subject, body,
	)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{recipient}, []byte(msg)); err != nil {
		m.log.Warn().Msgf("Failed to send email to %s: %v", recipient, err)
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Msgf("Email sent to %s (subject: %s)", recipient, subject)
	return nil
}
