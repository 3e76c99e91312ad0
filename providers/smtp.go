package providers

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/area-engine/core/config"
)

// SMTPSender is the collaborator spec §6 names: "SMTPSender.send(to, subject, body, html)".
// No third-party SMTP or mail-templating library appears anywhere in the example pack, so
// this adapter is built directly on stdlib net/smtp — see DESIGN.md.
type SMTPSender interface {
	Send(to, subject, body string, html bool) Result
}

// DirectSMTPSender dials the configured SMTP host for every send, mirroring
// original_source/server/utils/email_sender.py's direct smtplib usage (no connection
// pooling there either).
type DirectSMTPSender struct {
	cfg config.SMTPConfig
}

func NewDirectSMTPSender(cfg config.SMTPConfig) *DirectSMTPSender {
	return &DirectSMTPSender{cfg: cfg}
}

func (s *DirectSMTPSender) Send(to, subject, body string, html bool) Result {
	contentType := "text/plain; charset=UTF-8"
	if html {
		contentType = "text/html; charset=UTF-8"
	}

	from := s.cfg.FromEmail
	if from == "" {
		from = s.cfg.Username
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: %s\r\n\r\n%s\r\n",
		from, to, subject, contentType, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, from, strings.Split(to, ","), []byte(msg)); err != nil {
		return Fail(fmt.Errorf("smtp send: %w", err))
	}
	return Ok(fmt.Sprintf("Email sent successfully to %s", to))
}

var _ SMTPSender = (*DirectSMTPSender)(nil)
