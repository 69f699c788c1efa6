package service

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers transactional mail (verification and password reset links)
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends HTML mail through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if to == m.from {
		return fmt.Errorf("refusing to send mail to the sender address %s", to)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	return m.dialer.DialAndSend(msg)
}

// LogMailer is used when no SMTP relay is configured. Mails are written to
// the log instead.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	zap.L().Info("Mail not sent, no SMTP relay configured",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)

	return nil
}

func verificationMail(link string) (string, string) {
	return "Verify your email address",
		fmt.Sprintf("Click <a href='%v'>here</a> to verify your account.\n\nThis link will expire in 24 hours", link)
}

func passwordResetMail(link string) (string, string) {
	return "Reset your password",
		fmt.Sprintf("Click <a href='%v'>here</a> to choose a new password.\n\nThis link will expire in 30 minutes. If you didn't ask for a password reset you can ignore this mail.", link)
}
