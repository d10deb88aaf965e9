package mailer

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"stayfinder/api/internal/config"
)

// Sender delivers a single HTML email. Delivery is best-effort for the
// callers in this package's consumers: a failed send never rolls back the
// operation that triggered it.
type Sender interface {
	Send(to string, subject string, htmlBody string) error
}

type SMTPSender struct {
	cfg config.SMTPConfig
	log zerolog.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, log zerolog.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log}
}

func (s *SMTPSender) Send(to string, subject string, htmlBody string) error {
	if s.cfg.Host == "" || s.cfg.From == "" {
		return fmt.Errorf("smtp not configured")
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("empty recipient")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	s.log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// VerificationEmail renders the verification-code message.
func VerificationEmail(code string, ttlMinutes int) (subject string, body string) {
	subject = "[StayFinder] Verify your email"
	body = fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>StayFinder email verification</h2>
    <p>Your verification code is:</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">%s</div>
    <p>The code expires in %d minutes.</p>
  </div>
</body>
</html>`, code, ttlMinutes)
	return subject, body
}
