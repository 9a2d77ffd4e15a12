package services

import (
	"context"
	"fmt"
	"log"
	"net/smtp"

	"github.com/assadsharif/chatkit-widget-implementation/internal/config"
	"github.com/assadsharif/chatkit-widget-implementation/internal/logging"
)

// EmailService delivers verification links. Delivery is disabled in
// integration test mode; outside it, SMTP is used when configured.
type EmailService struct {
	cfg      config.EmailConfig
	baseURL  string
	testMode bool
	log      logging.Logger
}

func NewEmailService(cfg *config.Config, log logging.Logger) *EmailService {
	return &EmailService{
		cfg:      cfg.Email,
		baseURL:  cfg.Verification.BaseURL,
		testMode: cfg.IntegrationTest,
		log:      log,
	}
}

func (s *EmailService) SendVerificationEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/verify?token=%s", s.baseURL, token)

	if !s.cfg.Enabled {
		s.log.Info(ctx, "email_skipped", "to", to, "enabled", false)
		if s.testMode {
			// Integration suites read the token off stdout; never do
			// this outside test mode.
			log.Printf("integration test mode: verification link for %s: %s", to, link)
		}
		return nil
	}

	body := fmt.Sprintf(
		"Subject: Verify Your Email\r\nFrom: %s\r\nTo: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n"+
			"<html><body>"+
			"<h2>Verify Your Email</h2>"+
			"<p>Thank you for signing up! Please click the link below to verify your email:</p>"+
			"<p><a href=\"%s\">Verify Email</a></p>"+
			"<p>This link expires in 10 minutes.</p>"+
			"<p>If you didn't request this, please ignore this email.</p>"+
			"</body></html>\r\n",
		s.cfg.From, to, link,
	)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(body)); err != nil {
		s.log.Error(ctx, "email_send_failed", "to", to, "error", err.Error())
		return fmt.Errorf("send verification email: %w", err)
	}

	s.log.Info(ctx, "email_sent", "to", to)
	return nil
}
