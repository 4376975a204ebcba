package service

import (
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"politicianfinder/internal/config"
	"politicianfinder/internal/util"
)

const (
	EmailQueueName  = "email_queue"
	EmailExchange   = "email_exchange"
	EmailRoutingKey = "email"
)

// EmailMessage is the RabbitMQ payload for outbound mail.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"` // HTML
}

// EmailService delivers mail over SMTP. Sends are normally published to
// RabbitMQ and delivered by the email worker; when messaging is down the
// publish falls back to a direct send so OTP mail still goes out.
type EmailService struct {
	cfg      *config.Config
	rabbitMQ *util.RabbitMQClient
	enabled  bool
}

func NewEmailService(cfg *config.Config, rabbitMQ *util.RabbitMQClient) *EmailService {
	enabled := cfg.SMTPHost != "" && cfg.SMTPUser != "" && cfg.SMTPFrom != ""
	if !enabled {
		log.Println("Email service disabled: missing SMTP configuration")
	}
	return &EmailService{cfg: cfg, rabbitMQ: rabbitMQ, enabled: enabled}
}

// PublishEmail enqueues an email for async delivery, falling back to a
// synchronous send when RabbitMQ is unavailable.
func (s *EmailService) PublishEmail(msg EmailMessage) error {
	if !s.enabled {
		return nil
	}

	if s.rabbitMQ != nil {
		body, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if err := s.rabbitMQ.Publish(EmailExchange, EmailRoutingKey, body); err == nil {
			return nil
		} else {
			log.Printf("Failed to publish email to RabbitMQ, sending directly: %v", err)
		}
	}

	return s.Send(msg)
}

// Send delivers one email over SMTP.
func (s *EmailService) Send(msg EmailMessage) error {
	if !s.enabled {
		return nil
	}

	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)

	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n"
	raw := []byte(fmt.Sprintf("To: %s\r\nFrom: PoliticianFinder <%s>\r\nSubject: %s\r\n%s\r\n%s",
		msg.To, s.cfg.SMTPFrom, msg.Subject, mime, msg.Body))

	if err := smtp.SendMail(addr, auth, s.cfg.SMTPFrom, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}

// SendOTPEmail sends the verification code to a newly registered user.
func (s *EmailService) SendOTPEmail(to, fullName, otpCode string) error {
	body := fmt.Sprintf(`
		<h2>Verify your email</h2>
		<p>Hi %s,</p>
		<p>Your verification code is:</p>
		<h1 style="letter-spacing: 4px;">%s</h1>
		<p>The code expires in 10 minutes.</p>`,
		htmlEscape(fullName), otpCode)

	return s.PublishEmail(EmailMessage{
		To:      to,
		Subject: "PoliticianFinder - Email Verification",
		Body:    body,
	})
}

// SendReportReadyEmail tells a buyer their report is ready for download.
func (s *EmailService) SendReportReadyEmail(to, fullName, politicianName, reportID string) error {
	body := fmt.Sprintf(`
		<h2>Your report is ready</h2>
		<p>Hi %s,</p>
		<p>The evaluation report for <strong>%s</strong> has been generated.</p>
		<p>You can download it from your reports page (report id: %s).</p>`,
		htmlEscape(fullName), htmlEscape(politicianName), reportID)

	return s.PublishEmail(EmailMessage{
		To:      to,
		Subject: "PoliticianFinder - Your report is ready",
		Body:    body,
	})
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
