package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// MailService sends the one-time codes for email verification and
// password reset. When SMTP is not configured it degrades to logging the
// code, so local development works without a mail account.
type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("MailService disabled: missing SMTP environment variables")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

// SendVerificationEmail delivers the signup verification code.
func (s *MailService) SendVerificationEmail(to, code string) {
	subject := "Verify your Inkwell account"
	body := fmt.Sprintf("Welcome to Inkwell!\r\n\r\nYour verification code is: %s\r\nIt expires in 24 hours.\r\n", code)
	s.send(to, subject, body)
}

// SendPasswordResetEmail delivers a password reset code.
func (s *MailService) SendPasswordResetEmail(to, code string) {
	subject := "Reset your Inkwell password"
	body := fmt.Sprintf("Your password reset code is: %s\r\nIt expires in 15 minutes.\r\n\r\nIf you did not request this, ignore this email.\r\n", code)
	s.send(to, subject, body)
}

func (s *MailService) send(to, subject, body string) {
	if !s.Enabled {
		log.Printf("MailService (disabled): would send %q to %s: %s", subject, to, body)
		return
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.From, to, subject, body))
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)

	// Fire and forget: a mail outage must not fail the request
	go func() {
		if err := smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{to}, msg); err != nil {
			log.Printf("Failed to send mail to %s: %v", to, err)
		}
	}()
}
