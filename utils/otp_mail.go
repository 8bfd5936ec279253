package utils

import (
	"crypto/rand"
	"fmt"
	"net/smtp"
)

// GenerateOTP generates a numeric OTP of n digits from crypto/rand.
func GenerateOTP(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	otp := make([]byte, n)
	for i := 0; i < n; i++ {
		otp[i] = '0' + (bytes[i] % 10)
	}
	return string(otp), nil
}

// Mailer sends plain-text email over SMTP.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
}

// Configured reports whether the mailer has a complete SMTP setup.
// Unconfigured mailers are expected in development.
func (m *Mailer) Configured() bool {
	return m.Host != "" && m.Port != "" && m.Username != "" && m.Password != ""
}

// Send delivers a plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("smtp not configured")
	}

	addr := m.Host + ":" + m.Port
	from := m.Username

	msg := "From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body + "\r\n"

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	return smtp.SendMail(addr, auth, from, []string{to}, []byte(msg))
}
