package mailer

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	gomail "gopkg.in/mail.v2"
)

var ErrNotConfigured = errors.New("mailer: smtp host is not configured")

type SMTPMailer struct {
	dialer    *gomail.Dialer
	fromEmail string
	backoff   time.Duration
}

func NewSMTPMailer(host string, port int, username, password, fromEmail string) (*SMTPMailer, error) {
	if host == "" {
		return nil, ErrNotConfigured
	}
	d := gomail.NewDialer(host, port, username, password)
	d.Timeout = 10 * time.Second
	return &SMTPMailer{dialer: d, fromEmail: fromEmail, backoff: time.Second}, nil
}

// Render executes the "subject" and "plainBody" blocks of an embedded
// template as text and the "htmlBody" block with HTML escaping.
func Render(templateFile string, data any) (subject, plain, html string, err error) {
	path := "templates/" + templateFile
	text, err := template.ParseFS(FS, path)
	if err != nil {
		return "", "", "", err
	}
	markup, err := htmltemplate.ParseFS(FS, path)
	if err != nil {
		return "", "", "", err
	}

	var buf bytes.Buffer
	if err := text.ExecuteTemplate(&buf, "subject", data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	subject = buf.String()

	buf.Reset()
	if err := text.ExecuteTemplate(&buf, "plainBody", data); err != nil {
		return "", "", "", fmt.Errorf("render plain body: %w", err)
	}
	plain = buf.String()

	buf.Reset()
	if err := markup.ExecuteTemplate(&buf, "htmlBody", data); err != nil {
		return "", "", "", fmt.Errorf("render html body: %w", err)
	}
	return subject, plain, buf.String(), nil
}

// Send renders templateFile and delivers it, retrying with a growing pause.
// It returns the number of attempts made.
func (m *SMTPMailer) Send(templateFile, username, email string, data any) (int, error) {
	subject, plain, html, err := Render(templateFile, data)
	if err != nil {
		return 0, err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, FromName)
	msg.SetAddressHeader("To", email, username)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plain)
	msg.AddAlternative("text/html", html)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if lastErr = m.dialer.DialAndSend(msg); lastErr == nil {
			return attempt, nil
		}
		if attempt < maxRetries {
			time.Sleep(m.backoff * time.Duration(attempt))
		}
	}
	return maxRetries, fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
