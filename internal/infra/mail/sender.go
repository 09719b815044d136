package mail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"gopkg.in/gomail.v2"
)

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func (s *EmailSender) SendVerification(to, username, link string) error {
	body, err := renderTemplate("verify_email.html", VerificationEmailData{
		Username: username,
		Link:     link,
	})
	if err != nil {
		return err
	}
	return s.send(to, "Подтверждение E-mail адреса", body)
}

func (s *EmailSender) SendPasswordReset(to, username, link string) error {
	body, err := renderTemplate("reset_password.html", ResetEmailData{
		Username: username,
		Link:     link,
	})
	if err != nil {
		return err
	}
	return s.send(to, "Восстановление пароля", body)
}

func (s *EmailSender) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}

func renderTemplate(name string, data any) (string, error) {
	tmplPath := filepath.Join("templates", name)
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return "", fmt.Errorf("mail template read failed: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("mail template render failed: %w", err)
	}
	return body.String(), nil
}
