package utils

import (
	"io"

	"gopkg.in/gomail.v2"
)

// Mailer sends clinic email through one SMTP account.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, user, pass string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
	}
}

// Attachment is a file sent along with an email.
type Attachment struct {
	Name string
	Data []byte
}

// SendResetCode mails a password reset code.
func (m *Mailer) SendResetCode(email, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Password Reset Code")
	msg.SetBody("text/plain", "Your password reset code is: "+code)
	msg.AddAlternative("text/html", `
	<!DOCTYPE html>
	<html>
	<body style="font-family: Arial, sans-serif;">
		<h1>Password Reset Code</h1>
		<p>Your password reset code is:</p>
		<p style="font-weight: bold; color: #007bff;">`+code+`</p>
		<p>If you did not request a password reset, please ignore this email.</p>
	</body>
	</html>
	`)
	return m.dialer.DialAndSend(msg)
}

// SendReport mails a plain text report with optional attachments.
func (m *Mailer) SendReport(to []string, subject, body string, attachments ...Attachment) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	for _, a := range attachments {
		data := a.Data
		msg.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	return m.dialer.DialAndSend(msg)
}
