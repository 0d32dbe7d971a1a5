package notification

import (
	"fmt"
	"net/smtp"
)

// Mail sends messages by email
type Mail struct {
	auth              smtp.Auth
	smtpServerPort    int
	smtpServerAddress string
	to                string
	from              string
	sendMail          func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// MailParams contains the parameters needed to create a Mail sender
type MailParams struct {
	SMTPServerPort    int
	SMTPServerAddress string
	To                string
	From              string
	Password          string
}

// NewMail creates a Mail sender using plain SMTP authentication
func NewMail(params MailParams) *Mail {
	return &Mail{
		from:              params.From,
		to:                params.To,
		smtpServerPort:    params.SMTPServerPort,
		smtpServerAddress: params.SMTPServerAddress,
		auth:              smtp.PlainAuth("", params.From, params.Password, params.SMTPServerAddress),
		sendMail:          smtp.SendMail,
	}
}

// Send implements Sender. The first line of text becomes the subject.
func (m *Mail) Send(text string) error {
	serverAddress := fmt.Sprintf("%s:%d", m.smtpServerAddress, m.smtpServerPort)
	message := fmt.Sprintf("To: <%s>\r\nFrom: \"atradx\" <%s>\r\nSubject: %s\r\n\r\n%s",
		m.to, m.from, subject(text), text)

	if err := m.sendMail(serverAddress, m.auth, m.from, []string{m.to}, []byte(message)); err != nil {
		return fmt.Errorf("notification/mail: %w", err)
	}
	return nil
}

func subject(text string) string {
	for i, r := range text {
		if r == '\n' {
			return text[:i]
		}
	}
	return text
}
