package core

import "net/mail"

type (
	// EmailMessage is a transport-agnostic email payload.
	EmailMessage struct {
		To          []mail.Address
		Subject     string
		TextContent string
		HTMLContent string
	}

	// EmailService delivers messages asynchronously; failures are logged,
	// never returned.
	EmailService interface {
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }

func (m *EmailMessage) HasContent() bool {
	return m.Subject != "" && (m.TextContent != "" || m.HTMLContent != "")
}
