package notifsvc

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/prajyots60/myskill-agenda/core"
	"github.com/prajyots60/myskill-agenda/core/timeline"
)

// SubscriberDirectory resolves who armed a reminder for an entry.
type SubscriberDirectory interface {
	RemindedEmails(ctx context.Context, entryID string) ([]string, error)
}

// ConsoleNotifier logs go-live notices. For DEV|TEST mode.
type ConsoleNotifier struct {
	logger core.Logger
}

var _ timeline.Notifier = (*ConsoleNotifier)(nil)

func NewConsoleNotifier(logger core.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{logger: logger}
}

func (n ConsoleNotifier) SessionLive(entry timeline.Entry) {
	n.logger.Info(fmt.Sprintf("🔴 %q is live now", entry.Title))
}

// EmailNotifier mails the go-live notice to every student who armed a
// reminder for the session.
type EmailNotifier struct {
	mailSvc     core.EmailService
	directory   SubscriberDirectory
	frontendURL string
	logger      core.Logger
	timeout     time.Duration
}

var _ timeline.Notifier = (*EmailNotifier)(nil)

func NewEmailNotifier(mailSvc core.EmailService, directory SubscriberDirectory, conf *core.Config, logger core.Logger) *EmailNotifier {
	return &EmailNotifier{
		mailSvc:     mailSvc,
		directory:   directory,
		frontendURL: conf.FrontendBaseURL,
		logger:      logger,
		timeout:     conf.Agenda.RequestTimeout,
	}
}

func (n EmailNotifier) SessionLive(entry timeline.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	emails, err := n.directory.RemindedEmails(ctx, entry.ID)
	if err != nil {
		n.logger.Error("agenda: resolving reminder subscribers", err)
		return
	}
	if len(emails) == 0 {
		return
	}

	joinURL := fmt.Sprintf("%s/live/%s", n.frontendURL, entry.ID)
	msg := &core.EmailMessage{
		Subject: fmt.Sprintf("%q is live now", entry.Title),
		TextContent: fmt.Sprintf(
			"%s just went live in %s.\n\nJoin now: %s\n",
			entry.Title, entry.ContextName, joinURL,
		),
	}
	for _, email := range emails {
		msg.To = append(msg.To, mail.Address{Address: email})
	}
	n.mailSvc.SendMessages(msg)
}
