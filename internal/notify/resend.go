package notify

import (
	"context"
	"errors"
	"fmt"

	"investmate-backend/internal/logging"

	"github.com/resend/resend-go/v2"
)

type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier sends notifications as e-mail through Resend.
type ResendNotifier struct {
	emails emailSender
	from   string
	log    logging.Logger
}

func NewResendNotifier(apiKey, from string, log logging.Logger) *ResendNotifier {
	client := resend.NewClient(apiKey)
	return &ResendNotifier{emails: client.Emails, from: from, log: log}
}

func (n *ResendNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("notify: empty recipient")
	}
	sent, err := n.emails.Send(&resend.SendEmailRequest{
		From:    n.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	n.log.Info(ctx, "email sent", "id", sent.Id, "to", msg.To)
	return nil
}

// New picks the Resend notifier when an API key is configured and the
// log-only one otherwise.
func New(apiKey, from string, log logging.Logger) Notifier {
	if apiKey == "" {
		log.Warn(context.Background(), "RESEND_API_KEY not set, notifications will only be logged")
		return NewLogNotifier(log)
	}
	return NewResendNotifier(apiKey, from, log)
}
