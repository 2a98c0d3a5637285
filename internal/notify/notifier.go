// Package notify delivers connection notifications to users.
package notify

import (
	"context"
	"fmt"
	"html"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier abstracts the delivery channel so the log-only notifier and the
// e-mail one can be swapped without touching callers.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// InterestMessage tells a startup owner that an investor expressed interest.
func InterestMessage(to, investorName, startupName, note string) Message {
	body := fmt.Sprintf("<p><strong>%s</strong> is interested in <strong>%s</strong>.</p>",
		html.EscapeString(orDefault(investorName, "An investor")),
		html.EscapeString(orDefault(startupName, "your startup")))
	if note != "" {
		body += fmt.Sprintf("<blockquote>%s</blockquote>", html.EscapeString(note))
	}
	body += "<p>Sign in to InvestMate to accept or decline.</p>"
	return Message{
		To:      to,
		Subject: "New investor interest on InvestMate",
		Body:    body,
	}
}

// StatusMessage tells an investor that a startup answered their request.
func StatusMessage(to, startupName, status string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your connection request was %s", status),
		Body: fmt.Sprintf("<p><strong>%s</strong> has %s your connection request.</p>",
			html.EscapeString(orDefault(startupName, "A startup")), html.EscapeString(status)),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
