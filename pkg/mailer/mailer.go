// Package mailer is the outbound-email collaborator contract. Delivery is
// external; callers always treat a send failure as non-fatal.
package mailer

import (
	"context"
	"log"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends a message. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the process log instead of delivering them.
// Used in development and tests, and as the fallback when no transport is
// configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("mail (not delivered): to=%s subject=%q", msg.To, msg.Subject)
	return nil
}
