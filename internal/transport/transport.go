// Package transport abstracts the concrete mail-sending mechanism (SMTP
// session, SES API call, local sendmail invocation) behind a single Send
// contract, and builds transports from tagged configuration.
package transport

import (
	"context"
	"fmt"
)

// Message is a fully rendered, individually addressed outgoing email.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
	ReplyTo string
}

// Transport delivers messages through one concrete mail mechanism.
// Implementations are safe for concurrent use; Send resolves when the
// message is accepted for delivery.
type Transport interface {
	// Name returns the transport identifier (e.g. "smtp").
	Name() string
	// Send delivers the message.
	Send(ctx context.Context, msg Message) error
}

// SendError reports a failed delivery attempt for a single recipient.
type SendError struct {
	Recipient string
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("sending to %q failed: %v", e.Recipient, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
