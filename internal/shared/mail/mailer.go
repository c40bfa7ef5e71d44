// Package mail delivers outbound email. The core treats delivery as a
// collaborator: a message either reaches the SMTP server or the send
// fails; no delivery receipt is assumed.
package mail

import "context"

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer sends messages. Implementations must honor ctx cancellation
// where the underlying transport allows it.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
