package mailer

import "context"

// Mailer delivers a rendered message to a single recipient. Any non-nil
// error is treated as a delivery failure by the caller.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
