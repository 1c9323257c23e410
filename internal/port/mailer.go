package port

import "context"

// Mailer delivers user-facing e-mail. Delivery failures are handled inside
// the implementation and never reported to the caller.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, name string)
	SendOrderConfirmation(ctx context.Context, email, name, productName string)
}
