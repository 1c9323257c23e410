package mail

import (
	"context"
	"log"
)

// LogMailer only records what would have been sent. Used when no SMTP
// relay is configured.
type LogMailer struct{}

func (LogMailer) SendConfirmation(_ context.Context, email, name string) {
	log.Printf("mail disabled: registration confirmation for %s <%s>", name, email)
}

func (LogMailer) SendOrderConfirmation(_ context.Context, email, name, productName string) {
	log.Printf("mail disabled: order confirmation for %s <%s>: %s", name, email, productName)
}
