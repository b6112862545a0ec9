// Package mailer defines the outbound-mail collaborator. Delivery itself is
// external to this system; the server only hands messages over.
package mailer

import (
	"context"

	"github.com/cloudcapsule/cloudcapsule/internal/logging"
)

// Mailer sends a message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outbound messages to the structured log instead of
// delivering them. Default implementation until a real transport is
// configured; keeps the password-reset flow exercisable in development.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info(ctx, "outbound mail", "to", to, "subject", subject, "bytes", len(body))
	return nil
}
