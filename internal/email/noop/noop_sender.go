package noop

import (
	"context"
	"log"

	"ogarx/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs messages to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendWelcomeEmail(_ context.Context, toEmail, toName string) error {
	log.Printf("[NOOP EMAIL] Welcome email for %s (%s)", toName, toEmail)
	return nil
}

func (s *noopSender) SendExportReadyEmail(_ context.Context, toEmail, toName, fileName, downloadURL string) error {
	log.Printf("[NOOP EMAIL] Export %s ready for %s (%s): %s", fileName, toName, toEmail, downloadURL)
	return nil
}
