package notify

import (
	"context"
	"log"

	"freight/internal/domain"
)

// LogDispatcher writes notifications to the process log. It is used when no
// broker is configured.
type LogDispatcher struct{}

// NewLogDispatcher creates a new LogDispatcher.
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (LogDispatcher) Dispatch(_ context.Context, n domain.Notification) error {
	log.Printf("[NOTIFY] id=%s type=%s recipient=%s data=%v", n.ID, n.Type, n.RecipientID, n.Data)
	return nil
}
