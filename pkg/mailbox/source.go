// Package mailbox provides the email source the pipeline reads from. The
// production implementation is backed by the Gmail API; the pipeline only
// depends on the Source interface.
package mailbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/relaymind/autopilot/internal/model"
)

// Source fetches a user's unprocessed inbox messages and records that a
// message was consumed for a given purpose.
type Source interface {
	// FetchUnprocessed returns up to limit messages that have not yet been
	// processed for the given purpose, oldest first.
	FetchUnprocessed(ctx context.Context, user model.User, purpose model.ProcessPurpose, limit int) ([]model.EmailMessage, error)

	// MarkProcessed flags a message as consumed for the given purpose so it
	// cannot re-trigger extraction.
	MarkProcessed(ctx context.Context, user model.User, emailID string, purpose model.ProcessPurpose) error
}

// NotConnectedError reports that a user has no linked mailbox. Callers
// branch on this with IsNotConnected rather than inspecting message text.
type NotConnectedError struct {
	UserID string
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("mailbox: user %s has no connected account", e.UserID)
}

// IsNotConnected reports whether err (or anything it wraps) is a
// NotConnectedError.
func IsNotConnected(err error) bool {
	var nc *NotConnectedError
	return errors.As(err, &nc)
}
