package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/relaymind/autopilot/internal/model"
)

// Notifier delivers automated follow-up messages on the user's behalf.
// Delivery is best-effort; a failed send surfaces as an error so the caller
// can decide whether to advance cooldown state.
type Notifier interface {
	SendLeadFollowUp(ctx context.Context, user model.User, lead model.Lead) error
	SendTaskDigest(ctx context.Context, user model.User, tasks []model.Task) error
	SendInvoiceReminder(ctx context.Context, user model.User, invoice model.Invoice, offsetDays int) error
}

// LogNotifier records each would-be notification in the structured log
// instead of delivering it. It is the default sink until an outbound email
// provider is wired up, and the sink used in tests.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (LogNotifier) SendLeadFollowUp(_ context.Context, user model.User, lead model.Lead) error {
	zap.L().Info("notify: lead follow-up",
		zap.String("user_id", user.ID),
		zap.String("lead_id", lead.ID),
		zap.String("lead_email", lead.Email),
	)
	return nil
}

func (LogNotifier) SendTaskDigest(_ context.Context, user model.User, tasks []model.Task) error {
	zap.L().Info("notify: task digest",
		zap.String("user_id", user.ID),
		zap.Int("open_tasks", len(tasks)),
	)
	return nil
}

func (LogNotifier) SendInvoiceReminder(_ context.Context, user model.User, invoice model.Invoice, offsetDays int) error {
	zap.L().Info("notify: invoice reminder",
		zap.String("user_id", user.ID),
		zap.String("invoice_id", invoice.ID),
		zap.String("client", invoice.ClientName),
		zap.Int("offset_days", offsetDays),
	)
	return nil
}
