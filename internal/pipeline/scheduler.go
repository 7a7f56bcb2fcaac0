package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/relaymind/autopilot/internal/config"
	"github.com/relaymind/autopilot/internal/model"
	"github.com/relaymind/autopilot/internal/store"
)

// Scheduler applies the cooldown policy for recurring automated actions.
// All intervals come from the policy table; none are per-user. Cooldown
// state is read-then-compare-then-write against the store, serialized per
// tenant by the batch run lock.
type Scheduler struct {
	store  store.Store
	policy config.PolicyConfig
}

// NewScheduler creates a Scheduler with the given policy table.
func NewScheduler(st store.Store, policy config.PolicyConfig) *Scheduler {
	return &Scheduler{store: st, policy: policy}
}

// CanRecontact reports whether a re-contact follow-up may fire for the lead
// now. It is blocked while the scheduled next-contact date is in the future,
// and by the quiet window: any correspondence with the lead inside the last
// LeadQuietDays suppresses the nudge.
func (s *Scheduler) CanRecontact(lead model.Lead, now time.Time) bool {
	if lead.NextContactAt != nil && now.Before(*lead.NextContactAt) {
		return false
	}
	if lead.LastContactAt != nil && now.Sub(*lead.LastContactAt) < s.policy.LeadQuietWindow() {
		return false
	}
	return true
}

// RecordRecontact advances the lead's cooldown state after a follow-up
// fired: last contact becomes now, next contact now + the re-contact
// interval. Timestamps only move forward.
func (s *Scheduler) RecordRecontact(ctx context.Context, lead *model.Lead, now time.Time) error {
	next := now.Add(s.policy.LeadRecontactInterval())
	if err := s.store.UpdateLeadSchedule(ctx, lead.ID, now, next); err != nil {
		return eris.Wrapf(err, "scheduler: record recontact for lead %s", lead.ID)
	}
	lead.LastContactAt = &now
	lead.NextContactAt = &next
	if lead.Status == model.LeadStatusNew {
		lead.Status = model.LeadStatusContacted
		if err := s.store.UpdateLeadStatus(ctx, lead.ID, model.LeadStatusContacted); err != nil {
			return eris.Wrapf(err, "scheduler: update lead status %s", lead.ID)
		}
	}
	return nil
}

// CanSendTaskDigest reports whether the task reminder digest may fire for
// the user now.
func (s *Scheduler) CanSendTaskDigest(ctx context.Context, userID string, now time.Time) (bool, error) {
	last, err := s.store.LastTaskReminder(ctx, userID)
	if err != nil {
		return false, eris.Wrap(err, "scheduler: read last task reminder")
	}
	if last != nil && now.Sub(*last) < s.policy.TaskReminderWindow() {
		return false, nil
	}
	return true, nil
}

// RecordTaskDigest stamps the user's last task reminder time.
func (s *Scheduler) RecordTaskDigest(ctx context.Context, userID string, now time.Time) error {
	return eris.Wrap(s.store.SetLastTaskReminder(ctx, userID, now), "scheduler: set last task reminder")
}

// DueInvoiceOffsets returns the reminder offsets (in days relative to the
// due date) that have come due for the invoice and not yet fired. Each
// offset fires once; the store records fired offsets.
func (s *Scheduler) DueInvoiceOffsets(ctx context.Context, invoice model.Invoice, now time.Time) ([]int, error) {
	var due []int
	for _, offset := range s.policy.InvoiceReminderOffsets {
		fireAt := invoice.DueDate.AddDate(0, 0, offset)
		if now.Before(fireAt) {
			continue
		}
		sent, err := s.store.InvoiceReminderSent(ctx, invoice.ID, offset)
		if err != nil {
			return nil, eris.Wrapf(err, "scheduler: check invoice reminder %s", invoice.ID)
		}
		if !sent {
			due = append(due, offset)
		}
	}
	return due, nil
}

// RecordInvoiceReminder marks one invoice reminder offset as fired.
func (s *Scheduler) RecordInvoiceReminder(ctx context.Context, invoiceID string, offsetDays int, now time.Time) error {
	return eris.Wrapf(s.store.MarkInvoiceReminderSent(ctx, invoiceID, offsetDays, now),
		"scheduler: mark invoice reminder %s offset %d", invoiceID, offsetDays)
}
