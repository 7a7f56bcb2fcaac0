package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/relaymind/autopilot/internal/config"
	"github.com/relaymind/autopilot/internal/model"
	"github.com/relaymind/autopilot/internal/resilience"
	"github.com/relaymind/autopilot/internal/store"
	"github.com/relaymind/autopilot/pkg/mailbox"
)

// purposeKinds maps each processing purpose to the extraction kind its
// pipeline produces.
var purposeKinds = map[model.ProcessPurpose]model.ExtractionKind{
	model.PurposeMeetings: model.KindMeeting,
	model.PurposeLeads:    model.KindLead,
	model.PurposeInvoices: model.KindInvoice,
	model.PurposeTasks:    model.KindTask,
}

// purposeOrder fixes the processing order of the per-purpose pipelines
// within a run.
var purposeOrder = []model.ProcessPurpose{
	model.PurposeMeetings,
	model.PurposeLeads,
	model.PurposeInvoices,
	model.PurposeTasks,
}

// Runner executes the full pipeline for one user: preference gate, fetch,
// prefilter, extraction, normalization, dedup, persistence, then the
// scheduled actions (lead re-contact, task digest, invoice reminders).
type Runner struct {
	source     mailbox.Source
	store      store.Store
	prefilter  *Prefilter
	requester  *Requester
	normalizer *Normalizer
	guard      *Guard
	scheduler  *Scheduler
	notifier   Notifier
	fetchLimit int
	now        func() time.Time
}

// NewRunner wires the pipeline stages together.
func NewRunner(
	source mailbox.Source,
	st store.Store,
	requester *Requester,
	scheduler *Scheduler,
	notifier Notifier,
	pipeCfg config.PipelineConfig,
) *Runner {
	limit := pipeCfg.FetchLimit
	if limit <= 0 {
		limit = 25
	}
	return &Runner{
		source:     source,
		store:      st,
		prefilter:  NewPrefilter(pipeCfg.MinBodyChars),
		requester:  requester,
		normalizer: NewNormalizer(),
		guard:      NewGuard(st),
		scheduler:  scheduler,
		notifier:   notifier,
		fetchLimit: limit,
		now:        time.Now,
	}
}

// Run processes one user end to end and returns the run's counters. Errors
// inside the run are folded into the stats; Run itself only returns an error
// for context cancellation so a batch can abort cleanly.
func (r *Runner) Run(ctx context.Context, user model.User) (model.UserRunStats, error) {
	stats := model.UserRunStats{UserID: user.ID, State: model.StateGated}
	log := zap.L().With(zap.String("user_id", user.ID))

	prefs := model.ParsePreferences(user.Preferences)
	if prefs.PauseAI {
		log.Info("run: user paused, skipping")
		stats.State = model.StateDone
		return stats, nil
	}

	stats.State = model.StateFetching
	connected := true
	for _, purpose := range purposeOrder {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if !prefs.Allows(purpose) {
			continue
		}
		if !connected {
			break
		}
		if err := r.runPurpose(ctx, user, purpose, &stats); err != nil {
			switch {
			case mailbox.IsNotConnected(err):
				// No linked mailbox. Degrade to a reminder task so the run
				// still produces something actionable, then move straight to
				// the scheduled actions, which need only the store.
				connected = false
				stats.ErrorKind = model.ErrKindIntegrationMissing
				stats.Errors++
				if derr := r.createIntegrationTask(ctx, user); derr != nil {
					log.Error("run: degrade task", zap.Error(derr))
					stats.Errors++
				} else {
					stats.Created++
				}
			case resilience.IsTransient(err):
				// Provider hiccup fetching this purpose's mail. Nothing was
				// marked processed, so the next batch retries it; carry on
				// with the remaining purposes.
				stats.ErrorKind = model.ErrKindTransientProvider
				stats.Errors++
				log.Warn("run: transient fetch failure",
					zap.String("purpose", string(purpose)), zap.Error(err))
			default:
				stats.State = model.StateErrored
				stats.ErrorKind = model.ErrKindTransientProvider
				stats.Errors++
				log.Error("run: fetch failed",
					zap.String("purpose", string(purpose)), zap.Error(err))
				return stats, nil
			}
		}
	}

	stats.State = model.StateScheduling
	if err := r.runScheduledActions(ctx, user, prefs, &stats); err != nil {
		stats.State = model.StateErrored
		if stats.ErrorKind == "" {
			stats.ErrorKind = model.ErrKindTransientProvider
		}
		stats.Errors++
		log.Error("run: scheduled actions", zap.Error(err))
		return stats, nil
	}

	if stats.ErrorKind == model.ErrKindIntegrationMissing {
		stats.State = model.StateErrored
	} else {
		stats.State = model.StateDone
	}
	log.Info("run: complete",
		zap.String("state", string(stats.State)),
		zap.Int("emails", stats.EmailsProcessed),
		zap.Int("created", stats.Created),
		zap.Int("follow_ups", stats.FollowUpsSent),
		zap.Int("errors", stats.Errors),
	)
	return stats, nil
}

// runPurpose fetches and processes the unprocessed mail for one purpose.
// The returned error is a fetch-level failure only; per-email failures are
// folded into stats and processing continues.
func (r *Runner) runPurpose(ctx context.Context, user model.User, purpose model.ProcessPurpose, stats *model.UserRunStats) error {
	kind := purposeKinds[purpose]
	log := zap.L().With(
		zap.String("user_id", user.ID),
		zap.String("purpose", string(purpose)),
	)

	emails, err := r.source.FetchUnprocessed(ctx, user, purpose, r.fetchLimit)
	if err != nil {
		return err
	}
	log.Debug("run: fetched", zap.Int("count", len(emails)))

	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.processEmail(ctx, user, purpose, kind, email, stats); err != nil {
			return err
		}
	}
	return nil
}

// processEmail runs one email through prefilter, extraction, normalization,
// dedup and persistence. The processed mark is the idempotency guard: it is
// set for every terminal outcome (skip, drop, duplicate, created, extraction
// failure) and withheld only when the provider failed transiently, so the
// next run retries the email instead of double-creating from it.
func (r *Runner) processEmail(ctx context.Context, user model.User, purpose model.ProcessPurpose, kind model.ExtractionKind, email model.EmailMessage, stats *model.UserRunStats) error {
	log := zap.L().With(
		zap.String("user_id", user.ID),
		zap.String("purpose", string(purpose)),
		zap.String("email_id", email.ID),
	)

	stats.State = model.StateFiltering
	if !r.prefilter.ShouldExtract(kind, email.From, email.Subject, email.Body) {
		stats.EmailsProcessed++
		return r.mark(ctx, user, email.ID, purpose)
	}

	stats.State = model.StateExtracting
	result, err := r.requester.Extract(ctx, kind, buildEmailContext(email))
	if err != nil {
		if IsExtractionError(err) {
			log.Warn("run: unparsable model reply", zap.Error(err))
			stats.Errors++
			stats.EmailsProcessed++
			return r.mark(ctx, user, email.ID, purpose)
		}
		// Retries exhausted or a hard provider error; leave the email
		// unmarked so the next run picks it up again.
		stats.ErrorKind = model.ErrKindTransientProvider
		stats.Errors++
		log.Warn("run: extraction call failed", zap.Error(err))
		return nil
	}
	if result == nil {
		// Gated out: negative classification, low confidence, or missing
		// required fields.
		stats.EmailsProcessed++
		return r.mark(ctx, user, email.ID, purpose)
	}

	stats.State = model.StateNormalizing
	cand, err := r.normalizer.Normalize(result, email, user)
	if err != nil {
		if IsValidationError(err) {
			log.Warn("run: candidate dropped", zap.Error(err))
			stats.ErrorKind = model.ErrKindValidation
			stats.Errors++
			stats.EmailsProcessed++
			return r.mark(ctx, user, email.ID, purpose)
		}
		return eris.Wrap(err, "runner: normalize")
	}

	stats.State = model.StateDeduplicating
	dup, matchedID, err := r.guard.IsDuplicate(ctx, user.ID, cand)
	if err != nil {
		return eris.Wrap(err, "runner: dedup")
	}
	if dup {
		// The incoming mail counts as correspondence with the existing
		// lead, which resets its quiet window.
		at := email.Date
		if at.IsZero() {
			at = r.now()
		}
		if err := r.store.TouchLeadContact(ctx, matchedID, at); err != nil {
			return eris.Wrap(err, "runner: touch lead contact")
		}
		log.Debug("run: duplicate lead", zap.String("lead_id", matchedID))
		stats.EmailsProcessed++
		return r.mark(ctx, user, email.ID, purpose)
	}

	stats.State = model.StatePersisting
	if err := r.persist(ctx, cand); err != nil {
		return eris.Wrap(err, "runner: persist candidate")
	}
	stats.Created++
	stats.EmailsProcessed++
	log.Info("run: created draft", zap.String("kind", string(cand.Kind)))
	return r.mark(ctx, user, email.ID, purpose)
}

func (r *Runner) mark(ctx context.Context, user model.User, emailID string, purpose model.ProcessPurpose) error {
	if err := r.source.MarkProcessed(ctx, user, emailID, purpose); err != nil {
		return eris.Wrapf(err, "runner: mark %s processed", emailID)
	}
	return nil
}

func (r *Runner) persist(ctx context.Context, cand *model.Candidate) error {
	switch {
	case cand.Event != nil:
		return r.store.CreateEvent(ctx, cand.Event)
	case cand.Lead != nil:
		return r.store.CreateLead(ctx, cand.Lead)
	case cand.Invoice != nil:
		return r.store.CreateInvoice(ctx, cand.Invoice)
	case cand.Expense != nil:
		return r.store.CreateExpense(ctx, cand.Expense)
	case cand.Task != nil:
		return r.store.CreateTask(ctx, cand.Task)
	default:
		return eris.New("runner: candidate carries no entity")
	}
}

// createIntegrationTask leaves the user a task to reconnect their mailbox.
// Created at most once: skipped while an open task with the same title
// exists.
func (r *Runner) createIntegrationTask(ctx context.Context, user model.User) error {
	const title = "Reconnect your email account"

	open, err := r.store.ListOpenTasks(ctx, user.ID)
	if err != nil {
		return eris.Wrap(err, "runner: list open tasks")
	}
	for _, t := range open {
		if t.Title == title {
			return nil
		}
	}
	return r.store.CreateTask(ctx, &model.Task{
		UserID:      user.ID,
		Title:       title,
		Description: "Email processing is paused because no mailbox is linked.",
		Priority:    model.PriorityHigh,
		Status:      model.TaskStatusOpen,
	})
}

// runScheduledActions performs the recurring follow-up work that depends
// only on stored state: lead re-contact nudges, the open-task digest, and
// due-date invoice reminders. Overdue status bumps happen regardless of
// notification settings; outbound notifications require the user's opt-in
// and only then advance their cooldowns.
func (r *Runner) runScheduledActions(ctx context.Context, user model.User, prefs model.Preferences, stats *model.UserRunStats) error {
	now := r.now()

	// Invoice status upkeep first: unpaid and past due means overdue.
	unpaid, err := r.store.ListUnpaidInvoices(ctx, user.ID)
	if err != nil {
		return eris.Wrap(err, "runner: list unpaid invoices")
	}
	for i, inv := range unpaid {
		if inv.Status != model.InvoiceStatusOverdue && now.After(inv.DueDate) {
			if err := r.store.UpdateInvoiceStatus(ctx, inv.ID, model.InvoiceStatusOverdue); err != nil {
				return eris.Wrap(err, "runner: mark invoice overdue")
			}
			unpaid[i].Status = model.InvoiceStatusOverdue
			stats.PriorityUpdated++
		}
	}

	if !prefs.EmailNotifications {
		return nil
	}

	// Lead re-contact nudges.
	due, err := r.store.ListLeadsDueForContact(ctx, user.ID, now)
	if err != nil {
		return eris.Wrap(err, "runner: list leads due for contact")
	}
	for _, lead := range due {
		if !r.scheduler.CanRecontact(lead, now) {
			continue
		}
		if err := r.notifier.SendLeadFollowUp(ctx, user, lead); err != nil {
			return eris.Wrap(err, "runner: send lead follow-up")
		}
		if err := r.scheduler.RecordRecontact(ctx, &lead, now); err != nil {
			return err
		}
		stats.FollowUpsSent++
	}

	// Open-task digest.
	open, err := r.store.ListOpenTasks(ctx, user.ID)
	if err != nil {
		return eris.Wrap(err, "runner: list open tasks")
	}
	if len(open) > 0 {
		ok, err := r.scheduler.CanSendTaskDigest(ctx, user.ID, now)
		if err != nil {
			return err
		}
		if ok {
			if err := r.notifier.SendTaskDigest(ctx, user, open); err != nil {
				return eris.Wrap(err, "runner: send task digest")
			}
			if err := r.scheduler.RecordTaskDigest(ctx, user.ID, now); err != nil {
				return err
			}
			stats.FollowUpsSent++
		}
	}

	// Invoice due-date reminders, one per policy offset.
	for _, inv := range unpaid {
		offsets, err := r.scheduler.DueInvoiceOffsets(ctx, inv, now)
		if err != nil {
			return err
		}
		for _, offset := range offsets {
			if err := r.notifier.SendInvoiceReminder(ctx, user, inv, offset); err != nil {
				return eris.Wrap(err, "runner: send invoice reminder")
			}
			if err := r.scheduler.RecordInvoiceReminder(ctx, inv.ID, offset, now); err != nil {
				return err
			}
			stats.FollowUpsSent++
		}
	}

	return nil
}
