package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaymind/autopilot/internal/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func mustUser(t *testing.T, st *SQLiteStore) model.User {
	t.Helper()
	user := &model.User{Email: "owner@me.com", Name: "Owner"}
	require.NoError(t, st.CreateUser(context.Background(), user))
	return *user
}

func TestSQLite_UserRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	user := &model.User{Email: "owner@me.com", Name: "Owner", Preferences: `{"pauseAI": true}`}
	require.NoError(t, st.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID, "ID assigned on insert")
	assert.False(t, user.CreatedAt.IsZero())

	got, err := st.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.Preferences, got.Preferences)

	_, err = st.GetUser(ctx, "nope")
	assert.Error(t, err)

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSQLite_DuplicateEmailRejected(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	mustUser(t, st)

	err := st.CreateUser(ctx, &model.User{Email: "owner@me.com"})
	assert.Error(t, err)
}

func TestSQLite_LeadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	user := mustUser(t, st)

	lead := &model.Lead{
		UserID: user.ID, SourceEmailID: "m1",
		Name: "Dana Reyes", Email: "dana@prospect.io", Company: "Prospect Inc",
		Draft: true, Confidence: 0.9,
	}
	require.NoError(t, st.CreateLead(ctx, lead))
	assert.Equal(t, model.LeadStatusNew, lead.Status, "status defaulted")

	leads, err := st.ListLeads(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Dana Reyes", leads[0].Name)
	assert.Nil(t, leads[0].LastContactAt)
	assert.True(t, leads[0].Draft)
	assert.InDelta(t, 0.9, leads[0].Confidence, 1e-9)
}

func TestSQLite_ListLeadsDueForContact(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	user := mustUser(t, st)
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 7)

	fresh := &model.Lead{UserID: user.ID, Name: "Fresh", Email: "fresh@x.com"}
	scheduled := &model.Lead{UserID: user.ID, Name: "Scheduled", Email: "sched@x.com", NextContactAt: &past}
	deferred := &model.Lead{UserID: user.ID, Name: "Deferred", Email: "later@x.com", NextContactAt: &future}
	lost := &model.Lead{UserID: user.ID, Name: "Lost", Email: "lost@x.com", Status: model.LeadStatusLost}
	for _, l := range []*model.Lead{fresh, scheduled, deferred, lost} {
		require.NoError(t, st.CreateLead(ctx, l))
	}

	due, err := st.ListLeadsDueForContact(ctx, user.ID, now)
	require.NoError(t, err)
	var names []string
	for _, l := range due {
		names = append(names, l.Name)
	}
	assert.ElementsMatch(t, []string{"Fresh", "Scheduled"}, names)
}

func TestSQLite_TouchLeadContactMonotonic(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	user := mustUser(t, st)

	lead := &model.Lead{UserID: user.ID, Name: "Dana", Email: "dana@x.com"}
	require.NoError(t, st.CreateLead(ctx, lead))

	newer := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	older := newer.AddDate(0, 0, -5)

	require.NoError(t, st.TouchLeadContact(ctx, lead.ID, newer))
	// An older correspondence date must not roll the timestamp back.
	require.NoError(t, st.TouchLeadContact(ctx, lead.ID, older))

	leads, err := st.ListLeads(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, leads[0].LastContactAt)
	assert.True(t, leads[0].LastContactAt.Equal(newer))
}

func TestSQLite_UpdateLeadScheduleAndStatus(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	user := mustUser(t, st)

	lead := &model.Lead{UserID: user.ID, Name: "Dana", Email: "dana@x.com"}
	require.NoError(t, st.CreateLead(ctx, lead))

	last := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	next := last.AddDate(0, 0, 14)
	require.NoError(t, st.UpdateLeadSchedule(ctx, lead.ID, last, next))
	require.NoError(t, st.UpdateLeadStatus(ctx, lead.ID, model.LeadStatusContacted))

	leads, err := st.ListLeads(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusContacted, leads[0].Status)
	require.NotNil(t, leads[0].NextContactAt)
	assert.True(t, leads[0].NextContactAt.Equal(next))

	assert.Error(t, st.UpdateLeadSchedule(ctx, "nope", last, next))
	assert.Error(t, st.UpdateLeadStatus(ctx, "nope", model.LeadStatusLost))
}

func TestSQLite_EventAttendeesRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	user := mustUser(t, st)

	start := time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC)
	event := &model.Event{
		UserID: user.ID, SourceEmailID: "m1", Title: "Quick sync",
		StartTime: start, EndTime: start.Add(30 * time.Minute),
		Attendees: []string{"alice@client.com", "owner@me.com"},
		Draft:     true,
	}
	require.NoError(t, st.CreateEvent(ctx, event))

	events, err := st.ListEvents(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"alice@client.com", "owner@me.com"}, events[0].Attendees)
	assert.True(t, events[0].StartTime.Equal(start))
}

func TestSQLite_OpenTasksFilteredAndOrdered(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	user := mustUser(t, st)

	soon := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	later := soon.AddDate(0, 0, 10)
	require.NoError(t, st.CreateTask(ctx, &model.Task{UserID: user.ID, Title: "No due date"}))
	require.NoError(t, st.CreateTask(ctx, &model.Task{UserID: user.ID, Title: "Later", DueDate: &later}))
	require.NoError(t, st.CreateTask(ctx, &model.Task{UserID: user.ID, Title: "Soon", DueDate: &soon}))

	done := &model.Task{UserID: user.ID, Title: "Done", Status: model.TaskStatusDone}
	require.NoError(t, st.CreateTask(ctx, done))

	tasks, err := st.ListOpenTasks(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	// Dated tasks first, earliest due date leading; undated last.
	assert.Equal(t, "Soon", tasks[0].Title)
	assert.Equal(t, "Later", tasks[1].Title)
	assert.Equal(t, "No due date", tasks[2].Title)

	require.NoError(t, st.UpdateTaskStatus(ctx, tasks[0].ID, model.TaskStatusDone))
	tasks, err = st.ListOpenTasks(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestSQLite_UnpaidInvoices(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	user := mustUser(t, st)

	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mk := func(status model.InvoiceStatus, due time.Time) *model.Invoice {
		inv := &model.Invoice{
			UserID: user.ID, ClientName: "Acme Corp", Amount: 100,
			Status: status, IssueDate: issue, DueDate: due,
		}
		require.NoError(t, st.CreateInvoice(ctx, inv))
		return inv
	}
	mk(model.InvoiceStatusPaid, issue.AddDate(0, 0, 10))
	sent := mk(model.InvoiceStatusSent, issue.AddDate(0, 0, 20))
	draft := mk(model.InvoiceStatusDraft, issue.AddDate(0, 0, 5))

	unpaid, err := st.ListUnpaidInvoices(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, unpaid, 2)
	// Ordered by due date.
	assert.Equal(t, draft.ID, unpaid[0].ID)
	assert.Equal(t, sent.ID, unpaid[1].ID)

	require.NoError(t, st.UpdateInvoiceStatus(ctx, sent.ID, model.InvoiceStatusOverdue))
	all, err := st.ListInvoices(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLite_ExpenseRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	user := mustUser(t, st)

	incurred := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	expense := &model.Expense{
		UserID: user.ID, Vendor: "Cloud Hosting LLC", Amount: 89,
		Currency: "USD", IncurredAt: incurred, Draft: true,
	}
	require.NoError(t, st.CreateExpense(ctx, expense))

	expenses, err := st.ListExpenses(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Cloud Hosting LLC", expenses[0].Vendor)
	assert.True(t, expenses[0].IncurredAt.Equal(incurred))
}

func TestSQLite_TaskReminderUpsert(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	user := mustUser(t, st)

	at, err := st.LastTaskReminder(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, at, "no reminder recorded yet")

	first := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.SetLastTaskReminder(ctx, user.ID, first))
	second := first.Add(8 * time.Hour)
	require.NoError(t, st.SetLastTaskReminder(ctx, user.ID, second))

	at, err = st.LastTaskReminder(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.True(t, at.Equal(second))
}

func TestSQLite_InvoiceReminderFiresOnce(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	user := mustUser(t, st)

	inv := &model.Invoice{
		UserID: user.ID, ClientName: "Acme Corp",
		IssueDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.CreateInvoice(ctx, inv))

	sent, err := st.InvoiceReminderSent(ctx, inv.ID, -1)
	require.NoError(t, err)
	assert.False(t, sent)

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	require.NoError(t, st.MarkInvoiceReminderSent(ctx, inv.ID, -1, now))
	// A second mark for the same offset is a no-op, not an error.
	require.NoError(t, st.MarkInvoiceReminderSent(ctx, inv.ID, -1, now.Add(time.Hour)))

	sent, err = st.InvoiceReminderSent(ctx, inv.ID, -1)
	require.NoError(t, err)
	assert.True(t, sent)

	// Offsets are tracked independently.
	sent, err = st.InvoiceReminderSent(ctx, inv.ID, 0)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestSQLite_RunLock(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	user := mustUser(t, st)

	acquired, err := st.AcquireRunLock(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = st.AcquireRunLock(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, acquired, "lock is held")

	require.NoError(t, st.ReleaseRunLock(ctx, user.ID))

	acquired, err = st.AcquireRunLock(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, acquired, "released lock can be re-acquired")
}
