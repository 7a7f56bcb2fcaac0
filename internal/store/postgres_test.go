package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaymind/autopilot/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewPostgresFromPool(pool), pool
}

func TestPostgres_GetUser(t *testing.T) {
	ctx := context.Background()
	st, pool := newMockStore(t)

	created := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	pool.ExpectQuery("SELECT id, email, name, preferences, created_at FROM users").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "preferences", "created_at"}).
			AddRow("u1", "owner@me.com", "Owner", `{"pauseAI": false}`, created))

	user, err := st.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "owner@me.com", user.Email)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgres_GetUserNotFound(t *testing.T) {
	ctx := context.Background()
	st, pool := newMockStore(t)

	pool.ExpectQuery("SELECT id, email, name, preferences, created_at FROM users").
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name", "preferences", "created_at"}))

	_, err := st.GetUser(ctx, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgres_CreateLeadAssignsID(t *testing.T) {
	ctx := context.Background()
	st, pool := newMockStore(t)

	pool.ExpectExec("INSERT INTO leads").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	lead := &model.Lead{UserID: "u1", Name: "Dana Reyes", Email: "dana@prospect.io"}
	require.NoError(t, st.CreateLead(ctx, lead))
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, model.LeadStatusNew, lead.Status)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgres_ListLeadsDueForContact(t *testing.T) {
	ctx := context.Background()
	st, pool := newMockStore(t)

	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -10)
	cols := []string{"id", "user_id", "source_email_id", "name", "email", "company", "phone",
		"status", "notes", "last_contact_at", "next_contact_at", "draft", "confidence", "created_at"}
	pool.ExpectQuery("SELECT (.+) FROM leads").
		WithArgs("u1", now.UTC()).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("l1", "u1", "m1", "Dana Reyes", "dana@prospect.io", "", "",
				model.LeadStatusNew, "", &last, nil, true, 0.9, now.AddDate(0, 0, -11)))

	leads, err := st.ListLeadsDueForContact(ctx, "u1", now)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Dana Reyes", leads[0].Name)
	require.NotNil(t, leads[0].LastContactAt)
	assert.Nil(t, leads[0].NextContactAt)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgres_UpdateLeadStatusNotFound(t *testing.T) {
	ctx := context.Background()
	st, pool := newMockStore(t)

	pool.ExpectExec("UPDATE leads SET status").
		WithArgs("lost", "nope").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := st.UpdateLeadStatus(ctx, "nope", model.LeadStatusLost)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lead not found")
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgres_AcquireRunLock(t *testing.T) {
	ctx := context.Background()
	st, pool := newMockStore(t)

	pool.ExpectExec("INSERT INTO run_locks").
		WithArgs("u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("INSERT INTO run_locks").
		WithArgs("u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	acquired, err := st.AcquireRunLock(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = st.AcquireRunLock(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, acquired, "conflicting insert affects no rows")
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgres_LastTaskReminder(t *testing.T) {
	ctx := context.Background()
	st, pool := newMockStore(t)

	pool.ExpectQuery("SELECT last_sent_at FROM task_reminders").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"last_sent_at"}))

	at, err := st.LastTaskReminder(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, at, "no row means never sent")

	sent := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	pool.ExpectQuery("SELECT last_sent_at FROM task_reminders").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"last_sent_at"}).AddRow(sent))

	at, err = st.LastTaskReminder(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.True(t, at.Equal(sent))
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgres_InvoiceReminderSent(t *testing.T) {
	ctx := context.Background()
	st, pool := newMockStore(t)

	pool.ExpectQuery("SELECT 1 FROM invoice_reminders").
		WithArgs("inv1", -1).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}))

	sent, err := st.InvoiceReminderSent(ctx, "inv1", -1)
	require.NoError(t, err)
	assert.False(t, sent)

	pool.ExpectQuery("SELECT 1 FROM invoice_reminders").
		WithArgs("inv1", -1).
		WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))

	sent, err = st.InvoiceReminderSent(ctx, "inv1", -1)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.NoError(t, pool.ExpectationsWereMet())
}
