package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/relaymind/autopilot/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. Tests substitute a
// pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	email       TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL DEFAULT '',
	preferences TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id         TEXT NOT NULL REFERENCES users(id),
	source_email_id TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL,
	start_time      TIMESTAMPTZ NOT NULL,
	end_time        TIMESTAMPTZ NOT NULL,
	attendees       JSONB NOT NULL DEFAULT '[]',
	location        TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT '',
	draft           BOOLEAN NOT NULL DEFAULT true,
	confidence      DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id         TEXT NOT NULL REFERENCES users(id),
	source_email_id TEXT NOT NULL DEFAULT '',
	name            TEXT NOT NULL,
	email           TEXT NOT NULL,
	company         TEXT NOT NULL DEFAULT '',
	phone           TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'new',
	notes           TEXT NOT NULL DEFAULT '',
	last_contact_at TIMESTAMPTZ,
	next_contact_at TIMESTAMPTZ,
	draft           BOOLEAN NOT NULL DEFAULT true,
	confidence      DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS invoices (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id         TEXT NOT NULL REFERENCES users(id),
	source_email_id TEXT NOT NULL DEFAULT '',
	lead_id         TEXT NOT NULL DEFAULT '',
	client_name     TEXT NOT NULL,
	amount          DOUBLE PRECISION NOT NULL DEFAULT 0,
	currency        TEXT NOT NULL DEFAULT 'USD',
	tax_rate        DOUBLE PRECISION NOT NULL DEFAULT 0,
	status          TEXT NOT NULL DEFAULT 'draft',
	issue_date      TIMESTAMPTZ NOT NULL,
	due_date        TIMESTAMPTZ NOT NULL,
	notes           TEXT NOT NULL DEFAULT '',
	draft           BOOLEAN NOT NULL DEFAULT true,
	confidence      DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS expenses (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id         TEXT NOT NULL REFERENCES users(id),
	source_email_id TEXT NOT NULL DEFAULT '',
	vendor          TEXT NOT NULL,
	amount          DOUBLE PRECISION NOT NULL DEFAULT 0,
	currency        TEXT NOT NULL DEFAULT 'USD',
	category        TEXT NOT NULL DEFAULT '',
	incurred_at     TIMESTAMPTZ NOT NULL,
	draft           BOOLEAN NOT NULL DEFAULT true,
	confidence      DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tasks (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id         TEXT NOT NULL REFERENCES users(id),
	source_email_id TEXT NOT NULL DEFAULT '',
	lead_id         TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	priority        TEXT NOT NULL DEFAULT 'medium',
	status          TEXT NOT NULL DEFAULT 'open',
	due_date        TIMESTAMPTZ,
	draft           BOOLEAN NOT NULL DEFAULT true,
	confidence      DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS task_reminders (
	user_id      TEXT PRIMARY KEY REFERENCES users(id),
	last_sent_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS invoice_reminders (
	invoice_id  TEXT NOT NULL REFERENCES invoices(id),
	offset_days INTEGER NOT NULL,
	sent_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (invoice_id, offset_days)
);

CREATE TABLE IF NOT EXISTS run_locks (
	user_id     TEXT PRIMARY KEY,
	acquired_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_user_id ON events(user_id);
CREATE INDEX IF NOT EXISTS idx_leads_user_id ON leads(user_id);
CREATE INDEX IF NOT EXISTS idx_leads_next_contact_at ON leads(next_contact_at);
CREATE INDEX IF NOT EXISTS idx_invoices_user_status ON invoices(user_id, status);
CREATE INDEX IF NOT EXISTS idx_expenses_user_id ON expenses(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Users

func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	fillID(&user.ID)
	fillTime(&user.CreatedAt)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, preferences, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.Name, user.Preferences, user.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert user")
}

func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, preferences, created_at FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Preferences, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("user not found: %s", userID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get user")
	}
	return &u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, name, preferences, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list users")
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Preferences, &u.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan user")
		}
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "postgres: list users iterate")
}

// Leads

const pgLeadColumns = `id, user_id, source_email_id, name, email, company, phone, status, notes,
	last_contact_at, next_contact_at, draft, confidence, created_at`

func (s *PostgresStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	fillID(&lead.ID)
	fillTime(&lead.CreatedAt)
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (`+pgLeadColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		lead.ID, lead.UserID, lead.SourceEmailID, lead.Name, lead.Email, lead.Company, lead.Phone,
		string(lead.Status), lead.Notes, lead.LastContactAt, lead.NextContactAt,
		lead.Draft, lead.Confidence, lead.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert lead")
}

func (s *PostgresStore) ListLeads(ctx context.Context, userID string) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgLeadColumns+` FROM leads WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	return pgCollectLeads(rows)
}

func (s *PostgresStore) ListLeadsDueForContact(ctx context.Context, userID string, now time.Time) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgLeadColumns+` FROM leads
		 WHERE user_id = $1 AND status IN ('new', 'contacted')
		 AND (next_contact_at IS NULL OR next_contact_at <= $2)
		 ORDER BY created_at`,
		userID, now.UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads due for contact")
	}
	return pgCollectLeads(rows)
}

func (s *PostgresStore) TouchLeadContact(ctx context.Context, leadID string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE leads SET last_contact_at = $1 WHERE id = $2
		 AND (last_contact_at IS NULL OR last_contact_at < $1)`,
		at.UTC(), leadID,
	)
	return eris.Wrapf(err, "postgres: touch lead contact %s", leadID)
}

func (s *PostgresStore) UpdateLeadSchedule(ctx context.Context, leadID string, lastContact, nextContact time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET last_contact_at = $1, next_contact_at = $2 WHERE id = $3`,
		lastContact.UTC(), nextContact.UTC(), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead schedule %s", leadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", leadID)
	}
	return nil
}

func (s *PostgresStore) UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET status = $1 WHERE id = $2`, string(status), leadID)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead status %s", leadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", leadID)
	}
	return nil
}

// Events

func (s *PostgresStore) CreateEvent(ctx context.Context, event *model.Event) error {
	fillID(&event.ID)
	fillTime(&event.CreatedAt)
	attendeesJSON, err := json.Marshal(event.Attendees)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal attendees")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO events (id, user_id, source_email_id, title, start_time, end_time, attendees,
		 location, notes, draft, confidence, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		event.ID, event.UserID, event.SourceEmailID, event.Title,
		event.StartTime.UTC(), event.EndTime.UTC(), attendeesJSON,
		event.Location, event.Notes, event.Draft, event.Confidence, event.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert event")
}

func (s *PostgresStore) ListEvents(ctx context.Context, userID string) ([]model.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, source_email_id, title, start_time, end_time, attendees,
		 location, notes, draft, confidence, created_at
		 FROM events WHERE user_id = $1 ORDER BY start_time`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list events")
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var attendeesJSON []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.SourceEmailID, &e.Title, &e.StartTime, &e.EndTime,
			&attendeesJSON, &e.Location, &e.Notes, &e.Draft, &e.Confidence, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan event")
		}
		if err := json.Unmarshal(attendeesJSON, &e.Attendees); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal attendees")
		}
		events = append(events, e)
	}
	return events, eris.Wrap(rows.Err(), "postgres: list events iterate")
}

// Tasks

func (s *PostgresStore) CreateTask(ctx context.Context, task *model.Task) error {
	fillID(&task.ID)
	fillTime(&task.CreatedAt)
	if task.Status == "" {
		task.Status = model.TaskStatusOpen
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tasks (id, user_id, source_email_id, lead_id, title, description, priority,
		 status, due_date, draft, confidence, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		task.ID, task.UserID, task.SourceEmailID, task.LeadID, task.Title, task.Description,
		string(task.Priority), string(task.Status), task.DueDate, task.Draft, task.Confidence, task.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert task")
}

func (s *PostgresStore) ListOpenTasks(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, source_email_id, lead_id, title, description, priority, status,
		 due_date, draft, confidence, created_at
		 FROM tasks WHERE user_id = $1 AND status = 'open'
		 ORDER BY due_date NULLS LAST, created_at`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list open tasks")
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.SourceEmailID, &t.LeadID, &t.Title, &t.Description,
			&t.Priority, &t.Status, &t.DueDate, &t.Draft, &t.Confidence, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan task")
		}
		tasks = append(tasks, t)
	}
	return tasks, eris.Wrap(rows.Err(), "postgres: list open tasks iterate")
}

func (s *PostgresStore) UpdateTaskStatus(ctx context.Context, taskID string, status model.TaskStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET status = $1 WHERE id = $2`, string(status), taskID)
	if err != nil {
		return eris.Wrapf(err, "postgres: update task status %s", taskID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("task not found: %s", taskID)
	}
	return nil
}

// Invoices

const pgInvoiceColumns = `id, user_id, source_email_id, lead_id, client_name, amount, currency,
	tax_rate, status, issue_date, due_date, notes, draft, confidence, created_at`

func (s *PostgresStore) CreateInvoice(ctx context.Context, invoice *model.Invoice) error {
	fillID(&invoice.ID)
	fillTime(&invoice.CreatedAt)
	if invoice.Status == "" {
		invoice.Status = model.InvoiceStatusDraft
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO invoices (`+pgInvoiceColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		invoice.ID, invoice.UserID, invoice.SourceEmailID, invoice.LeadID, invoice.ClientName,
		invoice.Amount, invoice.Currency, invoice.TaxRate, string(invoice.Status),
		invoice.IssueDate.UTC(), invoice.DueDate.UTC(), invoice.Notes,
		invoice.Draft, invoice.Confidence, invoice.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert invoice")
}

func (s *PostgresStore) ListInvoices(ctx context.Context, userID string) ([]model.Invoice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgInvoiceColumns+` FROM invoices WHERE user_id = $1 ORDER BY issue_date`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list invoices")
	}
	return pgCollectInvoices(rows)
}

func (s *PostgresStore) ListUnpaidInvoices(ctx context.Context, userID string) ([]model.Invoice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgInvoiceColumns+` FROM invoices
		 WHERE user_id = $1 AND status != 'paid' ORDER BY due_date`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list unpaid invoices")
	}
	return pgCollectInvoices(rows)
}

func (s *PostgresStore) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status model.InvoiceStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE invoices SET status = $1 WHERE id = $2`, string(status), invoiceID)
	if err != nil {
		return eris.Wrapf(err, "postgres: update invoice status %s", invoiceID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("invoice not found: %s", invoiceID)
	}
	return nil
}

// Expenses

func (s *PostgresStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	fillID(&expense.ID)
	fillTime(&expense.CreatedAt)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO expenses (id, user_id, source_email_id, vendor, amount, currency, category,
		 incurred_at, draft, confidence, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		expense.ID, expense.UserID, expense.SourceEmailID, expense.Vendor, expense.Amount,
		expense.Currency, expense.Category, expense.IncurredAt.UTC(),
		expense.Draft, expense.Confidence, expense.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert expense")
}

func (s *PostgresStore) ListExpenses(ctx context.Context, userID string) ([]model.Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, source_email_id, vendor, amount, currency, category, incurred_at,
		 draft, confidence, created_at
		 FROM expenses WHERE user_id = $1 ORDER BY incurred_at`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list expenses")
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.SourceEmailID, &e.Vendor, &e.Amount, &e.Currency,
			&e.Category, &e.IncurredAt, &e.Draft, &e.Confidence, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan expense")
		}
		expenses = append(expenses, e)
	}
	return expenses, eris.Wrap(rows.Err(), "postgres: list expenses iterate")
}

// Cooldown state

func (s *PostgresStore) LastTaskReminder(ctx context.Context, userID string) (*time.Time, error) {
	var at time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT last_sent_at FROM task_reminders WHERE user_id = $1`, userID).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: last task reminder")
	}
	return &at, nil
}

func (s *PostgresStore) SetLastTaskReminder(ctx context.Context, userID string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO task_reminders (user_id, last_sent_at) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET last_sent_at = $2`,
		userID, at.UTC(),
	)
	return eris.Wrap(err, "postgres: set last task reminder")
}

func (s *PostgresStore) InvoiceReminderSent(ctx context.Context, invoiceID string, offsetDays int) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM invoice_reminders WHERE invoice_id = $1 AND offset_days = $2`,
		invoiceID, offsetDays).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "postgres: invoice reminder sent")
	}
	return true, nil
}

func (s *PostgresStore) MarkInvoiceReminderSent(ctx context.Context, invoiceID string, offsetDays int, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO invoice_reminders (invoice_id, offset_days, sent_at) VALUES ($1, $2, $3)
		 ON CONFLICT (invoice_id, offset_days) DO NOTHING`,
		invoiceID, offsetDays, at.UTC(),
	)
	return eris.Wrap(err, "postgres: mark invoice reminder sent")
}

// Run locks

func (s *PostgresStore) AcquireRunLock(ctx context.Context, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO run_locks (user_id, acquired_at) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, time.Now().UTC(),
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: acquire run lock")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ReleaseRunLock(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM run_locks WHERE user_id = $1`, userID)
	return eris.Wrap(err, "postgres: release run lock")
}

// helpers

func pgCollectLeads(rows pgx.Rows) ([]model.Lead, error) {
	defer rows.Close()
	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.UserID, &l.SourceEmailID, &l.Name, &l.Email, &l.Company,
			&l.Phone, &l.Status, &l.Notes, &l.LastContactAt, &l.NextContactAt,
			&l.Draft, &l.Confidence, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: leads iterate")
}

func pgCollectInvoices(rows pgx.Rows) ([]model.Invoice, error) {
	defer rows.Close()
	var invoices []model.Invoice
	for rows.Next() {
		var inv model.Invoice
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.SourceEmailID, &inv.LeadID, &inv.ClientName,
			&inv.Amount, &inv.Currency, &inv.TaxRate, &inv.Status, &inv.IssueDate, &inv.DueDate,
			&inv.Notes, &inv.Draft, &inv.Confidence, &inv.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan invoice")
		}
		invoices = append(invoices, inv)
	}
	return invoices, eris.Wrap(rows.Err(), "postgres: invoices iterate")
}
