package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/relaymind/autopilot/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	email       TEXT NOT NULL UNIQUE,
	name        TEXT NOT NULL DEFAULT '',
	preferences TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS events (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL REFERENCES users(id),
	source_email_id TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL,
	start_time      DATETIME NOT NULL,
	end_time        DATETIME NOT NULL,
	attendees       TEXT NOT NULL DEFAULT '[]',
	location        TEXT NOT NULL DEFAULT '',
	notes           TEXT NOT NULL DEFAULT '',
	draft           INTEGER NOT NULL DEFAULT 1,
	confidence      REAL NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL REFERENCES users(id),
	source_email_id TEXT NOT NULL DEFAULT '',
	name            TEXT NOT NULL,
	email           TEXT NOT NULL,
	company         TEXT NOT NULL DEFAULT '',
	phone           TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT 'new',
	notes           TEXT NOT NULL DEFAULT '',
	last_contact_at DATETIME,
	next_contact_at DATETIME,
	draft           INTEGER NOT NULL DEFAULT 1,
	confidence      REAL NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS invoices (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL REFERENCES users(id),
	source_email_id TEXT NOT NULL DEFAULT '',
	lead_id         TEXT NOT NULL DEFAULT '',
	client_name     TEXT NOT NULL,
	amount          REAL NOT NULL DEFAULT 0,
	currency        TEXT NOT NULL DEFAULT 'USD',
	tax_rate        REAL NOT NULL DEFAULT 0,
	status          TEXT NOT NULL DEFAULT 'draft',
	issue_date      DATETIME NOT NULL,
	due_date        DATETIME NOT NULL,
	notes           TEXT NOT NULL DEFAULT '',
	draft           INTEGER NOT NULL DEFAULT 1,
	confidence      REAL NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS expenses (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL REFERENCES users(id),
	source_email_id TEXT NOT NULL DEFAULT '',
	vendor          TEXT NOT NULL,
	amount          REAL NOT NULL DEFAULT 0,
	currency        TEXT NOT NULL DEFAULT 'USD',
	category        TEXT NOT NULL DEFAULT '',
	incurred_at     DATETIME NOT NULL,
	draft           INTEGER NOT NULL DEFAULT 1,
	confidence      REAL NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS tasks (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL REFERENCES users(id),
	source_email_id TEXT NOT NULL DEFAULT '',
	lead_id         TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	priority        TEXT NOT NULL DEFAULT 'medium',
	status          TEXT NOT NULL DEFAULT 'open',
	due_date        DATETIME,
	draft           INTEGER NOT NULL DEFAULT 1,
	confidence      REAL NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS task_reminders (
	user_id      TEXT PRIMARY KEY REFERENCES users(id),
	last_sent_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS invoice_reminders (
	invoice_id  TEXT NOT NULL REFERENCES invoices(id),
	offset_days INTEGER NOT NULL,
	sent_at     DATETIME NOT NULL,
	PRIMARY KEY (invoice_id, offset_days)
);

CREATE TABLE IF NOT EXISTS run_locks (
	user_id     TEXT PRIMARY KEY,
	acquired_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_user_id ON events(user_id);
CREATE INDEX IF NOT EXISTS idx_leads_user_id ON leads(user_id);
CREATE INDEX IF NOT EXISTS idx_leads_next_contact_at ON leads(next_contact_at);
CREATE INDEX IF NOT EXISTS idx_invoices_user_status ON invoices(user_id, status);
CREATE INDEX IF NOT EXISTS idx_expenses_user_id ON expenses(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Users

func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	fillID(&user.ID)
	fillTime(&user.CreatedAt)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, preferences, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.Preferences, user.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert user")
}

func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, preferences, created_at FROM users WHERE id = ?`, userID)
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Preferences, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("user not found: %s", userID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get user")
	}
	return &u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, name, preferences, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list users")
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Preferences, &u.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan user")
		}
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "sqlite: list users iterate")
}

// Leads

func (s *SQLiteStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	fillID(&lead.ID)
	fillTime(&lead.CreatedAt)
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, user_id, source_email_id, name, email, company, phone, status, notes,
		 last_contact_at, next_contact_at, draft, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.UserID, lead.SourceEmailID, lead.Name, lead.Email, lead.Company, lead.Phone,
		string(lead.Status), lead.Notes, lead.LastContactAt, lead.NextContactAt,
		lead.Draft, lead.Confidence, lead.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert lead")
}

const leadColumns = `id, user_id, source_email_id, name, email, company, phone, status, notes,
	last_contact_at, next_contact_at, draft, confidence, created_at`

func (s *SQLiteStore) ListLeads(ctx context.Context, userID string) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	return collectLeads(rows)
}

func (s *SQLiteStore) ListLeadsDueForContact(ctx context.Context, userID string, now time.Time) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads
		 WHERE user_id = ? AND status IN ('new', 'contacted')
		 AND (next_contact_at IS NULL OR next_contact_at <= ?)
		 ORDER BY created_at`,
		userID, now.UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads due for contact")
	}
	return collectLeads(rows)
}

func (s *SQLiteStore) TouchLeadContact(ctx context.Context, leadID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET last_contact_at = ? WHERE id = ?
		 AND (last_contact_at IS NULL OR last_contact_at < ?)`,
		at.UTC(), leadID, at.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: touch lead contact %s", leadID)
	}
	// Zero rows means the stored timestamp is already newer; not an error.
	_, err = res.RowsAffected()
	return eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) UpdateLeadSchedule(ctx context.Context, leadID string, lastContact, nextContact time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET last_contact_at = ?, next_contact_at = ? WHERE id = ?`,
		lastContact.UTC(), nextContact.UTC(), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead schedule %s", leadID)
	}
	return checkRowsAffected(res, "lead", leadID)
}

func (s *SQLiteStore) UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ? WHERE id = ?`, string(status), leadID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead status %s", leadID)
	}
	return checkRowsAffected(res, "lead", leadID)
}

// Events

func (s *SQLiteStore) CreateEvent(ctx context.Context, event *model.Event) error {
	fillID(&event.ID)
	fillTime(&event.CreatedAt)
	attendeesJSON, err := json.Marshal(event.Attendees)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal attendees")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (id, user_id, source_email_id, title, start_time, end_time, attendees,
		 location, notes, draft, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.SourceEmailID, event.Title,
		event.StartTime.UTC(), event.EndTime.UTC(), string(attendeesJSON),
		event.Location, event.Notes, event.Draft, event.Confidence, event.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert event")
}

func (s *SQLiteStore) ListEvents(ctx context.Context, userID string) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, source_email_id, title, start_time, end_time, attendees,
		 location, notes, draft, confidence, created_at
		 FROM events WHERE user_id = ? ORDER BY start_time`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list events")
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var attendeesJSON string
		if err := rows.Scan(&e.ID, &e.UserID, &e.SourceEmailID, &e.Title, &e.StartTime, &e.EndTime,
			&attendeesJSON, &e.Location, &e.Notes, &e.Draft, &e.Confidence, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan event")
		}
		if err := json.Unmarshal([]byte(attendeesJSON), &e.Attendees); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal attendees")
		}
		events = append(events, e)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: list events iterate")
}

// Tasks

func (s *SQLiteStore) CreateTask(ctx context.Context, task *model.Task) error {
	fillID(&task.ID)
	fillTime(&task.CreatedAt)
	if task.Status == "" {
		task.Status = model.TaskStatusOpen
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, source_email_id, lead_id, title, description, priority,
		 status, due_date, draft, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.UserID, task.SourceEmailID, task.LeadID, task.Title, task.Description,
		string(task.Priority), string(task.Status), task.DueDate, task.Draft, task.Confidence, task.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert task")
}

func (s *SQLiteStore) ListOpenTasks(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, source_email_id, lead_id, title, description, priority, status,
		 due_date, draft, confidence, created_at
		 FROM tasks WHERE user_id = ? AND status = 'open'
		 ORDER BY due_date IS NULL, due_date, created_at`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list open tasks")
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.SourceEmailID, &t.LeadID, &t.Title, &t.Description,
			&t.Priority, &t.Status, &t.DueDate, &t.Draft, &t.Confidence, &t.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan task")
		}
		tasks = append(tasks, t)
	}
	return tasks, eris.Wrap(rows.Err(), "sqlite: list open tasks iterate")
}

func (s *SQLiteStore) UpdateTaskStatus(ctx context.Context, taskID string, status model.TaskStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ? WHERE id = ?`, string(status), taskID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update task status %s", taskID)
	}
	return checkRowsAffected(res, "task", taskID)
}

// Invoices

func (s *SQLiteStore) CreateInvoice(ctx context.Context, invoice *model.Invoice) error {
	fillID(&invoice.ID)
	fillTime(&invoice.CreatedAt)
	if invoice.Status == "" {
		invoice.Status = model.InvoiceStatusDraft
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invoices (id, user_id, source_email_id, lead_id, client_name, amount, currency,
		 tax_rate, status, issue_date, due_date, notes, draft, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID, invoice.UserID, invoice.SourceEmailID, invoice.LeadID, invoice.ClientName,
		invoice.Amount, invoice.Currency, invoice.TaxRate, string(invoice.Status),
		invoice.IssueDate.UTC(), invoice.DueDate.UTC(), invoice.Notes,
		invoice.Draft, invoice.Confidence, invoice.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert invoice")
}

const invoiceColumns = `id, user_id, source_email_id, lead_id, client_name, amount, currency,
	tax_rate, status, issue_date, due_date, notes, draft, confidence, created_at`

func (s *SQLiteStore) ListInvoices(ctx context.Context, userID string) ([]model.Invoice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE user_id = ? ORDER BY issue_date`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list invoices")
	}
	return collectInvoices(rows)
}

func (s *SQLiteStore) ListUnpaidInvoices(ctx context.Context, userID string) ([]model.Invoice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE user_id = ? AND status != 'paid' ORDER BY due_date`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list unpaid invoices")
	}
	return collectInvoices(rows)
}

func (s *SQLiteStore) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status model.InvoiceStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET status = ? WHERE id = ?`, string(status), invoiceID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update invoice status %s", invoiceID)
	}
	return checkRowsAffected(res, "invoice", invoiceID)
}

// Expenses

func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *model.Expense) error {
	fillID(&expense.ID)
	fillTime(&expense.CreatedAt)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, source_email_id, vendor, amount, currency, category,
		 incurred_at, draft, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.UserID, expense.SourceEmailID, expense.Vendor, expense.Amount,
		expense.Currency, expense.Category, expense.IncurredAt.UTC(),
		expense.Draft, expense.Confidence, expense.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert expense")
}

func (s *SQLiteStore) ListExpenses(ctx context.Context, userID string) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, source_email_id, vendor, amount, currency, category, incurred_at,
		 draft, confidence, created_at
		 FROM expenses WHERE user_id = ? ORDER BY incurred_at`, userID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list expenses")
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.SourceEmailID, &e.Vendor, &e.Amount, &e.Currency,
			&e.Category, &e.IncurredAt, &e.Draft, &e.Confidence, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan expense")
		}
		expenses = append(expenses, e)
	}
	return expenses, eris.Wrap(rows.Err(), "sqlite: list expenses iterate")
}

// Cooldown state

func (s *SQLiteStore) LastTaskReminder(ctx context.Context, userID string) (*time.Time, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT last_sent_at FROM task_reminders WHERE user_id = ?`, userID)
	var at time.Time
	err := row.Scan(&at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last task reminder")
	}
	return &at, nil
}

func (s *SQLiteStore) SetLastTaskReminder(ctx context.Context, userID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_reminders (user_id, last_sent_at) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET last_sent_at = excluded.last_sent_at`,
		userID, at.UTC(),
	)
	return eris.Wrap(err, "sqlite: set last task reminder")
}

func (s *SQLiteStore) InvoiceReminderSent(ctx context.Context, invoiceID string, offsetDays int) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM invoice_reminders WHERE invoice_id = ? AND offset_days = ?`,
		invoiceID, offsetDays)
	var one int
	err := row.Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrap(err, "sqlite: invoice reminder sent")
	}
	return true, nil
}

func (s *SQLiteStore) MarkInvoiceReminderSent(ctx context.Context, invoiceID string, offsetDays int, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invoice_reminders (invoice_id, offset_days, sent_at) VALUES (?, ?, ?)
		 ON CONFLICT(invoice_id, offset_days) DO NOTHING`,
		invoiceID, offsetDays, at.UTC(),
	)
	return eris.Wrap(err, "sqlite: mark invoice reminder sent")
}

// Run locks

func (s *SQLiteStore) AcquireRunLock(ctx context.Context, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO run_locks (user_id, acquired_at) VALUES (?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, time.Now().UTC(),
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: acquire run lock")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) ReleaseRunLock(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM run_locks WHERE user_id = ?`, userID)
	return eris.Wrap(err, "sqlite: release run lock")
}

// helpers

func fillID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

func fillTime(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func collectLeads(rows *sql.Rows) ([]model.Lead, error) {
	defer rows.Close()
	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.UserID, &l.SourceEmailID, &l.Name, &l.Email, &l.Company,
			&l.Phone, &l.Status, &l.Notes, &l.LastContactAt, &l.NextContactAt,
			&l.Draft, &l.Confidence, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: leads iterate")
}

func collectInvoices(rows *sql.Rows) ([]model.Invoice, error) {
	defer rows.Close()
	var invoices []model.Invoice
	for rows.Next() {
		var inv model.Invoice
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.SourceEmailID, &inv.LeadID, &inv.ClientName,
			&inv.Amount, &inv.Currency, &inv.TaxRate, &inv.Status, &inv.IssueDate, &inv.DueDate,
			&inv.Notes, &inv.Draft, &inv.Confidence, &inv.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan invoice")
		}
		invoices = append(invoices, inv)
	}
	return invoices, eris.Wrap(rows.Err(), "sqlite: invoices iterate")
}
