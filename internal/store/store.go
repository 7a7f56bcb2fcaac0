package store

import (
	"context"
	"time"

	"github.com/relaymind/autopilot/internal/model"
)

// Store defines the persistence interface for the pipeline. Implementations
// assign IDs and creation timestamps on Create calls when unset.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	// Leads
	CreateLead(ctx context.Context, lead *model.Lead) error
	ListLeads(ctx context.Context, userID string) ([]model.Lead, error)
	ListLeadsDueForContact(ctx context.Context, userID string, now time.Time) ([]model.Lead, error)
	TouchLeadContact(ctx context.Context, leadID string, at time.Time) error
	UpdateLeadSchedule(ctx context.Context, leadID string, lastContact, nextContact time.Time) error
	UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) error

	// Events
	CreateEvent(ctx context.Context, event *model.Event) error
	ListEvents(ctx context.Context, userID string) ([]model.Event, error)

	// Tasks
	CreateTask(ctx context.Context, task *model.Task) error
	ListOpenTasks(ctx context.Context, userID string) ([]model.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status model.TaskStatus) error

	// Invoices
	CreateInvoice(ctx context.Context, invoice *model.Invoice) error
	ListInvoices(ctx context.Context, userID string) ([]model.Invoice, error)
	ListUnpaidInvoices(ctx context.Context, userID string) ([]model.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status model.InvoiceStatus) error

	// Expenses
	CreateExpense(ctx context.Context, expense *model.Expense) error
	ListExpenses(ctx context.Context, userID string) ([]model.Expense, error)

	// Cooldown state
	LastTaskReminder(ctx context.Context, userID string) (*time.Time, error)
	SetLastTaskReminder(ctx context.Context, userID string, at time.Time) error
	InvoiceReminderSent(ctx context.Context, invoiceID string, offsetDays int) (bool, error)
	MarkInvoiceReminderSent(ctx context.Context, invoiceID string, offsetDays int, at time.Time) error

	// Run locks. AcquireRunLock returns false when another batch run holds
	// the user's lock; overlapping runs are the double-fire hazard.
	AcquireRunLock(ctx context.Context, userID string) (bool, error)
	ReleaseRunLock(ctx context.Context, userID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
