package model

import "time"

// User is one tenant account. Preferences holds the raw JSON blob written by
// the settings UI; resolve it once per run with ParsePreferences.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Preferences string    `json:"preferences"`
	CreatedAt   time.Time `json:"created_at"`
}

// LeadStatus tracks a lead through the sales funnel.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

// InvoiceStatus tracks a draft invoice through billing.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// TaskStatus is open until the user (or a digest action) closes it.
type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "open"
	TaskStatusDone TaskStatus = "done"
)

// Priority for tasks. Missing priorities default to medium.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Event is a calendar proposal extracted from an email. Draft events await
// human confirmation before they are treated as scheduled.
type Event struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	SourceEmailID string    `json:"source_email_id"`
	Title         string    `json:"title"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Attendees     []string  `json:"attendees"`
	Location      string    `json:"location,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Draft         bool      `json:"draft"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}

// Lead is a sales contact extracted from an email.
type Lead struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	SourceEmailID string     `json:"source_email_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Company       string     `json:"company,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Status        LeadStatus `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	LastContactAt *time.Time `json:"last_contact_at,omitempty"`
	NextContactAt *time.Time `json:"next_contact_at,omitempty"`
	Draft         bool       `json:"draft"`
	Confidence    float64    `json:"confidence"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Invoice is a receivable draft generated from billable-work emails.
type Invoice struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	SourceEmailID string        `json:"source_email_id"`
	LeadID        string        `json:"lead_id,omitempty"`
	ClientName    string        `json:"client_name"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	TaxRate       float64       `json:"tax_rate"`
	Status        InvoiceStatus `json:"status"`
	IssueDate     time.Time     `json:"issue_date"`
	DueDate       time.Time     `json:"due_date"`
	Notes         string        `json:"notes,omitempty"`
	Draft         bool          `json:"draft"`
	Confidence    float64       `json:"confidence"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Expense is a payable draft generated from receipt/bill emails.
type Expense struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	SourceEmailID string    `json:"source_email_id"`
	Vendor        string    `json:"vendor"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Category      string    `json:"category,omitempty"`
	IncurredAt    time.Time `json:"incurred_at"`
	Draft         bool      `json:"draft"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at"`
}

// Task is a follow-up item extracted from an email, or synthesized when the
// mailbox integration is missing.
type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	SourceEmailID string     `json:"source_email_id,omitempty"`
	LeadID        string     `json:"lead_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Priority      Priority   `json:"priority"`
	Status        TaskStatus `json:"status"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Draft         bool       `json:"draft"`
	Confidence    float64    `json:"confidence"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Candidate is a normalized draft entity pending dedup and persistence.
// Exactly one of the entity pointers is set, matching Kind. Every candidate
// carries its source email ID and the extraction confidence.
type Candidate struct {
	Kind          ExtractionKind `json:"kind"`
	SourceEmailID string         `json:"source_email_id"`
	Confidence    float64        `json:"confidence"`
	Event         *Event         `json:"event,omitempty"`
	Lead          *Lead          `json:"lead,omitempty"`
	Invoice       *Invoice       `json:"invoice,omitempty"`
	Expense       *Expense       `json:"expense,omitempty"`
	Task          *Task          `json:"task,omitempty"`
}
