package model

import (
	"net/mail"
	"strings"
	"time"
)

// ProcessPurpose identifies which pipeline consumed an email. An email is
// marked processed per purpose, so the meetings pipeline and the leads
// pipeline each get exactly one extraction attempt against the same message.
type ProcessPurpose string

const (
	PurposeMeetings ProcessPurpose = "meetings"
	PurposeLeads    ProcessPurpose = "leads"
	PurposeInvoices ProcessPurpose = "invoices"
	PurposeTasks    ProcessPurpose = "tasks"
)

// EmailMessage is one fetched inbox message. Immutable once fetched; the
// per-purpose processed flag lives with the email source, not here.
type EmailMessage struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"thread_id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Snippet  string    `json:"snippet"`
	Body     string    `json:"body"`
	Date     time.Time `json:"date"`
}

// FromAddress returns the bare sender address, stripping any display name.
// Falls back to the raw From header when it doesn't parse as an address.
func (m EmailMessage) FromAddress() string {
	addr, err := mail.ParseAddress(m.From)
	if err != nil {
		return strings.TrimSpace(m.From)
	}
	return addr.Address
}
