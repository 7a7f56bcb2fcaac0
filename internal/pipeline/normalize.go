package pipeline

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"

	"github.com/relaymind/autopilot/internal/model"
)

// Normalizer defaults for fields the model frequently omits.
const (
	defaultDurationMinutes = 30
	defaultCurrency        = "USD"
	invoiceDueDays         = 30
)

// timeLayouts are tried in order when parsing model-reported datetimes.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalizer converts a gated extraction result into a canonical draft
// entity with safe defaults. The clock is injectable for tests.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a Normalizer using the wall clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize produces a draft candidate for the result's kind. Every
// candidate carries the source email ID and the extraction confidence; all
// outputs are marked Draft so a human confirmation step can intervene.
func (n *Normalizer) Normalize(result *model.ExtractionResult, email model.EmailMessage, user model.User) (*model.Candidate, error) {
	cand := &model.Candidate{
		Kind:          result.Kind,
		SourceEmailID: email.ID,
		Confidence:    result.Confidence,
	}

	switch result.Kind {
	case model.KindMeeting:
		event, err := n.normalizeEvent(result, email, user)
		if err != nil {
			return nil, err
		}
		cand.Event = event
	case model.KindLead:
		cand.Lead = n.normalizeLead(result, email, user)
	case model.KindInvoice:
		if strings.EqualFold(result.StringField("direction"), "payable") {
			cand.Expense = n.normalizeExpense(result, email, user)
		} else {
			cand.Invoice = n.normalizeInvoice(result, email, user)
		}
	case model.KindTask:
		cand.Task = n.normalizeTask(result, email, user)
	default:
		return nil, &ValidationError{Kind: result.Kind, Reason: "unknown extraction kind"}
	}

	return cand, nil
}

func (n *Normalizer) normalizeEvent(result *model.ExtractionResult, email model.EmailMessage, user model.User) (*model.Event, error) {
	proposed := result.StringsField("proposed_times")
	var start time.Time
	var rest []string
	for i, raw := range proposed {
		if t, ok := parseWhen(raw); ok {
			start = t
			rest = proposed[i+1:]
			break
		}
	}
	if start.IsZero() {
		return nil, &ValidationError{Kind: model.KindMeeting, Reason: "no parsable proposed time"}
	}

	duration := time.Duration(defaultDurationMinutes) * time.Minute
	if mins, ok := result.FloatField("duration_minutes"); ok && mins > 0 {
		duration = time.Duration(mins) * time.Minute
	}

	title := result.StringField("title")
	if title == "" {
		title = email.Subject
	}

	notes := ""
	// The first parsable time is the primary; the rest are kept as context,
	// not expanded into separate candidates.
	if len(rest) > 0 {
		notes = "Also proposed: " + strings.Join(rest, ", ")
	}

	return &model.Event{
		UserID:        user.ID,
		SourceEmailID: email.ID,
		Title:         title,
		StartTime:     start,
		EndTime:       start.Add(duration),
		Attendees:     mergeAttendees(result.StringsField("attendees"), email.FromAddress(), user.Email),
		Location:      result.StringField("location"),
		Notes:         notes,
		Draft:         true,
		Confidence:    result.Confidence,
	}, nil
}

func (n *Normalizer) normalizeLead(result *model.ExtractionResult, email model.EmailMessage, user model.User) *model.Lead {
	return &model.Lead{
		UserID:        user.ID,
		SourceEmailID: email.ID,
		Name:          result.StringField("name"),
		Email:         result.StringField("email"),
		Company:       result.StringField("company"),
		Phone:         result.StringField("phone"),
		Status:        model.LeadStatusNew,
		Notes:         result.StringField("notes"),
		Draft:         true,
		Confidence:    result.Confidence,
	}
}

func (n *Normalizer) normalizeInvoice(result *model.ExtractionResult, email model.EmailMessage, user model.User) *model.Invoice {
	issue := n.now()
	if raw := result.StringField("issue_date"); raw != "" {
		if t, ok := parseWhen(raw); ok {
			issue = t
		}
	}

	amount, _ := result.FloatField("amount")
	taxRate, _ := result.FloatField("tax_rate")

	clientName := result.StringField("client_name")
	if clientName == "" {
		clientName = email.FromAddress()
	}

	return &model.Invoice{
		UserID:        user.ID,
		SourceEmailID: email.ID,
		ClientName:    clientName,
		Amount:        amount,
		Currency:      normalizeCurrency(result.StringField("currency")),
		TaxRate:       taxRate,
		Status:        model.InvoiceStatusDraft,
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, invoiceDueDays),
		Notes:         result.StringField("description"),
		Draft:         true,
		Confidence:    result.Confidence,
	}
}

func (n *Normalizer) normalizeExpense(result *model.ExtractionResult, email model.EmailMessage, user model.User) *model.Expense {
	incurred := email.Date
	if incurred.IsZero() {
		incurred = n.now()
	}
	if raw := result.StringField("issue_date"); raw != "" {
		if t, ok := parseWhen(raw); ok {
			incurred = t
		}
	}

	amount, _ := result.FloatField("amount")
	vendor := result.StringField("client_name")
	if vendor == "" {
		vendor = email.FromAddress()
	}

	return &model.Expense{
		UserID:        user.ID,
		SourceEmailID: email.ID,
		Vendor:        vendor,
		Amount:        amount,
		Currency:      normalizeCurrency(result.StringField("currency")),
		Category:      result.StringField("description"),
		IncurredAt:    incurred,
		Draft:         true,
		Confidence:    result.Confidence,
	}
}

func (n *Normalizer) normalizeTask(result *model.ExtractionResult, email model.EmailMessage, user model.User) *model.Task {
	task := &model.Task{
		UserID:        user.ID,
		SourceEmailID: email.ID,
		Title:         result.StringField("title"),
		Description:   result.StringField("description"),
		Priority:      normalizePriority(result.StringField("priority")),
		Status:        model.TaskStatusOpen,
		Draft:         true,
		Confidence:    result.Confidence,
	}
	if raw := result.StringField("due_date"); raw != "" {
		if t, ok := parseWhen(raw); ok {
			task.DueDate = &t
		}
	}
	return task
}

// mergeAttendees always includes the email sender and the acting user's own
// address, deduplicated case-insensitively.
func mergeAttendees(extracted []string, sender, owner string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return
		}
		key := strings.ToLower(addr)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, addr)
	}
	add(sender)
	add(owner)
	for _, a := range extracted {
		add(a)
	}
	return out
}

// normalizeCurrency validates an ISO 4217 code, falling back to USD.
func normalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return defaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return defaultCurrency
	}
	return fmt.Sprint(unit)
}

func normalizePriority(raw string) model.Priority {
	switch model.Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case model.PriorityLow:
		return model.PriorityLow
	case model.PriorityHigh:
		return model.PriorityHigh
	default:
		return model.PriorityMedium
	}
}

// parseWhen tries the known datetime layouts.
func parseWhen(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
