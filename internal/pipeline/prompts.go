package pipeline

import (
	"fmt"

	"github.com/relaymind/autopilot/internal/model"
)

const systemPrompt = "You are an assistant that turns emails into structured business records. Always return a single valid JSON object matching the requested schema. Use null for fields not present in the email."

const meetingPrompt = `Review the following email and decide whether it asks to schedule a meeting or call.

Email:
%s

Return a valid JSON object:
{"is_meeting_request": <true|false>, "confidence": <0.0-1.0>, "title": "<short meeting title>", "proposed_times": ["<ISO 8601 datetime>", ...], "duration_minutes": <integer or null>, "location": "<place or link, or null>", "attendees": ["<email address>", ...]}`

const leadPrompt = `Review the following email and decide whether the sender is a potential sales lead (someone expressing interest in products or services).

Email:
%s

Return a valid JSON object:
{"is_lead": <true|false>, "confidence": <0.0-1.0>, "name": "<contact name>", "email": "<contact email>", "company": "<company or null>", "phone": "<phone or null>", "notes": "<one-line summary of what they want>"}`

const invoicePrompt = `Review the following email and extract billing information. Distinguish money the user is owed (receivable: completed work, an agreement to bill) from money the user owes (payable: a bill or receipt sent to them).

Email:
%s

Return a valid JSON object:
{"is_billable": <true|false>, "confidence": <0.0-1.0>, "direction": "<receivable|payable>", "client_name": "<who is billed or billing>", "amount": <number or null>, "currency": "<ISO 4217 code or null>", "tax_rate": <number or null>, "description": "<what the charge is for>", "issue_date": "<ISO 8601 date or null>"}`

const taskPrompt = `Review the following email and extract a concrete follow-up task for the recipient, if one is implied.

Email:
%s

Return a valid JSON object:
{"has_task": <true|false>, "confidence": <0.0-1.0>, "title": "<short imperative task title>", "description": "<one sentence of context>", "priority": "<low|medium|high>", "due_date": "<ISO 8601 date or null>"}`

// buildPrompt renders the kind-specific prompt around the email context.
func buildPrompt(kind model.ExtractionKind, contextText string) string {
	switch kind {
	case model.KindMeeting:
		return fmt.Sprintf(meetingPrompt, contextText)
	case model.KindLead:
		return fmt.Sprintf(leadPrompt, contextText)
	case model.KindInvoice:
		return fmt.Sprintf(invoicePrompt, contextText)
	case model.KindTask:
		return fmt.Sprintf(taskPrompt, contextText)
	default:
		return contextText
	}
}

// buildEmailContext formats an email for prompt injection. Bodies are
// truncated to keep prompt size bounded.
func buildEmailContext(email model.EmailMessage) string {
	const maxBodyChars = 6000
	body := email.Body
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars]
	}
	return fmt.Sprintf("From: %s\nTo: %s\nDate: %s\nSubject: %s\n\n%s",
		email.From, email.To, email.Date.Format("2006-01-02 15:04"), email.Subject, body)
}
