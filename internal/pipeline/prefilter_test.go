package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaymind/autopilot/internal/model"
)

func TestPrefilter_MeetingKeyword(t *testing.T) {
	f := NewPrefilter(30)
	ok := f.ShouldExtract(model.KindMeeting, "alice@client.com", "Can we schedule a call?", "Short body")
	assert.True(t, ok)
}

func TestPrefilter_MeetingTimeAndDatePattern(t *testing.T) {
	f := NewPrefilter(30)
	// No keyword, but a time plus a relative date.
	ok := f.ShouldExtract(model.KindMeeting, "alice@client.com", "Quick question", "Does tomorrow at 3pm work for you?")
	assert.True(t, ok)
}

func TestPrefilter_MeetingTimeWithoutDate(t *testing.T) {
	f := NewPrefilter(30)
	ok := f.ShouldExtract(model.KindMeeting, "alice@client.com", "Re: numbers", "The total came to 3pm... I mean 3000")
	assert.False(t, ok)
}

func TestPrefilter_LeadKeyword(t *testing.T) {
	f := NewPrefilter(30)
	body := "Hi, I'm interested in your services and would love a quote for my company."
	assert.True(t, f.ShouldExtract(model.KindLead, "bob@prospect.io", "Inquiry", body))
}

func TestPrefilter_NoReplySenderRejected(t *testing.T) {
	f := NewPrefilter(30)
	body := "You have a new invoice available. The amount due is attached to this message."
	assert.False(t, f.ShouldExtract(model.KindInvoice, "no-reply@billing.example.com", "Invoice", body))
	assert.False(t, f.ShouldExtract(model.KindInvoice, "noreply@billing.example.com", "Invoice", body))
}

func TestPrefilter_ShortBodyRejected(t *testing.T) {
	f := NewPrefilter(30)
	assert.False(t, f.ShouldExtract(model.KindTask, "carol@work.com", "todo", "please fix"))
}

func TestPrefilter_NoKeywordRejected(t *testing.T) {
	f := NewPrefilter(30)
	body := strings.Repeat("Nothing actionable here, just a newsletter paragraph. ", 3)
	assert.False(t, f.ShouldExtract(model.KindLead, "carol@work.com", "Weekly digest", body))
}

func TestPrefilter_MeetingSkipsBodyLengthGuard(t *testing.T) {
	f := NewPrefilter(30)
	// Meetings get no minimum body length.
	assert.True(t, f.ShouldExtract(model.KindMeeting, "alice@client.com", "meeting?", "ok"))
}
