package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePreferences(t *testing.T) {
	p := ParsePreferences(`{"autoScheduleMeetings": true, "emailNotifications": true}`)
	assert.True(t, p.AutoScheduleMeetings)
	assert.True(t, p.EmailNotifications)
	assert.False(t, p.AutoManageTasks)
	assert.False(t, p.PauseAI)
}

func TestParsePreferences_EmptyAndMalformed(t *testing.T) {
	assert.Equal(t, Preferences{}, ParsePreferences(""))
	// A broken blob means "all off", never an error.
	assert.Equal(t, Preferences{}, ParsePreferences(`{"autoScheduleMeetings": tr`))
}

func TestPreferences_Allows(t *testing.T) {
	var p Preferences
	assert.False(t, p.Allows(PurposeMeetings), "meetings are opt-in")
	assert.False(t, p.Allows(PurposeTasks), "tasks are opt-in")
	assert.True(t, p.Allows(PurposeLeads))
	assert.True(t, p.Allows(PurposeInvoices))

	p.AutoScheduleMeetings = true
	p.AutoManageTasks = true
	assert.True(t, p.Allows(PurposeMeetings))
	assert.True(t, p.Allows(PurposeTasks))
}

func TestPreferences_PauseOverridesEverything(t *testing.T) {
	p := ParsePreferences(`{"pauseAI": true, "autoScheduleMeetings": true, "autoManageTasks": true}`)
	for _, purpose := range []ProcessPurpose{PurposeMeetings, PurposeLeads, PurposeInvoices, PurposeTasks} {
		assert.False(t, p.Allows(purpose), string(purpose))
	}
}
