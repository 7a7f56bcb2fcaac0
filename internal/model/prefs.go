package model

import "encoding/json"

// Preferences are the per-user feature flags the pipeline consumes
// read-only. Resolved once at pipeline entry; every flag has an explicit
// zero-value default so an absent or malformed blob means "all off".
type Preferences struct {
	AutoScheduleMeetings bool `json:"autoScheduleMeetings"`
	AutoManageTasks      bool `json:"autoManageTasks"`
	PauseAI              bool `json:"pauseAI"`
	EmailNotifications   bool `json:"emailNotifications"`
}

// ParsePreferences decodes the raw preferences blob stored on the user row.
// Malformed JSON is treated the same as an empty blob rather than raised.
func ParsePreferences(raw string) Preferences {
	var p Preferences
	if raw == "" {
		return p
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Preferences{}
	}
	return p
}

// Allows reports whether the pipeline for the given purpose may run. PauseAI
// overrides everything; meetings and tasks additionally require their
// dedicated opt-in flags.
func (p Preferences) Allows(purpose ProcessPurpose) bool {
	if p.PauseAI {
		return false
	}
	switch purpose {
	case PurposeMeetings:
		return p.AutoScheduleMeetings
	case PurposeTasks:
		return p.AutoManageTasks
	default:
		return true
	}
}
