package model

// RunState tracks where a single user's pipeline run is. Any state can
// transition to StateErrored.
type RunState string

const (
	StateGated         RunState = "gated"
	StateFetching      RunState = "fetching"
	StateFiltering     RunState = "filtering"
	StateExtracting    RunState = "extracting"
	StateNormalizing   RunState = "normalizing"
	StateDeduplicating RunState = "deduplicating"
	StatePersisting    RunState = "persisting"
	StateScheduling    RunState = "scheduling"
	StateDone          RunState = "done"
	StateErrored       RunState = "errored"
)

// ErrorKind classifies a user-run failure for counters and branching.
type ErrorKind string

const (
	ErrKindIntegrationMissing ErrorKind = "integration_missing"
	ErrKindTransientProvider  ErrorKind = "transient_provider"
	ErrKindValidation         ErrorKind = "validation"
)

// UserRunStats accumulates counters for one user's run.
type UserRunStats struct {
	UserID          string    `json:"user_id"`
	State           RunState  `json:"state"`
	ErrorKind       ErrorKind `json:"error_kind,omitempty"`
	EmailsProcessed int       `json:"emails_processed"`
	Created         int       `json:"created"`
	PriorityUpdated int       `json:"priority_updated"`
	FollowUpsSent   int       `json:"follow_ups_sent"`
	Errors          int       `json:"errors"`
}

// BatchStats aggregates counters across all users in one batch run.
type BatchStats struct {
	UsersProcessed  int `json:"users_processed"`
	UsersSkipped    int `json:"users_skipped"`
	UsersFailed     int `json:"users_failed"`
	EmailsProcessed int `json:"emails_processed"`
	Created         int `json:"created"`
	PriorityUpdated int `json:"priority_updated"`
	FollowUpsSent   int `json:"follow_ups_sent"`
	Errors          int `json:"errors"`
}

// Add folds one user's counters into the batch totals.
func (b *BatchStats) Add(u UserRunStats) {
	b.EmailsProcessed += u.EmailsProcessed
	b.Created += u.Created
	b.PriorityUpdated += u.PriorityUpdated
	b.FollowUpsSent += u.FollowUpsSent
	b.Errors += u.Errors
}
