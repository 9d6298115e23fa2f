package jobs

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether a job in this status has finished its single
// pending -> completed/failed transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TranslationJob is the record correlated by the provider-assigned tracking
// id. TranslatedText is set only when Status is StatusCompleted, ErrorMessage
// only when StatusFailed. Orphan jobs created directly from a callback carry
// only the fields the callback delivered.
type TranslationJob struct {
	TrackingID      string    `json:"tracking_id"`
	Status          Status    `json:"status"`
	SourceLanguage  string    `json:"source_language,omitempty"`
	TargetLanguage  string    `json:"target_language,omitempty"`
	OriginalText    string    `json:"original_text,omitempty"`
	TranslatedText  string    `json:"translated_text,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	CompletedAt     time.Time `json:"completed_at,omitzero"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
}

// Outcome describes how a callback was matched against the store.
type Outcome string

const (
	// OutcomeMatched means an existing pending job was transitioned.
	OutcomeMatched Outcome = "matched"
	// OutcomeOrphan means no entry existed and a terminal orphan job was inserted.
	OutcomeOrphan Outcome = "orphan"
	// OutcomeRedelivered means the job was already terminal and was overwritten.
	// Last write wins; the protocol carries no idempotency token, so a stale
	// redelivery is indistinguishable from a legitimate one.
	OutcomeRedelivered Outcome = "redelivered"
)

// MarkResult reports the outcome of MarkCompleted/MarkFailed together with a
// snapshot of the job after the transition.
type MarkResult struct {
	Outcome             Outcome
	Job                 *TranslationJob
	PreviousStatus      Status
	PreviousCompletedAt time.Time
}

// Snapshot aggregates store contents for the diagnostics surface.
type Snapshot struct {
	Total             int           `json:"total"`
	Pending           int           `json:"pending"`
	Completed         int           `json:"completed"`
	Failed            int           `json:"failed"`
	CompletedLastHour int           `json:"completed_last_hour"`
	OldestPendingWait time.Duration `json:"-"`
}
