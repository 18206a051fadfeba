package dto

import "time"

// SyncListResponse is the envelope for windowed listings. Since is echoed
// back only when the client supplied it; Until is always the effective
// upper bound so the client can resume from it on the next pull.
type SyncListResponse[T any] struct {
	Since   *time.Time `json:"since,omitempty"`
	Until   time.Time  `json:"until"`
	Results []T        `json:"results"`
}

// DeletedListResponse wraps tombstone listings. PossiblyIncomplete warns
// the client that pruning may have removed tombstones inside (or before)
// the requested window, so a full resync is the only safe recovery.
type DeletedListResponse[T any] struct {
	Since              *time.Time `json:"since,omitempty"`
	Until              time.Time  `json:"until"`
	PossiblyIncomplete bool       `json:"possibly_incomplete"`
	Results            []T        `json:"results"`
}

type ResourceChangedMessage struct {
	UserId   int64  `json:"user_id"`
	Resource string `json:"resource"`
	ExtId    string `json:"ext_id"`
	Action   string `json:"action"`
}

type SweepRequestedMessage struct {
	RequestedAt time.Time `json:"requested_at"`
}
