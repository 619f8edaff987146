package activity

import "time"

// ActivityType represents the type of link session event
type ActivityType string

const (
	TypeSessionStarted ActivityType = "session_started"
	TypeNext           ActivityType = "next"
	TypeError          ActivityType = "error"
	TypeComplete       ActivityType = "complete"
	TypeUnsubscribed   ActivityType = "unsubscribed"
	TypePollError      ActivityType = "poll_error"
)

// ActivityEntry represents an event in the session journal
type ActivityEntry struct {
	ID            int64        `json:"id"`
	SessionID     string       `json:"session_id"`
	OperationName string       `json:"operation_name,omitempty"`
	OperationKind string       `json:"operation_kind,omitempty"`
	ActivityType  ActivityType `json:"type"`
	Summary       string       `json:"summary"`
	Details       string       `json:"details,omitempty"` // JSON string
	CreatedAt     time.Time    `json:"created_at"`
}
