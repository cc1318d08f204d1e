package events

import (
	"time"

	"github.com/spec-kit/agent-console/internal/store"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMutationApplied    EventType = "mutation_applied"
	EventMutationConfirmed  EventType = "mutation_confirmed"
	EventMutationRolledBack EventType = "mutation_rolled_back"
	EventReplySubmitted     EventType = "reply_submitted"
	EventTicketsMerged      EventType = "tickets_merged"
)

// Event represents a console event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	SessionID string      `json:"session_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MutationPayload describes a speculative mutation and its lifecycle. Detail
// carries intent-specific values (old/new status, assignee id, and so on).
type MutationPayload struct {
	Intent store.IntentKind `json:"intent"`
	Seq    uint64           `json:"seq"`
	Detail map[string]any   `json:"detail,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// ReplySubmittedPayload payload.
type ReplySubmittedPayload struct {
	CommentID      int64 `json:"comment_id"`
	IsInternalNote bool  `json:"is_internal_note"`
	SendAsEmail    bool  `json:"send_as_email"`
	Attachments    int   `json:"attachments"`
}

// TicketsMergedPayload payload.
type TicketsMergedPayload struct {
	PrimaryTicketID int64   `json:"primary_ticket_id"`
	SourceTicketIDs []int64 `json:"source_ticket_ids"`
}
