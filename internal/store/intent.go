package store

import (
	"time"

	"github.com/spec-kit/agent-console/internal/domain"
)

// IntentKind tags a mutation intent for journaling and event payloads.
type IntentKind string

const (
	IntentSetStatus     IntentKind = "set_status"
	IntentSetAssignee   IntentKind = "set_assignee"
	IntentSetPriority   IntentKind = "set_priority"
	IntentAppendComment IntentKind = "append_comment"
)

// Intent is a speculative mutation against a ticket snapshot. Reducers are
// pure: they clone the snapshot, merge the change into it, and bump
// UpdatedAt. Merging rather than replacing keeps concurrent in-flight
// mutations of other fields intact.
type Intent interface {
	Kind() IntentKind
	apply(snapshot domain.Ticket, now time.Time) domain.Ticket
}

// SetStatus moves the ticket to a new lifecycle status.
type SetStatus struct {
	Status domain.TicketStatus
}

func (i SetStatus) Kind() IntentKind { return IntentSetStatus }

func (i SetStatus) apply(snapshot domain.Ticket, now time.Time) domain.Ticket {
	next := snapshot.Clone()
	next.Status = i.Status
	next.UpdatedAt = now
	return next
}

// SetAssignee assigns or unassigns the ticket. When the full user record is
// known it is carried so the UI can render a name immediately; a bare user id
// still renders as a placeholder until reconciliation fills it in. Both nil
// means unassign.
type SetAssignee struct {
	UserID *int64
	User   *domain.BaseUser
}

func (i SetAssignee) Kind() IntentKind { return IntentSetAssignee }

func (i SetAssignee) apply(snapshot domain.Ticket, now time.Time) domain.Ticket {
	next := snapshot.Clone()
	switch {
	case i.User != nil:
		user := *i.User
		next.Assignee = &user
	case i.UserID != nil:
		next.Assignee = &domain.BaseUser{ID: *i.UserID}
	default:
		next.Assignee = nil
	}
	next.UpdatedAt = now
	return next
}

// SetPriority changes the ticket priority.
type SetPriority struct {
	Priority domain.TicketPriority
}

func (i SetPriority) Kind() IntentKind { return IntentSetPriority }

func (i SetPriority) apply(snapshot domain.Ticket, now time.Time) domain.Ticket {
	next := snapshot.Clone()
	next.Priority = i.Priority
	next.UpdatedAt = now
	return next
}

// AppendComment adds an optimistic comment to the conversation. The comment
// carries a temporary negative id from Store.AllocateCommentID; the id is
// never sent upstream and disappears at reconciliation.
type AppendComment struct {
	Comment domain.Comment
}

func (i AppendComment) Kind() IntentKind { return IntentAppendComment }

func (i AppendComment) apply(snapshot domain.Ticket, now time.Time) domain.Ticket {
	next := snapshot.Clone()
	next.Comments = append(next.Comments, i.Comment)
	next.UpdatedAt = now
	return next
}
