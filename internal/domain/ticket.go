package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Values match the
// upstream API wire format.
type TicketStatus string

const (
	TicketStatusNew             TicketStatus = "new"
	TicketStatusOpen            TicketStatus = "open"
	TicketStatusInProgress      TicketStatus = "in_progress"
	TicketStatusPendingCustomer TicketStatus = "pending_customer"
	TicketStatusClosed          TicketStatus = "closed"
)

// Valid reports whether the status is one of the known wire values.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusOpen, TicketStatusInProgress,
		TicketStatusPendingCustomer, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether the priority is one of the known wire values.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is the full conversation snapshot for a support case as served by
// the upstream helpdesk API.
type Ticket struct {
	ID                 int64          `json:"id"`
	Title              string         `json:"title"`
	Description        *string        `json:"description"`
	Status             TicketStatus   `json:"status"`
	Priority           TicketPriority `json:"priority"`
	Type               *string        `json:"type"`
	Assignee           *BaseUser      `json:"assignee"`
	Reporter           *BaseUser      `json:"reporter"`
	SenderName         *string        `json:"senderName"`
	SenderEmail        *string        `json:"senderEmail"`
	SenderPhone        *string        `json:"senderPhone"`
	OrderNumber        *string        `json:"orderNumber"`
	TrackingNumber     *string        `json:"trackingNumber"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	Comments           []Comment      `json:"comments"`
	Attachments        []Attachment   `json:"attachments"`
	MergedIntoTicketID *int64         `json:"mergedIntoTicketId"`
	MergedTickets      []Ticket       `json:"mergedTickets"`
}

// Absorbed reports whether this ticket has been merged into another and is
// therefore terminal: it must not accept further mutations.
func (t Ticket) Absorbed() bool {
	return t.MergedIntoTicketID != nil
}

// Clone returns a copy safe to hand to callers while the original keeps
// changing. Collections are copied; referenced values are shared because no
// code path mutates through them.
func (t Ticket) Clone() Ticket {
	next := t
	if t.Comments != nil {
		next.Comments = make([]Comment, len(t.Comments))
		copy(next.Comments, t.Comments)
	}
	if t.Attachments != nil {
		next.Attachments = make([]Attachment, len(t.Attachments))
		copy(next.Attachments, t.Attachments)
	}
	if t.MergedTickets != nil {
		next.MergedTickets = make([]Ticket, len(t.MergedTickets))
		copy(next.MergedTickets, t.MergedTickets)
	}
	return next
}
