package dto

import (
	"time"

	"github.com/spec-kit/agent-console/internal/conversation"
	"github.com/spec-kit/agent-console/internal/domain"
)

// TicketResponse is the console's view of one ticket snapshot.
type TicketResponse struct {
	ID                 int64                 `json:"id"`
	Title              string                `json:"title"`
	Description        *string               `json:"description,omitempty"`
	Status             domain.TicketStatus   `json:"status"`
	Priority           domain.TicketPriority `json:"priority"`
	Type               *string               `json:"type,omitempty"`
	Assignee           *UserResponse         `json:"assignee,omitempty"`
	Reporter           *UserResponse         `json:"reporter,omitempty"`
	SenderName         *string               `json:"senderName,omitempty"`
	SenderEmail        *string               `json:"senderEmail,omitempty"`
	OrderNumber        *string               `json:"orderNumber,omitempty"`
	TrackingNumber     *string               `json:"trackingNumber,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
	MergedIntoTicketID *int64                `json:"mergedIntoTicketId,omitempty"`
	MergedTickets      []TicketResponse      `json:"mergedTickets,omitempty"`
}

// TimelineEntryResponse is one classified conversation row.
type TimelineEntryResponse struct {
	Comment    CommentResponse      `json:"comment"`
	Variant    conversation.Variant `json:"variant"`
	Suggestion *SuggestionResponse  `json:"suggestion,omitempty"`
}

// CommentResponse mirrors a comment for rendering.
type CommentResponse struct {
	ID              int64                `json:"id"`
	Text            *string              `json:"text,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	Commenter       *UserResponse        `json:"commenter,omitempty"`
	IsInternalNote  bool                 `json:"isInternalNote"`
	IsFromCustomer  bool                 `json:"isFromCustomer"`
	IsOutgoingReply bool                 `json:"isOutgoingReply"`
	Attachments     []AttachmentResponse `json:"attachments,omitempty"`
}

// SuggestionResponse is an extracted AI suggestion ready for one-click use.
type SuggestionResponse struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID               int64     `json:"id"`
	OriginalFilename string    `json:"originalFilename"`
	FileSize         int64     `json:"fileSize"`
	MimeType         string    `json:"mimeType"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

// ConversationResponse bundles the snapshot with its assembled timeline.
type ConversationResponse struct {
	Ticket   TicketResponse          `json:"ticket"`
	Timeline []TimelineEntryResponse `json:"timeline"`
}

// SetStatusRequest payload.
type SetStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// SetPriorityRequest payload.
type SetPriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// SetAssigneeRequest payload. A nil UserID unassigns the ticket.
type SetAssigneeRequest struct {
	UserID *int64 `json:"userId"`
}

// MergeRequest payload.
type MergeRequest struct {
	SourceTicketIDs []int64 `json:"sourceTicketIds"`
}

// ReplyRequest is the JSON form of a reply submission. Multipart submissions
// carry the same fields plus files.
type ReplyRequest struct {
	Text         string `json:"text"`
	InternalNote bool   `json:"internalNote"`
	SendAsEmail  bool   `json:"sendAsEmail"`
}

// JournalEntryResponse is one audit row.
type JournalEntryResponse struct {
	ID        string         `json:"id"`
	TicketID  int64          `json:"ticketId"`
	SessionID *string        `json:"sessionId,omitempty"`
	Kind      string         `json:"kind"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
