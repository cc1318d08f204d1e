package gateway

import (
	"context"
	"fmt"

	"github.com/spec-kit/agent-console/internal/domain"
)

// TicketAPI is the upstream helpdesk surface this core consumes. Persistence,
// email delivery, and order lookups live behind it; the console only sees
// snapshots and write acknowledgements.
type TicketAPI interface {
	FetchTicket(ctx context.Context, id int64) (*domain.Ticket, error)
	PatchTicket(ctx context.Context, id int64, patch TicketPatch) error
	UploadAttachments(ctx context.Context, ticketID int64, files []FileUpload) ([]domain.Attachment, error)
	CreateComment(ctx context.Context, ticketID int64, draft CommentDraft) (*domain.Comment, error)
	MergeTickets(ctx context.Context, primaryID int64, sourceIDs []int64) (*MergeOutcome, error)
	ListUsers(ctx context.Context) ([]domain.BaseUser, error)
}

// TicketPatch carries a partial ticket update. Nil fields are left untouched
// by the upstream.
type TicketPatch struct {
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Assignee *AssigneePatch
}

// AssigneePatch distinguishes "assign to user" (non-nil UserID) from
// "unassign" (nil UserID) while a nil *AssigneePatch means untouched.
type AssigneePatch struct {
	UserID *int64
}

// FileUpload is one file in a batched attachment upload.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// CommentDraft is the validated payload for comment creation.
type CommentDraft struct {
	Content        string  `json:"content"`
	IsInternalNote bool    `json:"isInternalNote"`
	SendAsEmail    bool    `json:"sendAsEmail"`
	AttachmentIDs  []int64 `json:"attachmentIds"`
}

// MergeOutcome reports per-source results when the upstream provides them.
// An empty Failures list means every source merged.
type MergeOutcome struct {
	Failures []MergeFailure `json:"failures"`
}

// MergeFailure is one rejected source in a merge request.
type MergeFailure struct {
	SourceTicketID int64  `json:"sourceTicketId"`
	Reason         string `json:"reason"`
}

// APIError is a non-2xx upstream response with the server's message when one
// could be decoded.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream api error: status=%d", e.StatusCode)
}
