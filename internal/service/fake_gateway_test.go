package service

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/spec-kit/agent-console/internal/domain"
	"github.com/spec-kit/agent-console/internal/gateway"
)

// fakeAPI is an in-memory stand-in for the upstream helpdesk API.
type fakeAPI struct {
	mu      sync.Mutex
	tickets map[int64]*domain.Ticket
	users   []domain.BaseUser

	patchErr  error
	uploadErr error
	createErr error
	mergeErr  error

	mergeOutcome *gateway.MergeOutcome

	patchCalls  []gateway.TicketPatch
	uploadCalls int
	createCalls int
	mergeCalls  int

	// onPatch runs while the patch request is "in flight", letting tests
	// observe the optimistic snapshot before any server response lands
	onPatch func()

	nextCommentID    int64
	nextAttachmentID int64
}

func newFakeAPI(tickets ...domain.Ticket) *fakeAPI {
	f := &fakeAPI{
		tickets:          make(map[int64]*domain.Ticket),
		nextCommentID:    900,
		nextAttachmentID: 5000,
	}
	for _, t := range tickets {
		ticket := t.Clone()
		f.tickets[t.ID] = &ticket
	}
	return f
}

func (f *fakeAPI) FetchTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, &gateway.APIError{StatusCode: http.StatusNotFound, Message: "ticket not found"}
	}
	clone := ticket.Clone()
	return &clone, nil
}

func (f *fakeAPI) PatchTicket(ctx context.Context, id int64, patch gateway.TicketPatch) error {
	if f.onPatch != nil {
		f.onPatch()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patchCalls = append(f.patchCalls, patch)
	if f.patchErr != nil {
		return f.patchErr
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return &gateway.APIError{StatusCode: http.StatusNotFound, Message: "ticket not found"}
	}
	if patch.Status != nil {
		ticket.Status = *patch.Status
	}
	if patch.Priority != nil {
		ticket.Priority = *patch.Priority
	}
	if patch.Assignee != nil {
		if patch.Assignee.UserID == nil {
			ticket.Assignee = nil
		} else {
			for i := range f.users {
				if f.users[i].ID == *patch.Assignee.UserID {
					user := f.users[i]
					ticket.Assignee = &user
				}
			}
			if ticket.Assignee == nil || ticket.Assignee.ID != *patch.Assignee.UserID {
				ticket.Assignee = &domain.BaseUser{ID: *patch.Assignee.UserID}
			}
		}
	}
	ticket.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAPI) UploadAttachments(ctx context.Context, ticketID int64, files []gateway.FileUpload) ([]domain.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadCalls++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	attachments := make([]domain.Attachment, 0, len(files))
	for _, file := range files {
		f.nextAttachmentID++
		tid := ticketID
		attachments = append(attachments, domain.Attachment{
			ID:               f.nextAttachmentID,
			OriginalFilename: file.Name,
			FileSize:         int64(len(file.Data)),
			MimeType:         file.ContentType,
			UploadedAt:       time.Now(),
			TicketID:         &tid,
		})
	}
	return attachments, nil
}

func (f *fakeAPI) CreateComment(ctx context.Context, ticketID int64, draft gateway.CommentDraft) (*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return nil, &gateway.APIError{StatusCode: http.StatusNotFound, Message: "ticket not found"}
	}
	f.nextCommentID++
	var text *string
	if draft.Content != "" {
		content := draft.Content
		text = &content
	}
	comment := domain.Comment{
		ID:              f.nextCommentID,
		CommentText:     text,
		CreatedAt:       time.Now(),
		IsInternalNote:  draft.IsInternalNote,
		IsOutgoingReply: !draft.IsInternalNote,
	}
	ticket.Comments = append(ticket.Comments, comment)
	ticket.UpdatedAt = time.Now()
	return &comment, nil
}

func (f *fakeAPI) MergeTickets(ctx context.Context, primaryID int64, sourceIDs []int64) (*gateway.MergeOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeCalls++
	if f.mergeErr != nil {
		return nil, f.mergeErr
	}
	if f.mergeOutcome != nil {
		return f.mergeOutcome, nil
	}
	primary, ok := f.tickets[primaryID]
	if !ok {
		return nil, &gateway.APIError{StatusCode: http.StatusNotFound, Message: "ticket not found"}
	}
	for _, id := range sourceIDs {
		source, ok := f.tickets[id]
		if !ok {
			continue
		}
		pid := primaryID
		source.MergedIntoTicketID = &pid
		source.UpdatedAt = time.Now()
		primary.MergedTickets = append(primary.MergedTickets, source.Clone())
	}
	primary.UpdatedAt = time.Now()
	return &gateway.MergeOutcome{}, nil
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]domain.BaseUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.BaseUser, len(f.users))
	copy(out, f.users)
	return out, nil
}
