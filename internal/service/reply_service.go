package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/agent-console/internal/compose"
	"github.com/spec-kit/agent-console/internal/domain"
	"github.com/spec-kit/agent-console/internal/events"
	"github.com/spec-kit/agent-console/internal/gateway"
	"github.com/spec-kit/agent-console/internal/session"
	"github.com/spec-kit/agent-console/internal/store"
	util "github.com/spec-kit/agent-console/pkg/util"
)

// ReplyService is the two-phase reply submission pipeline: batched attachment
// upload, then comment creation. Atomic from the caller's point of view — an
// upload failure aborts before any comment exists, so a reply is never
// persisted with its attachments silently dropped.
type ReplyService struct {
	api           gateway.TicketAPI
	conversations *ConversationService
}

// NewReplyService constructs the pipeline.
func NewReplyService(api gateway.TicketAPI, conversations *ConversationService) *ReplyService {
	return &ReplyService{api: api, conversations: conversations}
}

// Submit validates and submits the drafted reply. On success the form is
// cleared and the conversation reconciled; on any failure the form keeps the
// agent's draft for resubmission.
func (s *ReplyService) Submit(ctx context.Context, sess session.Session, ticketID int64, form *compose.Form) (*domain.Comment, error) {
	st, err := s.conversations.storeFor(ticketID)
	if err != nil {
		return nil, err
	}
	if st.Snapshot().Absorbed() {
		return nil, util.NewValidationError("ticket has been merged and is read-only", map[string]any{
			"ticket_id": ticketID,
		})
	}

	// internal notes are never emailed, regardless of what the caller set
	if form.InternalNote {
		form.SendAsEmail = false
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(form.Text)
	files := form.Files()

	seq := st.Begin()
	s.applyOptimisticComment(st, text, form)

	attachmentIDs, err := s.uploadPhase(ctx, ticketID, files)
	if err != nil {
		s.conversations.rollback(ctx, st, seq)
		return nil, err
	}

	comment, err := s.api.CreateComment(ctx, ticketID, gateway.CommentDraft{
		Content:        text,
		IsInternalNote: form.InternalNote,
		SendAsEmail:    form.SendAsEmail,
		AttachmentIDs:  attachmentIDs,
	})
	if err != nil {
		s.conversations.rollback(ctx, st, seq)
		return nil, writeErrorFrom(err)
	}

	sentAsEmail := form.SendAsEmail
	form.Clear()
	s.conversations.refresh(ctx, st, seq)
	s.conversations.publish(ctx, events.Event{
		Type:      events.EventReplySubmitted,
		TicketID:  ticketID,
		SessionID: sess.ID,
		Payload: events.ReplySubmittedPayload{
			CommentID:      comment.ID,
			IsInternalNote: comment.IsInternalNote,
			SendAsEmail:    sentAsEmail,
			Attachments:    len(attachmentIDs),
		},
	})
	return comment, nil
}

// applyOptimisticComment renders the drafted reply immediately under a
// temporary id; reconciliation replaces it with the server's comment.
func (s *ReplyService) applyOptimisticComment(st *store.Store, text string, form *compose.Form) {
	var textPtr *string
	if text != "" {
		body := text
		textPtr = &body
	}
	st.Apply(store.AppendComment{Comment: domain.Comment{
		ID:              st.AllocateCommentID(),
		CommentText:     textPtr,
		CreatedAt:       time.Now(),
		IsInternalNote:  form.InternalNote,
		IsOutgoingReply: !form.InternalNote,
	}})
}

// uploadPhase batches all staged files into one upstream request. Called with
// no files it is a no-op.
func (s *ReplyService) uploadPhase(ctx context.Context, ticketID int64, files []compose.File) ([]int64, error) {
	if len(files) == 0 {
		return nil, nil
	}
	uploads := make([]gateway.FileUpload, 0, len(files))
	for _, file := range files {
		uploads = append(uploads, gateway.FileUpload{
			Name:        file.Name,
			ContentType: file.ContentType,
			Data:        file.Data,
		})
	}
	attachments, err := s.api.UploadAttachments(ctx, ticketID, uploads)
	if err != nil {
		return nil, util.NewUploadError(err)
	}
	ids := make([]int64, 0, len(attachments))
	for _, att := range attachments {
		ids = append(ids, att.ID)
	}
	return ids, nil
}
