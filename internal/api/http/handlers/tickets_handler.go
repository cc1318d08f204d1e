package handlers

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/agent-console/internal/api/dto"
	"github.com/spec-kit/agent-console/internal/compose"
	"github.com/spec-kit/agent-console/internal/conversation"
	"github.com/spec-kit/agent-console/internal/domain"
	"github.com/spec-kit/agent-console/internal/service"
	"github.com/spec-kit/agent-console/internal/session"
	util "github.com/spec-kit/agent-console/pkg/util"
)

// TicketsHandler exposes the conversation, mutation, reply, and merge
// operations for a ticket. Handlers stay thin; the optimistic protocol lives
// in the services.
type TicketsHandler struct {
	conversations *service.ConversationService
	replies       *service.ReplyService
	merges        *service.MergeService
	directory     *service.DirectoryService
	journal       *service.JournalService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(conversations *service.ConversationService, replies *service.ReplyService, merges *service.MergeService, directory *service.DirectoryService, journalService *service.JournalService) *TicketsHandler {
	return &TicketsHandler{
		conversations: conversations,
		replies:       replies,
		merges:        merges,
		directory:     directory,
		journal:       journalService,
	}
}

// Open GET /tickets/:id.
func (h *TicketsHandler) Open(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	snapshot, timeline, err := h.conversations.Open(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": conversationResponse(snapshot, timeline)})
}

// Release DELETE /tickets/:id/conversation.
func (h *TicketsHandler) Release(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	h.conversations.Release(ticketID)
	return c.SendStatus(fiber.StatusNoContent)
}

// Timeline GET /tickets/:id/timeline.
func (h *TicketsHandler) Timeline(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	timeline, err := h.conversations.Timeline(ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timelineResponses(timeline)})
}

// SetStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) SetStatus(c *fiber.Ctx) error {
	sess, ticketID, err := sessionAndTicket(c)
	if err != nil {
		return err
	}
	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if !req.Status.Valid() {
		return util.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}
	ticket, err := h.conversations.SetStatus(c.UserContext(), sess, ticketID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// SetPriority PATCH /tickets/:id/priority.
func (h *TicketsHandler) SetPriority(c *fiber.Ctx) error {
	sess, ticketID, err := sessionAndTicket(c)
	if err != nil {
		return err
	}
	var req dto.SetPriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if !req.Priority.Valid() {
		return util.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
	}
	ticket, err := h.conversations.SetPriority(c.UserContext(), sess, ticketID, req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// SetAssignee PATCH /tickets/:id/assignee.
func (h *TicketsHandler) SetAssignee(c *fiber.Ctx) error {
	sess, ticketID, err := sessionAndTicket(c)
	if err != nil {
		return err
	}
	var req dto.SetAssigneeRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	// resolve the directory entry so the optimistic snapshot shows a name,
	// not just an id; a directory miss falls back to the bare id
	var user *domain.BaseUser
	if req.UserID != nil {
		user, _ = h.directory.FindAgent(c.UserContext(), *req.UserID)
	}
	ticket, err := h.conversations.SetAssignee(c.UserContext(), sess, ticketID, req.UserID, user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Reply POST /tickets/:id/reply. Accepts multipart (text, flags, files) or
// plain JSON when there is nothing to attach.
func (h *TicketsHandler) Reply(c *fiber.Ctx) error {
	sess, ticketID, err := sessionAndTicket(c)
	if err != nil {
		return err
	}
	form, err := replyForm(c)
	if err != nil {
		return err
	}
	comment, err := h.replies.Submit(c.UserContext(), sess, ticketID, form)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": commentResponse(*comment)})
}

// Merge POST /tickets/:id/merge.
func (h *TicketsHandler) Merge(c *fiber.Ctx) error {
	sess, ticketID, err := sessionAndTicket(c)
	if err != nil {
		return err
	}
	var req dto.MergeRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.merges.Merge(c.UserContext(), sess, ticketID, req.SourceTicketIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Journal GET /tickets/:id/journal.
func (h *TicketsHandler) Journal(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	entries, err := h.journal.ListByTicket(c.UserContext(), ticketID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.JournalEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.JournalEntryResponse{
			ID:        entry.ID,
			TicketID:  entry.TicketID,
			SessionID: entry.SessionID,
			Kind:      string(entry.Kind),
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func sessionAndTicket(c *fiber.Ctx) (session.Session, int64, error) {
	sess, ok := session.FromContext(c)
	if !ok {
		return session.Session{}, 0, util.NewUnauthorized("session required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return session.Session{}, 0, err
	}
	return sess, ticketID, nil
}

func ticketIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	val := c.Query(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

// replyForm builds the compose form from either a multipart or JSON body.
func replyForm(c *fiber.Ctx) (*compose.Form, error) {
	form := &compose.Form{}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		multi, err := c.MultipartForm()
		if err != nil {
			return nil, util.NewValidationError("invalid multipart payload", nil)
		}
		form.Text = formValue(multi, "text")
		if parseBoolValue(formValue(multi, "internalNote")) {
			form.SetInternalNote(true)
		}
		if parseBoolValue(formValue(multi, "sendAsEmail")) {
			form.SetSendAsEmail(true)
		}
		for _, header := range multi.File["files"] {
			file, err := readUpload(header)
			if err != nil {
				return nil, err
			}
			if err := form.AddFile(file); err != nil {
				return nil, err
			}
		}
		return form, nil
	}

	var req dto.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, util.NewValidationError("invalid payload", nil)
	}
	form.Text = req.Text
	if req.InternalNote {
		form.SetInternalNote(true)
	}
	if req.SendAsEmail {
		form.SetSendAsEmail(true)
	}
	return form, nil
}

func formValue(form *multipart.Form, key string) string {
	if vals, ok := form.Value[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func parseBoolValue(val string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(val))
	return err == nil && parsed
}

func readUpload(header *multipart.FileHeader) (compose.File, error) {
	src, err := header.Open()
	if err != nil {
		return compose.File{}, util.NewValidationError("unreadable attachment", map[string]any{
			"file": header.Filename,
		})
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return compose.File{}, util.NewValidationError("unreadable attachment", map[string]any{
			"file": header.Filename,
		})
	}
	return compose.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func conversationResponse(ticket domain.Ticket, timeline []conversation.TimelineEntry) dto.ConversationResponse {
	return dto.ConversationResponse{
		Ticket:   ticketResponse(ticket),
		Timeline: timelineResponses(timeline),
	}
}

func ticketResponse(ticket domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:                 ticket.ID,
		Title:              ticket.Title,
		Description:        ticket.Description,
		Status:             ticket.Status,
		Priority:           ticket.Priority,
		Type:               ticket.Type,
		SenderName:         ticket.SenderName,
		SenderEmail:        ticket.SenderEmail,
		OrderNumber:        ticket.OrderNumber,
		TrackingNumber:     ticket.TrackingNumber,
		CreatedAt:          ticket.CreatedAt,
		UpdatedAt:          ticket.UpdatedAt,
		MergedIntoTicketID: ticket.MergedIntoTicketID,
	}
	resp.Assignee = userResponse(ticket.Assignee)
	resp.Reporter = userResponse(ticket.Reporter)
	for i := range ticket.MergedTickets {
		resp.MergedTickets = append(resp.MergedTickets, ticketResponse(ticket.MergedTickets[i]))
	}
	return resp
}

func timelineResponses(timeline []conversation.TimelineEntry) []dto.TimelineEntryResponse {
	items := make([]dto.TimelineEntryResponse, 0, len(timeline))
	for _, entry := range timeline {
		item := dto.TimelineEntryResponse{
			Comment: commentResponse(entry.Comment),
			Variant: entry.Variant,
		}
		if entry.Suggestion != nil {
			item.Suggestion = &dto.SuggestionResponse{
				Title: entry.Suggestion.Title,
				Body:  entry.Suggestion.Body,
			}
		}
		items = append(items, item)
	}
	return items
}

func commentResponse(comment domain.Comment) dto.CommentResponse {
	resp := dto.CommentResponse{
		ID:              comment.ID,
		Text:            comment.CommentText,
		CreatedAt:       comment.CreatedAt,
		Commenter:       userResponse(comment.Commenter),
		IsInternalNote:  comment.IsInternalNote,
		IsFromCustomer:  comment.IsFromCustomer,
		IsOutgoingReply: comment.IsOutgoingReply,
	}
	for _, att := range comment.Attachments {
		resp.Attachments = append(resp.Attachments, dto.AttachmentResponse{
			ID:               att.ID,
			OriginalFilename: att.OriginalFilename,
			FileSize:         att.FileSize,
			MimeType:         att.MimeType,
			UploadedAt:       att.UploadedAt,
		})
	}
	return resp
}

func userResponse(user *domain.BaseUser) *dto.UserResponse {
	if user == nil {
		return nil
	}
	return &dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}
