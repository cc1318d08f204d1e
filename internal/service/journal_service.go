package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/agent-console/internal/events"
	"github.com/spec-kit/agent-console/internal/journal"
)

// JournalService records console events into the mutation journal. Writes are
// best-effort: a journal failure is logged and never fails the operation that
// produced the event.
type JournalService struct {
	repo   journal.Repository
	logger *zap.Logger
}

// NewJournalService creates the service. A nil repository disables
// journaling.
func NewJournalService(repo journal.Repository, logger *zap.Logger) *JournalService {
	return &JournalService{repo: repo, logger: logger}
}

// RegisterHandlers subscribes to every journaled event type.
func (j *JournalService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil || j.repo == nil {
		return
	}
	kinds := map[events.EventType]journal.EntryKind{
		events.EventMutationApplied:    journal.KindMutationApplied,
		events.EventMutationConfirmed:  journal.KindMutationConfirmed,
		events.EventMutationRolledBack: journal.KindMutationRolledBack,
		events.EventReplySubmitted:     journal.KindReplySubmitted,
		events.EventTicketsMerged:      journal.KindTicketsMerged,
	}
	for eventType, kind := range kinds {
		entryKind := kind
		dispatcher.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			return j.record(ctx, entryKind, event)
		})
	}
}

// ListByTicket returns the most recent journal entries for a ticket. With
// journaling disabled the history is simply empty.
func (j *JournalService) ListByTicket(ctx context.Context, ticketID int64, limit, offset int) ([]journal.Entry, error) {
	if j.repo == nil {
		return nil, nil
	}
	return j.repo.ListByTicket(ctx, ticketID, limit, offset)
}

func (j *JournalService) record(ctx context.Context, kind journal.EntryKind, event events.Event) error {
	entry := &journal.Entry{
		TicketID: event.TicketID,
		Kind:     kind,
		Detail:   payloadDetail(event.Payload),
	}
	if event.SessionID != "" {
		sessionID := event.SessionID
		entry.SessionID = &sessionID
	}
	if err := j.repo.Create(ctx, entry); err != nil {
		j.logger.Warn("journal write failed",
			zap.Int64("ticket_id", event.TicketID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
	return nil
}

// payloadDetail flattens an event payload into the journal's jsonb column.
func payloadDetail(payload interface{}) map[string]any {
	if payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	var detail map[string]any
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil
	}
	return detail
}
