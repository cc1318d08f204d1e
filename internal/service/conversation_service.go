package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/agent-console/internal/conversation"
	"github.com/spec-kit/agent-console/internal/domain"
	"github.com/spec-kit/agent-console/internal/events"
	"github.com/spec-kit/agent-console/internal/gateway"
	"github.com/spec-kit/agent-console/internal/session"
	"github.com/spec-kit/agent-console/internal/store"
	util "github.com/spec-kit/agent-console/pkg/util"
)

// ConversationService owns the open conversations: one optimistic store per
// ticket. All ticket mutation dispatched from the UI flows through here —
// speculative apply, upstream write, then reconcile or rollback-by-refetch.
type ConversationService struct {
	api        gateway.TicketAPI
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu     sync.Mutex
	stores map[int64]*store.Store
}

// ConversationDependencies bundles collaborators for the service.
type ConversationDependencies struct {
	API        gateway.TicketAPI
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewConversationService constructs the service.
func NewConversationService(deps ConversationDependencies) *ConversationService {
	return &ConversationService{
		api:        deps.API,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		stores:     make(map[int64]*store.Store),
	}
}

// Open fetches the ticket and seeds (or reseeds) its optimistic store. Any
// previous store for the ticket is closed so late responses against it are
// discarded as stale.
func (s *ConversationService) Open(ctx context.Context, ticketID int64) (domain.Ticket, []conversation.TimelineEntry, error) {
	ticket, err := s.api.FetchTicket(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, nil, fetchErrorFrom(err)
	}

	s.mu.Lock()
	if old, ok := s.stores[ticketID]; ok {
		old.Close()
	}
	st := store.New(*ticket)
	s.stores[ticketID] = st
	s.mu.Unlock()

	snapshot := st.Snapshot()
	return snapshot, conversation.Assemble(snapshot), nil
}

// Release closes the ticket's store when its last subscriber goes away.
func (s *ConversationService) Release(ticketID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stores[ticketID]; ok {
		st.Close()
		delete(s.stores, ticketID)
	}
}

// Snapshot returns the current (possibly speculative) snapshot.
func (s *ConversationService) Snapshot(ticketID int64) (domain.Ticket, error) {
	st, err := s.storeFor(ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	return st.Snapshot(), nil
}

// Timeline assembles and classifies the current snapshot's conversation.
func (s *ConversationService) Timeline(ticketID int64) ([]conversation.TimelineEntry, error) {
	st, err := s.storeFor(ticketID)
	if err != nil {
		return nil, err
	}
	return conversation.Assemble(st.Snapshot()), nil
}

// SetStatus applies the status change optimistically and confirms it
// upstream.
func (s *ConversationService) SetStatus(ctx context.Context, sess session.Session, ticketID int64, status domain.TicketStatus) (domain.Ticket, error) {
	patchStatus := status
	return s.mutate(ctx, sess, ticketID,
		store.SetStatus{Status: status},
		gateway.TicketPatch{Status: &patchStatus},
		map[string]any{"status": status},
	)
}

// SetAssignee assigns (or, with a nil userID, unassigns) the ticket.
func (s *ConversationService) SetAssignee(ctx context.Context, sess session.Session, ticketID int64, userID *int64, user *domain.BaseUser) (domain.Ticket, error) {
	return s.mutate(ctx, sess, ticketID,
		store.SetAssignee{UserID: userID, User: user},
		gateway.TicketPatch{Assignee: &gateway.AssigneePatch{UserID: userID}},
		map[string]any{"assignee_id": userID},
	)
}

// SetPriority changes the ticket priority.
func (s *ConversationService) SetPriority(ctx context.Context, sess session.Session, ticketID int64, priority domain.TicketPriority) (domain.Ticket, error) {
	patchPriority := priority
	return s.mutate(ctx, sess, ticketID,
		store.SetPriority{Priority: priority},
		gateway.TicketPatch{Priority: &patchPriority},
		map[string]any{"priority": priority},
	)
}

// mutate runs the optimistic mutation protocol: speculative apply, upstream
// patch, then adopt refetched server truth. On write failure the refetch is
// the rollback.
func (s *ConversationService) mutate(ctx context.Context, sess session.Session, ticketID int64, intent store.Intent, patch gateway.TicketPatch, detail map[string]any) (domain.Ticket, error) {
	st, err := s.storeFor(ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if st.Snapshot().Absorbed() {
		return domain.Ticket{}, util.NewValidationError("ticket has been merged and is read-only", map[string]any{
			"ticket_id": ticketID,
		})
	}

	seq := st.Begin()
	st.Apply(intent)
	s.publishMutation(ctx, events.EventMutationApplied, sess, ticketID, intent.Kind(), seq, detail, nil)

	if err := s.api.PatchTicket(ctx, ticketID, patch); err != nil {
		s.rollback(ctx, st, seq)
		s.publishMutation(ctx, events.EventMutationRolledBack, sess, ticketID, intent.Kind(), seq, detail, err)
		return domain.Ticket{}, writeErrorFrom(err)
	}

	reconciled := s.refresh(ctx, st, seq)
	s.publishMutation(ctx, events.EventMutationConfirmed, sess, ticketID, intent.Kind(), seq, detail, nil)
	return reconciled, nil
}

// refresh refetches server truth and reconciles it into the store. A failed
// refetch or a stale reconciliation leaves the current snapshot standing; the
// next operation converges.
func (s *ConversationService) refresh(ctx context.Context, st *store.Store, seq uint64) domain.Ticket {
	server, err := s.api.FetchTicket(ctx, st.TicketID())
	if err != nil {
		s.logger.Warn("ticket refresh failed; keeping local snapshot",
			zap.Int64("ticket_id", st.TicketID()), zap.Error(err))
		return st.Snapshot()
	}
	reconciled, err := st.Reconcile(seq, *server)
	if err != nil {
		// stale responses are discarded silently
		return st.Snapshot()
	}
	return reconciled
}

func (s *ConversationService) rollback(ctx context.Context, st *store.Store, seq uint64) {
	s.refresh(ctx, st, seq)
}

func (s *ConversationService) storeFor(ticketID int64) (*store.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[ticketID]
	if !ok {
		return nil, util.NewNotFound("conversation", map[string]any{"ticket_id": ticketID})
	}
	return st, nil
}

func (s *ConversationService) publishMutation(ctx context.Context, eventType events.EventType, sess session.Session, ticketID int64, kind store.IntentKind, seq uint64, detail map[string]any, cause error) {
	payload := events.MutationPayload{Intent: kind, Seq: seq, Detail: detail}
	if cause != nil {
		payload.Error = cause.Error()
	}
	s.publish(ctx, events.Event{
		Type:      eventType,
		TicketID:  ticketID,
		SessionID: sess.ID,
		Payload:   payload,
	})
}

func (s *ConversationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// writeErrorFrom converts an upstream failure into a WriteError carrying the
// server's message when one is available.
func writeErrorFrom(err error) error {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return util.NewWriteError(apiErr.Message, err, map[string]any{"status": apiErr.StatusCode})
	}
	return util.NewWriteError("", err, nil)
}

// fetchErrorFrom maps read failures: upstream 404s become not-found, the rest
// surface as write errors for the caller to retry.
func fetchErrorFrom(err error) error {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
		return util.NewNotFound("ticket", nil)
	}
	return writeErrorFrom(err)
}
