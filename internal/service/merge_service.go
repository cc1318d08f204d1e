package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/agent-console/internal/domain"
	"github.com/spec-kit/agent-console/internal/events"
	"github.com/spec-kit/agent-console/internal/gateway"
	"github.com/spec-kit/agent-console/internal/session"
	util "github.com/spec-kit/agent-console/pkg/util"
)

// MergeService folds duplicate tickets into a primary ticket. Sources become
// terminal (read-only) and the primary is reconciled before the caller
// renders its merged-tickets state.
type MergeService struct {
	api           gateway.TicketAPI
	conversations *ConversationService
}

// NewMergeService constructs the service.
func NewMergeService(api gateway.TicketAPI, conversations *ConversationService) *MergeService {
	return &MergeService{api: api, conversations: conversations}
}

// Merge absorbs the source tickets into the primary. Self-merge, an empty
// source set, an absorbed primary, and re-merging an already-absorbed source
// are all validation errors raised before the merge write is issued. Returns
// the reconciled primary snapshot.
func (s *MergeService) Merge(ctx context.Context, sess session.Session, primaryID int64, sourceIDs []int64) (domain.Ticket, error) {
	if len(sourceIDs) == 0 {
		return domain.Ticket{}, util.NewValidationError("no source tickets to merge", nil)
	}
	for _, id := range sourceIDs {
		if id == primaryID {
			return domain.Ticket{}, util.NewValidationError("cannot merge a ticket into itself", map[string]any{
				"ticket_id": primaryID,
			})
		}
	}

	st, err := s.conversations.storeFor(primaryID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if st.Snapshot().Absorbed() {
		return domain.Ticket{}, util.NewValidationError("primary ticket has itself been merged", map[string]any{
			"ticket_id": primaryID,
		})
	}

	// an already-absorbed source must surface as an error, not a silent no-op
	for _, id := range sourceIDs {
		source, err := s.api.FetchTicket(ctx, id)
		if err != nil {
			return domain.Ticket{}, fetchErrorFrom(err)
		}
		if source.Absorbed() {
			return domain.Ticket{}, util.NewValidationError(
				fmt.Sprintf("ticket %d is already merged into ticket %d", id, *source.MergedIntoTicketID),
				map[string]any{"ticket_id": id, "merged_into": *source.MergedIntoTicketID},
			)
		}
	}

	seq := st.Begin()
	outcome, err := s.api.MergeTickets(ctx, primaryID, sourceIDs)
	if err != nil {
		return domain.Ticket{}, writeErrorFrom(err)
	}
	if outcome != nil && len(outcome.Failures) > 0 {
		// some sources may have merged; reconcile so the UI reflects the
		// partial result, then report the rejected sources
		s.conversations.refresh(ctx, st, seq)
		details := make(map[string]any, len(outcome.Failures))
		for _, failure := range outcome.Failures {
			details[fmt.Sprintf("%d", failure.SourceTicketID)] = failure.Reason
		}
		return domain.Ticket{}, util.NewWriteError("some tickets could not be merged", nil, details)
	}

	reconciled := s.conversations.refresh(ctx, st, seq)
	s.conversations.publish(ctx, events.Event{
		Type:      events.EventTicketsMerged,
		TicketID:  primaryID,
		SessionID: sess.ID,
		Payload: events.TicketsMergedPayload{
			PrimaryTicketID: primaryID,
			SourceTicketIDs: sourceIDs,
		},
	})
	return reconciled, nil
}
