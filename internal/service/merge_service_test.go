package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/agent-console/internal/domain"
	"github.com/spec-kit/agent-console/internal/gateway"
	util "github.com/spec-kit/agent-console/pkg/util"
)

func ticketWithID(id int64, title string) domain.Ticket {
	t := ticket42()
	t.ID = id
	t.Title = title
	return t
}

func newMergeFixture(t *testing.T, tickets ...domain.Ticket) (*fakeAPI, *ConversationService, *MergeService) {
	t.Helper()
	api := newFakeAPI(tickets...)
	conv := newConversationService(api)
	_, _, err := conv.Open(context.Background(), tickets[0].ID)
	require.NoError(t, err)
	return api, conv, NewMergeService(api, conv)
}

func TestMergeAbsorbsSourceIntoPrimary(t *testing.T) {
	primary := ticketWithID(5, "Order missing")
	source := ticketWithID(7, "Where is my order?")
	api, conv, merges := newMergeFixture(t, primary, source)

	got, err := merges.Merge(context.Background(), testSession(), 5, []int64{7})
	require.NoError(t, err)

	require.Len(t, got.MergedTickets, 1)
	assert.Equal(t, int64(7), got.MergedTickets[0].ID)
	require.NotNil(t, got.MergedTickets[0].MergedIntoTicketID)
	assert.Equal(t, int64(5), *got.MergedTickets[0].MergedIntoTicketID)

	// the local conversation adopted the merged server truth
	snapshot, err := conv.Snapshot(5)
	require.NoError(t, err)
	assert.Len(t, snapshot.MergedTickets, 1)
	assert.Equal(t, 1, api.mergeCalls)
}

func TestMergeEmptySourceList(t *testing.T) {
	api, _, merges := newMergeFixture(t, ticketWithID(5, "primary"))

	_, err := merges.Merge(context.Background(), testSession(), 5, nil)
	assert.True(t, util.IsValidation(err))
	assert.Zero(t, api.mergeCalls)
}

func TestMergeSelfRejected(t *testing.T) {
	api, _, merges := newMergeFixture(t, ticketWithID(5, "primary"))

	_, err := merges.Merge(context.Background(), testSession(), 5, []int64{5})
	assert.True(t, util.IsValidation(err))
	assert.Zero(t, api.mergeCalls)
}

func TestMergeAlreadyAbsorbedSourceRejected(t *testing.T) {
	source := ticketWithID(7, "dup")
	source.MergedIntoTicketID = int64Ptr(3)
	api, _, merges := newMergeFixture(t, ticketWithID(5, "primary"), source)

	_, err := merges.Merge(context.Background(), testSession(), 5, []int64{7})
	require.True(t, util.IsValidation(err))
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Contains(t, domainErr.Message, "already merged into ticket 3")
	assert.Zero(t, api.mergeCalls)
}

func TestMergeAbsorbedPrimaryRejected(t *testing.T) {
	primary := ticketWithID(5, "primary")
	primary.MergedIntoTicketID = int64Ptr(2)
	api, _, merges := newMergeFixture(t, primary, ticketWithID(7, "dup"))

	_, err := merges.Merge(context.Background(), testSession(), 5, []int64{7})
	assert.True(t, util.IsValidation(err))
	assert.Zero(t, api.mergeCalls)
}

func TestMergePartialFailureReported(t *testing.T) {
	api, conv, merges := newMergeFixture(t,
		ticketWithID(5, "primary"), ticketWithID(7, "dup"), ticketWithID(8, "locked"))
	api.mergeOutcome = &gateway.MergeOutcome{
		Failures: []gateway.MergeFailure{{SourceTicketID: 8, Reason: "ticket is locked"}},
	}

	_, err := merges.Merge(context.Background(), testSession(), 5, []int64{7, 8})
	require.True(t, util.IsWriteFailure(err))
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ticket is locked", domainErr.Details["8"])

	// the conversation was still reconciled against the server
	_, err = conv.Snapshot(5)
	require.NoError(t, err)
}

func TestMergeUpstreamErrorSurfacesAsWriteFailure(t *testing.T) {
	api, _, merges := newMergeFixture(t, ticketWithID(5, "primary"), ticketWithID(7, "dup"))
	api.mergeErr = errors.New("gateway timeout")

	_, err := merges.Merge(context.Background(), testSession(), 5, []int64{7})
	assert.True(t, util.IsWriteFailure(err))
}

func TestMergeReconciledPrimaryHasFreshTimestamp(t *testing.T) {
	primary := ticketWithID(5, "primary")
	primary.UpdatedAt = time.Now().Add(-time.Hour)
	_, _, merges := newMergeFixture(t, primary, ticketWithID(7, "dup"))

	got, err := merges.Merge(context.Background(), testSession(), 5, []int64{7})
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(primary.UpdatedAt))
}
