package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/agent-console/internal/domain"
	util "github.com/spec-kit/agent-console/pkg/util"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func seedTicket() domain.Ticket {
	return domain.Ticket{
		ID:        42,
		Title:     "Order missing",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityMedium,
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewWithClock(seedTicket(), clock.Now), clock
}

func TestApplySetStatusIsImmediate(t *testing.T) {
	s, _ := newTestStore()
	before := s.Snapshot()

	got := s.Apply(SetStatus{Status: domain.TicketStatusClosed})

	assert.Equal(t, domain.TicketStatusClosed, got.Status)
	assert.Equal(t, domain.TicketStatusClosed, s.Snapshot().Status)
	assert.True(t, got.UpdatedAt.After(before.UpdatedAt))
	// the input snapshot value the caller held is untouched
	assert.Equal(t, domain.TicketStatusOpen, before.Status)
}

func TestApplyMergesConcurrentFieldMutations(t *testing.T) {
	s, _ := newTestStore()

	s.Apply(SetStatus{Status: domain.TicketStatusInProgress})
	s.Apply(SetAssignee{UserID: int64Ptr(7), User: &domain.BaseUser{ID: 7, Name: strPtr("Sam")}})
	got := s.Apply(SetPriority{Priority: domain.TicketPriorityUrgent})

	// each reducer merged into the previous snapshot, clobbering nothing
	assert.Equal(t, domain.TicketStatusInProgress, got.Status)
	require.NotNil(t, got.Assignee)
	assert.Equal(t, int64(7), got.Assignee.ID)
	assert.Equal(t, domain.TicketPriorityUrgent, got.Priority)
}

func TestSetAssigneeUnassigns(t *testing.T) {
	s, _ := newTestStore()
	s.Apply(SetAssignee{UserID: int64Ptr(7), User: &domain.BaseUser{ID: 7}})
	got := s.Apply(SetAssignee{})
	assert.Nil(t, got.Assignee)
}

func TestSetAssigneeByIDOnly(t *testing.T) {
	s, _ := newTestStore()
	got := s.Apply(SetAssignee{UserID: int64Ptr(9)})
	require.NotNil(t, got.Assignee)
	assert.Equal(t, int64(9), got.Assignee.ID)
	assert.Nil(t, got.Assignee.Name)
}

func TestAppendCommentKeepsTempID(t *testing.T) {
	s, _ := newTestStore()
	tempID := s.AllocateCommentID()
	require.Negative(t, tempID)

	got := s.Apply(AppendComment{Comment: domain.Comment{
		ID:          tempID,
		CommentText: strPtr("on it"),
	}})
	require.Len(t, got.Comments, 1)
	assert.Equal(t, tempID, got.Comments[0].ID)
}

func TestAllocateCommentIDMonotonic(t *testing.T) {
	s, _ := newTestStore()
	seen := map[int64]bool{}
	prev := int64(0)
	for i := 0; i < 50; i++ {
		id := s.AllocateCommentID()
		assert.Negative(t, id)
		assert.False(t, seen[id])
		if prev != 0 {
			assert.Less(t, id, prev)
		}
		seen[id] = true
		prev = id
	}
}

func TestReconcileAdoptsServerSnapshot(t *testing.T) {
	s, _ := newTestStore()
	seq := s.Begin()
	s.Apply(SetStatus{Status: domain.TicketStatusClosed})

	server := seedTicket()
	server.Status = domain.TicketStatusClosed
	server.UpdatedAt = server.UpdatedAt.Add(time.Minute)

	got, err := s.Reconcile(seq, server)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, got.Status)
	assert.Equal(t, server.UpdatedAt, got.UpdatedAt)
}

func TestReconcileRollsBackFailedMutation(t *testing.T) {
	s, _ := newTestStore()
	seq := s.Begin()
	s.Apply(SetStatus{Status: domain.TicketStatusClosed})

	// upstream rejected the write; rollback refetches server truth
	server := seedTicket()
	got, err := s.Reconcile(seq, server)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, got.Status)
	assert.Equal(t, domain.TicketStatusOpen, s.Snapshot().Status)
}

func TestReconcileDiscardsTempComment(t *testing.T) {
	s, _ := newTestStore()
	seq := s.Begin()
	tempID := s.AllocateCommentID()
	s.Apply(AppendComment{Comment: domain.Comment{ID: tempID, CommentText: strPtr("draft")}})

	server := seedTicket()
	server.Comments = []domain.Comment{{ID: 901, CommentText: strPtr("draft")}}
	server.UpdatedAt = server.UpdatedAt.Add(time.Minute)

	got, err := s.Reconcile(seq, server)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, int64(901), got.Comments[0].ID)
}

func TestReconcileStaleGuards(t *testing.T) {
	s, _ := newTestStore()
	seq := s.Begin()

	t.Run("wrong ticket id", func(t *testing.T) {
		other := seedTicket()
		other.ID = 99
		_, err := s.Reconcile(seq, other)
		assert.True(t, util.IsStaleResponse(err))
	})

	t.Run("sequence never issued", func(t *testing.T) {
		_, err := s.Reconcile(seq+10, seedTicket())
		assert.True(t, util.IsStaleResponse(err))
	})

	t.Run("zero sequence", func(t *testing.T) {
		_, err := s.Reconcile(0, seedTicket())
		assert.True(t, util.IsStaleResponse(err))
	})

	t.Run("closed store", func(t *testing.T) {
		closed, _ := newTestStore()
		closedSeq := closed.Begin()
		closed.Close()
		_, err := closed.Reconcile(closedSeq, seedTicket())
		assert.True(t, util.IsStaleResponse(err))
	})
}

func TestReconcileOutOfOrderConfirmations(t *testing.T) {
	s, _ := newTestStore()
	seqA := s.Begin()
	seqB := s.Begin()

	// confirmation for the later request lands first with newer server truth
	newer := seedTicket()
	newer.Status = domain.TicketStatusInProgress
	newer.UpdatedAt = newer.UpdatedAt.Add(2 * time.Minute)
	_, err := s.Reconcile(seqB, newer)
	require.NoError(t, err)

	// the earlier confirmation carries an older snapshot and is discarded
	older := seedTicket()
	older.UpdatedAt = older.UpdatedAt.Add(time.Minute)
	_, err = s.Reconcile(seqA, older)
	assert.True(t, util.IsStaleResponse(err))

	assert.Equal(t, domain.TicketStatusInProgress, s.Snapshot().Status)
}

func TestReconcileReflectsConcurrentAgentChange(t *testing.T) {
	s, _ := newTestStore()
	seq := s.Begin()
	s.Apply(SetStatus{Status: domain.TicketStatusClosed})

	// another agent changed the assignee while our status write was in
	// flight; the server snapshot is the arbiter of truth
	server := seedTicket()
	server.Status = domain.TicketStatusClosed
	server.Assignee = &domain.BaseUser{ID: 3}
	server.UpdatedAt = server.UpdatedAt.Add(time.Minute)

	got, err := s.Reconcile(seq, server)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, got.Status)
	require.NotNil(t, got.Assignee)
	assert.Equal(t, int64(3), got.Assignee.ID)
}
