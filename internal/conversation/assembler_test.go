package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/agent-console/internal/domain"
)

func int64Ptr(v int64) *int64 { return &v }

func sampleTicket() domain.Ticket {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	reporter := &domain.BaseUser{ID: 7, Name: strPtr("Jane Doe")}
	return domain.Ticket{
		ID:          42,
		Title:       "Where is my order?",
		Description: strPtr("I ordered two weeks ago and nothing arrived."),
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityMedium,
		Reporter:    reporter,
		CreatedAt:   base,
		UpdatedAt:   base.Add(2 * time.Hour),
		Comments: []domain.Comment{
			{ID: 101, CommentText: strPtr("Looking into it."), IsInternalNote: true, CreatedAt: base.Add(30 * time.Minute)},
			{ID: 102, CommentText: strPtr("We found your order."), IsOutgoingReply: true, CreatedAt: base.Add(time.Hour)},
		},
		Attachments: []domain.Attachment{
			{ID: 201, OriginalFilename: "receipt.pdf", TicketID: int64Ptr(42)},
			{ID: 202, OriginalFilename: "label.png", TicketID: int64Ptr(42), CommentID: int64Ptr(102)},
		},
	}
}

func TestAssembleLeadsWithDescription(t *testing.T) {
	ticket := sampleTicket()
	entries := Assemble(ticket)
	require.Len(t, entries, 3)

	head := entries[0]
	assert.Equal(t, DescriptionEntryID, head.Comment.ID)
	require.NotNil(t, head.Comment.CommentText)
	assert.Equal(t, *ticket.Description, *head.Comment.CommentText)
	assert.Equal(t, ticket.CreatedAt, head.Comment.CreatedAt)
	assert.Equal(t, ticket.Reporter, head.Comment.Commenter)
	assert.True(t, head.Comment.IsFromCustomer)
	assert.False(t, head.Comment.IsInternalNote)
	assert.False(t, head.Comment.IsOutgoingReply)
	assert.Equal(t, VariantFromCustomer, head.Variant)

	// only ticket-level attachments ride along with the description entry
	require.Len(t, head.Comment.Attachments, 1)
	assert.Equal(t, int64(201), head.Comment.Attachments[0].ID)
}

func TestAssembleNilDescription(t *testing.T) {
	ticket := sampleTicket()
	ticket.Description = nil
	entries := Assemble(ticket)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(101), entries[0].Comment.ID)
}

func TestAssembleSortedAndStable(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ticket := domain.Ticket{
		ID:        9,
		CreatedAt: base,
		Comments: []domain.Comment{
			{ID: 3, CreatedAt: base.Add(2 * time.Hour)},
			{ID: 1, CreatedAt: base.Add(time.Hour)},
			{ID: 2, CreatedAt: base.Add(time.Hour)}, // tie with ID 1, keeps input order
		},
	}

	entries := Assemble(ticket)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(1), entries[0].Comment.ID)
	assert.Equal(t, int64(2), entries[1].Comment.ID)
	assert.Equal(t, int64(3), entries[2].Comment.ID)

	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].Comment.CreatedAt.Before(entries[i-1].Comment.CreatedAt))
	}

	// idempotent: re-running on the same value yields an identical sequence
	assert.Equal(t, entries, Assemble(ticket))
}

func TestAssembleClassifiesAiSuggestions(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ticket := domain.Ticket{
		ID:        11,
		CreatedAt: base,
		Comments: []domain.Comment{
			{
				ID:             5,
				CommentText:    strPtr("**AI Suggested Reply:**\nHi John, your order #123 shipped."),
				IsInternalNote: true,
				CreatedAt:      base.Add(time.Minute),
			},
		},
	}

	entries := Assemble(ticket)
	require.Len(t, entries, 1)
	assert.Equal(t, VariantAiSuggestion, entries[0].Variant)
	require.NotNil(t, entries[0].Suggestion)
	assert.Equal(t, "AI General Reply", entries[0].Suggestion.Title)
	assert.Equal(t, "Hi John, your order #123 shipped.", entries[0].Suggestion.Body)
}
