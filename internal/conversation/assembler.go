package conversation

import (
	"sort"

	"github.com/spec-kit/agent-console/internal/domain"
)

// DescriptionEntryID is the reserved sentinel id for the synthesized
// description entry. Real comment ids from the server are positive.
const DescriptionEntryID int64 = -1

// TimelineEntry is one row of the assembled conversation, classified once at
// assembly so downstream code never re-parses raw text or booleans.
type TimelineEntry struct {
	Comment    domain.Comment
	Variant    Variant
	Suggestion *Suggestion
}

// Assemble merges the ticket description and its comments into one
// chronologically ordered timeline. Deterministic: the same ticket value
// always yields the same sequence, with ties broken by input order.
func Assemble(t domain.Ticket) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(t.Comments)+1)

	if t.Description != nil {
		desc := *t.Description
		entries = append(entries, newEntry(domain.Comment{
			ID:             DescriptionEntryID,
			CommentText:    &desc,
			CreatedAt:      t.CreatedAt,
			Commenter:      t.Reporter,
			IsFromCustomer: true,
			Attachments:    ticketLevelAttachments(t),
		}))
	}

	for _, c := range t.Comments {
		entries = append(entries, newEntry(c))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Comment.CreatedAt.Before(entries[j].Comment.CreatedAt)
	})
	return entries
}

// ticketLevelAttachments returns attachments bound to the ticket itself
// rather than to a specific comment. These render with the description entry.
func ticketLevelAttachments(t domain.Ticket) []domain.Attachment {
	var result []domain.Attachment
	for _, att := range t.Attachments {
		if att.CommentID == nil {
			result = append(result, att)
		}
	}
	return result
}

func newEntry(c domain.Comment) TimelineEntry {
	entry := TimelineEntry{Comment: c, Variant: Classify(c)}
	if entry.Variant == VariantAiSuggestion {
		if suggestion, ok := ExtractSuggestion(c); ok {
			entry.Suggestion = &suggestion
		}
	}
	return entry
}
