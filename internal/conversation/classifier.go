package conversation

import (
	"strings"

	"github.com/spec-kit/agent-console/internal/domain"
)

// Variant is the single rendering classification of a comment. Exactly one
// variant is chosen per comment by fixed precedence.
type Variant string

const (
	VariantAiSuggestion Variant = "ai_suggestion"
	VariantInternalNote Variant = "internal_note"
	VariantOutgoing     Variant = "outgoing_reply"
	VariantFromCustomer Variant = "from_customer"
	VariantSystem       Variant = "system"
)

// aiMarkerPrefixes is the versioned set of recognized suggestion markers.
// AI-authored notes embed a structured suggestion as a prefix convention in
// free text; matching is a plain prefix test on the raw comment text. Longer
// markers sort first so none shadows another.
var aiMarkerPrefixes = []string{
	"**Order Status Found - Suggested Reply:**",
	"**Tracking Update - Suggested Reply:**",
	"**AI Draft Reply:**",
	"**AI Suggested Reply:**",
}

// aiMarkerTitles maps a marker to its human title. Markers without an entry
// fall back to the generic label.
var aiMarkerTitles = map[string]string{
	"**AI Suggested Reply:**":                   "AI General Reply",
	"**Order Status Found - Suggested Reply:**": "AI Order Status Reply",
	"**Tracking Update - Suggested Reply:**":    "AI Tracking Reply",
}

const genericSuggestionTitle = "AI Suggestion"

// Suggestion is the payload parsed out of an AI-authored note.
type Suggestion struct {
	Title string
	Body  string
}

// Classify derives the rendering variant for a comment. Pure and total:
// precedence is AI suggestion, internal note, outgoing reply, from customer,
// then system fallback. AI suggestions are stored as internal notes at rest
// but never double-classify.
func Classify(c domain.Comment) Variant {
	switch {
	case matchMarker(c.CommentText) != "":
		return VariantAiSuggestion
	case c.IsInternalNote:
		return VariantInternalNote
	case c.IsOutgoingReply:
		return VariantOutgoing
	case c.IsFromCustomer:
		return VariantFromCustomer
	default:
		return VariantSystem
	}
}

// ExtractSuggestion parses the suggested reply out of an AI-authored note.
// The payload is everything after the marker's terminating line break, or
// everything after the marker when no line break follows, trimmed. Returns
// false when the comment does not start with a recognized marker.
func ExtractSuggestion(c domain.Comment) (Suggestion, bool) {
	marker := matchMarker(c.CommentText)
	if marker == "" {
		return Suggestion{}, false
	}
	rest := (*c.CommentText)[len(marker):]
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[idx+1:]
	}
	return Suggestion{Title: titleFor(marker), Body: strings.TrimSpace(rest)}, true
}

func matchMarker(text *string) string {
	if text == nil {
		return ""
	}
	for _, prefix := range aiMarkerPrefixes {
		if strings.HasPrefix(*text, prefix) {
			return prefix
		}
	}
	return ""
}

func titleFor(marker string) string {
	if title, ok := aiMarkerTitles[marker]; ok {
		return title
	}
	return genericSuggestionTitle
}
