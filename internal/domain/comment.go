package domain

import "time"

// Comment is one message in a ticket conversation. The three visibility
// booleans are not mutually exclusive in storage; rendering resolves them
// through a fixed classification precedence.
type Comment struct {
	ID                int64        `json:"id"`
	CommentText       *string      `json:"commentText"`
	CreatedAt         time.Time    `json:"createdAt"`
	Commenter         *BaseUser    `json:"commenter"`
	IsInternalNote    bool         `json:"isInternalNote"`
	IsFromCustomer    bool         `json:"isFromCustomer"`
	IsOutgoingReply   bool         `json:"isOutgoingReply"`
	Attachments       []Attachment `json:"attachments"`
	ExternalMessageID *string      `json:"externalMessageId"`
}

// Attachment metadata. An attachment is created once at upload and its
// ticket/comment binding never changes afterwards.
type Attachment struct {
	ID               int64     `json:"id"`
	OriginalFilename string    `json:"originalFilename"`
	FileSize         int64     `json:"fileSize"`
	MimeType         string    `json:"mimeType"`
	UploadedAt       time.Time `json:"uploadedAt"`
	CommentID        *int64    `json:"commentId"`
	TicketID         *int64    `json:"ticketId"`
}
