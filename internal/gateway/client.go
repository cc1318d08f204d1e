package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/spec-kit/agent-console/internal/domain"
)

// Client is the HTTP implementation of TicketAPI.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// NewClient creates an upstream API client.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTicket retrieves the full ticket snapshot including comments,
// attachments, and merge info.
func (c *Client) FetchTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	url := fmt.Sprintf("%s/tickets/%d", c.baseURL, id)

	var ticket domain.Ticket
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &ticket); err != nil {
		return nil, fmt.Errorf("fetch ticket: %w", err)
	}
	return &ticket, nil
}

// PatchTicket sends a partial update; only provided fields change upstream.
func (c *Client) PatchTicket(ctx context.Context, id int64, patch TicketPatch) error {
	url := fmt.Sprintf("%s/tickets/%d", c.baseURL, id)

	body := map[string]any{}
	if patch.Status != nil {
		body["status"] = *patch.Status
	}
	if patch.Priority != nil {
		body["priority"] = *patch.Priority
	}
	if patch.Assignee != nil {
		// explicit null unassigns
		body["assigneeId"] = patch.Assignee.UserID
	}

	if err := c.doRequest(ctx, http.MethodPut, url, body, nil); err != nil {
		return fmt.Errorf("patch ticket: %w", err)
	}
	return nil
}

// UploadAttachments posts all files in one multipart request and returns the
// created attachment records.
func (c *Client) UploadAttachments(ctx context.Context, ticketID int64, files []FileUpload) ([]domain.Attachment, error) {
	url := fmt.Sprintf("%s/tickets/%d/attachments", c.baseURL, ticketID)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, file := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, file.Name))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("upload attachments: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, fmt.Errorf("upload attachments: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("upload attachments: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("upload attachments: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var attachments []domain.Attachment
	if err := c.send(req, &attachments); err != nil {
		return nil, fmt.Errorf("upload attachments: %w", err)
	}
	return attachments, nil
}

// CreateComment creates the reply comment, referencing previously uploaded
// attachment ids.
func (c *Client) CreateComment(ctx context.Context, ticketID int64, draft CommentDraft) (*domain.Comment, error) {
	url := fmt.Sprintf("%s/tickets/%d/reply", c.baseURL, ticketID)

	var comment domain.Comment
	if err := c.doRequest(ctx, http.MethodPost, url, draft, &comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &comment, nil
}

// MergeTickets folds the source tickets into the primary. The response body
// is optional; when present it lists per-source failures.
func (c *Client) MergeTickets(ctx context.Context, primaryID int64, sourceIDs []int64) (*MergeOutcome, error) {
	url := fmt.Sprintf("%s/tickets/%d/merge", c.baseURL, primaryID)

	body := map[string]any{"sourceTicketIds": sourceIDs}
	var outcome MergeOutcome
	if err := c.doRequest(ctx, http.MethodPost, url, body, &outcome); err != nil {
		return nil, fmt.Errorf("merge tickets: %w", err)
	}
	return &outcome, nil
}

// ListUsers retrieves the read-only agent directory.
func (c *Client) ListUsers(ctx context.Context) ([]domain.BaseUser, error) {
	url := c.baseURL + "/users"

	var users []domain.BaseUser
	if err := c.doRequest(ctx, http.MethodGet, url, nil, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// doRequest performs a JSON request and decodes the response.
func (c *Client) doRequest(ctx context.Context, method, url string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	return c.send(req, result)
}

func (c *Client) send(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: decodeErrorMessage(respBody)}
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeErrorMessage pulls a human message out of an upstream error body,
// tolerating the two envelope shapes the upstream emits.
func decodeErrorMessage(body []byte) string {
	var flat struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Message != "" {
		return flat.Message
	}
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	const max = 200
	text := strings.TrimSpace(string(body))
	if len(text) > max {
		text = text[:max]
	}
	return text
}
