package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/agent-console/internal/api/dto"
	"github.com/spec-kit/agent-console/internal/session"
	util "github.com/spec-kit/agent-console/pkg/util"
)

// SessionHandler issues agent session tokens.
type SessionHandler struct {
	sessions *session.Manager
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create POST /sessions.
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.AgentName) == "" {
		return util.NewValidationError("agentName required", nil)
	}

	sess, token, expiresAt, err := h.sessions.Issue(req.AgentName, req.AgentEmail)
	if err != nil {
		return util.NewInternalError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.SessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}})
}
