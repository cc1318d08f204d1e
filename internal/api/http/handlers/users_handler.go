package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/agent-console/internal/api/dto"
	"github.com/spec-kit/agent-console/internal/service"
)

// UsersHandler serves the agent directory for assignee selection.
type UsersHandler struct {
	directory *service.DirectoryService
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(directory *service.DirectoryService) *UsersHandler {
	return &UsersHandler{directory: directory}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.directory.ListAgents(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.UserResponse{
			ID:    users[i].ID,
			Name:  users[i].Name,
			Email: users[i].Email,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
