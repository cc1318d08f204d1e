package session

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	util "github.com/spec-kit/agent-console/pkg/util"
)

const contextKey = "console_session"

// Middleware resolves the agent session from the Authorization header and
// stores it on the request context. Requests without a valid token are
// rejected; the session identifies the agent, it does not authorize anything.
func Middleware(manager *Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || token == header {
			return util.NewUnauthorized("session token required")
		}
		sess, err := manager.Parse(token)
		if err != nil {
			return util.NewUnauthorized("invalid session token")
		}
		c.Locals(contextKey, sess)
		return c.Next()
	}
}

// FromContext returns the session attached by Middleware.
func FromContext(c *fiber.Ctx) (Session, bool) {
	sess, ok := c.Locals(contextKey).(Session)
	return sess, ok
}
