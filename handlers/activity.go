// handlers/activity.go - Study time heartbeats
package handlers

import (
	"hangeul/middleware"
	"hangeul/utils"

	"github.com/gofiber/fiber/v2"
)

// Heartbeat credits the time since the user's previous heartbeat. Clients
// send one roughly every 30 seconds while a study page is open.
func (h *Handler) Heartbeat(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	outcome, err := h.engine.OnHeartbeat(c.UserContext(), userID, h.clock.Now())
	if err != nil {
		return err
	}
	return utils.OK(c, outcome)
}
