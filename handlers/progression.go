// handlers/progression.go - Streak, achievement and challenge reads
package handlers

import (
	"hangeul/middleware"
	"hangeul/utils"

	"github.com/gofiber/fiber/v2"
)

// Dashboard re-runs the evaluation chain, then returns the profile rollup.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	dash, err := h.engine.Dashboard(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return utils.OK(c, dash)
}

func (h *Handler) Streak(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	streak, err := h.engine.Streak(c.UserContext(), userID)
	if err != nil {
		return err
	}
	seconds, err := h.engine.TodaySeconds(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"streak": streak, "today_seconds": seconds})
}

func (h *Handler) Achievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	rows, err := h.engine.Achievements(c.UserContext(), userID)
	if err != nil {
		return err
	}

	unlocked := 0
	for _, a := range rows {
		if a.Status {
			unlocked++
		}
	}
	return utils.OK(c, fiber.Map{"achievements": rows, "unlocked": unlocked, "total": len(rows)})
}

func (h *Handler) Challenges(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	status, err := h.engine.Challenges(c.UserContext(), userID)
	if err != nil {
		return err
	}
	perfect, err := h.engine.PerfectDays(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"challenge": status, "perfect_days": perfect})
}
