// handlers/content.go - Grammar and vocabulary CRUD
package handlers

import (
	"hangeul/middleware"
	"hangeul/models"
	"hangeul/services"
	"hangeul/utils"

	"github.com/gofiber/fiber/v2"
)

type CreateGrammarRequest struct {
	Title          string `json:"title" validate:"required|maxLen:200"`
	Explanation    string `json:"explanation" validate:"required"`
	KoreanExample  string `json:"korean_example"`
	EnglishExample string `json:"english_example"`
}

type CreateVocabularyRequest struct {
	Word       string `json:"word" validate:"required|maxLen:200"`
	Meaning    string `json:"meaning" validate:"required"`
	MeaningGeo string `json:"meaning_geo"`
}

// listDay reads ?day=; "today" is resolved on the business clock.
func (h *Handler) listDay(c *fiber.Ctx) string {
	day := c.Query("day")
	if day == "today" {
		return h.clock.Today()
	}
	return day
}

func (h *Handler) ListGrammar(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	items, err := h.content.ListGrammar(c.UserContext(), userID, h.listDay(c), utils.QueryInt(c, "limit", 0, 0, 1000))
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"items": items, "count": len(items)})
}

func (h *Handler) CreateGrammar(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req CreateGrammarRequest
	if err := utils.ParseAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.content.CreateGrammar(c.UserContext(), userID, services.GrammarInput{
		Title:          req.Title,
		Explanation:    req.Explanation,
		KoreanExample:  req.KoreanExample,
		EnglishExample: req.EnglishExample,
	})
	if err != nil {
		return serviceError(err)
	}

	unlocks := h.engine.OnContentCreated(c.UserContext(), userID, models.DomainGrammar)
	return utils.Created(c, fiber.Map{"item": item, "unlocks": unlocks})
}

// UpdateGrammar edits one of the user's rules in place.
func (h *Handler) UpdateGrammar(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := utils.ParamUint(c, "id")
	if err != nil {
		return err
	}

	var req CreateGrammarRequest
	if err := utils.ParseAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.content.UpdateGrammar(c.UserContext(), userID, id, services.GrammarInput{
		Title:          req.Title,
		Explanation:    req.Explanation,
		KoreanExample:  req.KoreanExample,
		EnglishExample: req.EnglishExample,
	})
	if err != nil {
		return serviceError(err)
	}
	return utils.OK(c, fiber.Map{"item": item})
}

func (h *Handler) DeleteGrammar(c *fiber.Ctx) error {
	return h.deleteItem(c, models.DomainGrammar)
}

func (h *Handler) ListVocabulary(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	items, err := h.content.ListVocabulary(c.UserContext(), userID, h.listDay(c), utils.QueryInt(c, "limit", 0, 0, 5000))
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"items": items, "count": len(items)})
}

func (h *Handler) CreateVocabulary(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req CreateVocabularyRequest
	if err := utils.ParseAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.content.CreateVocabulary(c.UserContext(), userID, services.VocabularyInput{
		Word:       req.Word,
		Meaning:    req.Meaning,
		MeaningGeo: req.MeaningGeo,
	})
	if err != nil {
		return serviceError(err)
	}

	unlocks := h.engine.OnContentCreated(c.UserContext(), userID, models.DomainVocabulary)
	return utils.Created(c, fiber.Map{"item": item, "unlocks": unlocks})
}

func (h *Handler) DeleteVocabulary(c *fiber.Ctx) error {
	return h.deleteItem(c, models.DomainVocabulary)
}

func (h *Handler) deleteItem(c *fiber.Ctx, domain models.Domain) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := utils.ParamUint(c, "id")
	if err != nil {
		return err
	}

	if err := h.content.Delete(c.UserContext(), userID, domain, id); err != nil {
		return serviceError(err)
	}

	unlocks := h.engine.OnContentDeleted(c.UserContext(), userID, domain)
	return utils.OK(c, fiber.Map{"deleted": id, "unlocks": unlocks})
}
