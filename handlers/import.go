// handlers/import.go - Vocabulary spreadsheet upload
package handlers

import (
	"hangeul/middleware"
	"hangeul/models"
	"hangeul/utils"

	"github.com/gofiber/fiber/v2"
)

// ImportVocabulary stores the rows of an uploaded .xlsx or .csv file
// (multipart field "file").
func (h *Handler) ImportVocabulary(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing file")
	}
	file, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Unreadable file")
	}
	defer file.Close()

	result, err := h.importer.Import(c.UserContext(), userID, header.Filename, file)
	if err != nil {
		return serviceError(err)
	}

	var unlocks interface{}
	if result.Created > 0 {
		unlocks = h.engine.OnContentCreated(c.UserContext(), userID, models.DomainVocabulary)
	}
	return utils.OK(c, fiber.Map{"import": result, "unlocks": unlocks})
}
