// handlers/quiz.go - Quiz selection, submission and answer checks
package handlers

import (
	"hangeul/middleware"
	"hangeul/models"
	"hangeul/services"
	"hangeul/utils"

	"github.com/gofiber/fiber/v2"
)

type SubmitQuizRequest struct {
	GrammarIDs     []uint `json:"grammar_ids"`
	VocabularyIDs  []uint `json:"vocabulary_ids"`
	TotalQuestions int    `json:"total_questions" validate:"min:0"`
}

type CheckAnswerRequest struct {
	ItemID    uint   `json:"item_id" validate:"required"`
	Direction string `json:"direction" validate:"required|in:ko-en,en-ko"`
	Answer    string `json:"answer"`
}

func quizType(c *fiber.Ctx) (models.QuizType, error) {
	t := models.QuizType(c.Params("type"))
	if !t.Valid() {
		return "", fiber.NewError(fiber.StatusBadRequest, "Unknown quiz type")
	}
	return t, nil
}

// GetQuiz picks the items of a new quiz.
func (h *Handler) GetQuiz(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	t, err := quizType(c)
	if err != nil {
		return err
	}

	count := utils.QueryInt(c, "count", 0, 0, 500)
	sel, err := h.quizzes.Select(c.UserContext(), userID, t, count)
	if err != nil {
		return serviceError(err)
	}
	return utils.OK(c, sel)
}

// SubmitQuiz records a finished quiz and the items answered correctly.
func (h *Handler) SubmitQuiz(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	t, err := quizType(c)
	if err != nil {
		return err
	}

	var req SubmitQuizRequest
	if err := utils.ParseAndValidate(c, &req); err != nil {
		return err
	}

	outcome, err := h.engine.OnQuizSubmitted(c.UserContext(), userID, services.Submission{
		Type:                 t,
		CorrectGrammarIDs:    req.GrammarIDs,
		CorrectVocabularyIDs: req.VocabularyIDs,
		TotalQuestions:       req.TotalQuestions,
	})
	if err != nil {
		return serviceError(err)
	}
	return utils.OK(c, outcome)
}

func (h *Handler) CheckAnswer(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req CheckAnswerRequest
	if err := utils.ParseAndValidate(c, &req); err != nil {
		return err
	}

	check, err := h.quizzes.CheckAnswer(c.UserContext(), userID, req.ItemID, req.Direction, req.Answer)
	if err != nil {
		return serviceError(err)
	}
	return utils.OK(c, check)
}

// ResetAsked makes every item of a domain eligible as "unasked" again.
func (h *Handler) ResetAsked(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	domain := models.Domain(c.Params("domain"))
	if !domain.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Unknown domain")
	}

	n, err := h.engine.ResetAsked(c.UserContext(), userID, domain)
	if err != nil {
		return serviceError(err)
	}
	return utils.OK(c, fiber.Map{"domain": domain, "reset": n})
}
