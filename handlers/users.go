// handlers/users.go - Current account
package handlers

import (
	"errors"
	"strings"

	"hangeul/middleware"
	"hangeul/models"
	"hangeul/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UpdateMeRequest struct {
	Email           string `json:"email" validate:"email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" validate:"minLen:6"`
}

func (h *Handler) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := h.db.WithContext(c.UserContext()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return utils.OK(c, fiber.Map{"user": userInfo(user)})
}

// UpdateMe sets the email and, given the current password, a new password.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req UpdateMeRequest
	if err := utils.ParseAndValidate(c, &req); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if email := strings.TrimSpace(req.Email); email != "" {
		updates["email"] = email
		user.Email = &email
	}
	if req.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Current password is incorrect")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		updates["password"] = string(hashed)
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Nothing to update")
	}

	if err := h.db.WithContext(c.UserContext()).Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusBadRequest, "Email already in use")
		}
		return err
	}
	return utils.OK(c, fiber.Map{"user": userInfo(user)})
}
