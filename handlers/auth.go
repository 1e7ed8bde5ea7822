// handlers/auth.go - Registration and login
package handlers

import (
	"errors"
	"strings"
	"time"

	"hangeul/models"
	"hangeul/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required|minLen:3|maxLen:50"`
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"required|minLen:6"`
}

type AuthResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token,omitempty"`
	User    UserInfo `json:"user"`
}

type UserInfo struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func userInfo(user *models.User) UserInfo {
	info := UserInfo{ID: user.ID, Username: user.Username, CreatedAt: user.CreatedAt}
	if user.Email != nil {
		info.Email = *user.Email
	}
	return info
}

// Register creates an account and seeds its achievements.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := utils.ParseAndValidate(c, &req); err != nil {
		return err
	}
	req.Username = strings.TrimSpace(req.Username)

	var existing models.User
	err := h.db.WithContext(c.UserContext()).Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Username already taken")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		Username:  req.Username,
		Password:  string(hashed),
		LastLogin: time.Now(),
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		user.Email = &email
	}
	if err := h.db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusBadRequest, "Username or email already taken")
		}
		return err
	}

	h.engine.OnUserRegistered(c.UserContext(), user.ID)

	token, err := h.auth.IssueToken(user.ID, user.Username)
	if err != nil {
		return err
	}

	h.log.Info().Uint("user_id", user.ID).Msg("user registered")
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{Success: true, Token: token, User: userInfo(&user)})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := utils.ParseAndValidate(c, &req); err != nil {
		return err
	}

	var user models.User
	if err := h.db.WithContext(c.UserContext()).Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}

	user.LastLogin = time.Now()
	if err := h.db.WithContext(c.UserContext()).Model(&user).Update("last_login", user.LastLogin).Error; err != nil {
		h.log.Warn().Err(err).Uint("user_id", user.ID).Msg("updating last login failed")
	}

	token, err := h.auth.IssueToken(user.ID, user.Username)
	if err != nil {
		return err
	}

	return c.JSON(AuthResponse{Success: true, Token: token, User: userInfo(&user)})
}
