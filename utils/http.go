// utils/http.go - HTTP utility functions for Fiber handlers
package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gookit/validate"
)

// JSONSuccess sends {"success": true, ...}. Map data is merged into the
// envelope; anything else goes under "data".
func JSONSuccess(c *fiber.Ctx, status int, data interface{}) error {
	response := fiber.Map{"success": true}

	if dataMap, ok := data.(fiber.Map); ok {
		for k, v := range dataMap {
			response[k] = v
		}
	} else if data != nil {
		response["data"] = data
	}

	return c.Status(status).JSON(response)
}

func OK(c *fiber.Ctx, data interface{}) error {
	return JSONSuccess(c, fiber.StatusOK, data)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return JSONSuccess(c, fiber.StatusCreated, data)
}

// JSONError sends {"success": false, "error": message}
func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// ParseAndValidate decodes the JSON body into v and runs its validate tags.
func ParseAndValidate(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	val := validate.Struct(v)
	if !val.Validate() {
		return fiber.NewError(fiber.StatusBadRequest, val.Errors.One())
	}
	return nil
}

// ParamUint reads a positive integer path parameter.
func ParamUint(c *fiber.Ctx, key string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || n == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+key)
	}
	return uint(n), nil
}

// QueryInt reads an integer query parameter clamped to [min, max]; missing or
// malformed values give def.
func QueryInt(c *fiber.Ctx, key string, def, min, max int) int {
	n := c.QueryInt(key, def)
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
