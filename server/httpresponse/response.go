package httpresponse

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// ApplySuccessToResponse writes the standard success envelope
func ApplySuccessToResponse(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// ApplyErrorToResponse logs an unexpected error and writes a 500 envelope
func ApplyErrorToResponse(c *fiber.Ctx, message string, err error) error {
	if err != nil {
		log.Error(fmt.Sprintf("%s: %v", message, err))
	} else {
		log.Error(message)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// ApplyBadRequestToResponse rejects a malformed or invalid request
func ApplyBadRequestToResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// ApplyNotFoundToResponse reports a missing resource
func ApplyNotFoundToResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// ApplyUnavailableToResponse reports an upstream outage that survived the
// retry policy
func ApplyUnavailableToResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
