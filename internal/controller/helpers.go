package controller

import (
	"errors"
	"log"
	"strconv"

	"storefront_backend/internal/repository"
	"storefront_backend/pkg/utils/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ErrorHandler renders every error returned by a handler as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error": fe.Message,
		})
	}

	log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

// parseBody decodes the request body into input and validates it.
func parseBody(c *fiber.Ctx, input interface{}) error {
	if err := c.BodyParser(input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	return validation.Struct(input)
}

// storeError turns repository.ErrNotFound into a 404 with message and passes
// anything else through.
func storeError(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, message)
	}
	return err
}

// pagination reads ?page= and ?limit= with sane bounds.
func pagination(c *fiber.Ctx) (limit, offset, page int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return limit, (page - 1) * limit, page
}
