package handlers

import (
	"errors"
	"log"

	"gudang/internal/models"

	"github.com/gofiber/fiber/v2"
)

// validationEntry is one entry of a validation error detail list.
type validationEntry struct {
	Msg string `json:"msg"`
}

// respondError maps a domain error to the wire error envelope. The body
// always carries a "detail" field: a plain message, or a list of {msg}
// entries for validation failures.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		entries := make([]validationEntry, 0, len(validationErr.Messages))
		for _, msg := range validationErr.Messages {
			entries = append(entries, validationEntry{Msg: msg})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": entries})
	}

	var notFoundErr *models.NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": notFoundErr.Error()})
	}

	var stockErr *models.InsufficientStockError
	var stateErr *models.InvalidStateError
	var transitionErr *models.InvalidTransitionError
	if errors.As(err, &stockErr) || errors.As(err, &stateErr) || errors.As(err, &transitionErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	log.Printf("Error handling request %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "internal server error"})
}

// respondBadBody reports an unparseable request body.
func respondBadBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid request body: " + err.Error()})
}
