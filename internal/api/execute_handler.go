package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/suipilot/suipilot/internal/models"
	"github.com/suipilot/suipilot/internal/services"
)

// handleExecute consumes a transaction-data payload from a prior chat
// dispatch and either executes it server-side (private key supplied) or
// returns the built transaction bytes for client-side signing.
func (s *APIServer) handleExecute(c *fiber.Ctx) error {
	var req models.ExecuteTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.TransactionData != nil {
		log.Printf("execute request: user=%s action=%s key_provided=%t",
			req.UserAddress, req.TransactionData.Action, req.TransactionData.PrivateKey != "")
	}

	result, err := s.executor.Execute(req)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Detail,
			})
		}
		log.Printf("execute failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}
