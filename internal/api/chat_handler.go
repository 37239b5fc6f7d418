package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/suipilot/suipilot/internal/models"
	"github.com/suipilot/suipilot/internal/services"
)

// handleChat classifies the message, routes the intent through the
// dispatcher and returns the resulting ChatResponse, which may carry a
// transaction-data payload for the execute endpoint.
func (s *APIServer) handleChat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	log.Printf("chat request: user=%s message=%q", req.UserAddress, req.Message)

	intent, err := s.intent.ParseIntent(req.Message, req.UserAddress)
	if err != nil {
		log.Printf("intent classification failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error processing request: " + err.Error(),
		})
	}
	log.Printf("intent parsed: action=%s confidence=%.2f", intent.Action, intent.Confidence)

	response, err := s.dispatcher.Dispatch(intent, req.UserAddress)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Detail,
			})
		}
		log.Printf("dispatch failed: action=%s err=%v", intent.Action, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error processing request: " + err.Error(),
		})
	}

	return c.JSON(response)
}
