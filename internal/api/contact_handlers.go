package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/suipilot/suipilot/internal/models"
	"github.com/suipilot/suipilot/internal/services"
)

type SaveContactRequest struct {
	UserAddress    string `json:"user_address"`
	ContactName    string `json:"contact_name"`
	ContactAddress string `json:"contact_address"`
	Notes          string `json:"notes,omitempty"`
}

// handleSaveContact encrypts the contact, merges it into the user's existing
// record set and stores the new blob id.
func (s *APIServer) handleSaveContact(c *fiber.Ctx) error {
	var req SaveContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ContactName == "" || req.ContactAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Contact name and address are required",
		})
	}

	blobID, err := s.vault.SaveContact(req.UserAddress, models.ContactRecord{
		Name:    req.ContactName,
		Address: req.ContactAddress,
		Notes:   req.Notes,
	})
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Detail,
			})
		}
		log.Printf("save contact failed: user=%s err=%v", req.UserAddress, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error saving contact: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Contact saved successfully",
		"blob_id": blobID,
	})
}

// handleListContacts downloads and decrypts the user's contact set. A user
// with no prior save gets an empty list, not an error.
func (s *APIServer) handleListContacts(c *fiber.Ctx) error {
	userAddress := c.Query("user_address")
	if userAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_address query parameter is required",
		})
	}

	contacts, err := s.vault.ListContacts(userAddress)
	if err != nil {
		log.Printf("list contacts failed: user=%s err=%v", userAddress, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error retrieving contacts: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{"contacts": contacts})
}
