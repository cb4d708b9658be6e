package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"lingoscribe/backend/utils"
)

// ChatRequest is the JSON payload for chatting about a transcript.
type ChatRequest struct {
	Transcript   string `json:"transcript" validate:"required"`
	UserMessage  string `json:"user_message" validate:"required"`
	SelectedText string `json:"selected_text"`
}

// ChatWithTranscript answers a user question grounded in the transcript
// they are studying.
func (h *ApplicationHandler) ChatWithTranscript(c *fiber.Ctx) error {
	payload := new(ChatRequest)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Errorf("Error parsing chat payload: %v", err)
		return utils.RespondWithDetail(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithDetail(c, fiber.StatusBadRequest, fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}

	reply, err := h.Chat.Reply(c.Context(), payload.Transcript, payload.UserMessage, payload.SelectedText)
	if err != nil {
		h.Logger.Errorf("Chat completion failed: %v", err)
		return utils.RespondWithDetail(c, fiber.StatusInternalServerError, fmt.Sprintf("Chatbot error: %v", err))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"response": reply})
}
