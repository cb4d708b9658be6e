package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"lingoscribe/backend/utils"
)

var validate = validator.New()

// YouTubeRequest is the JSON payload for the YouTube transcription flow.
type YouTubeRequest struct {
	URL      string `json:"url" validate:"required"`
	ClientID string `json:"client_id"`
}

// TranscribeYouTube fetches the transcript for a YouTube video and returns
// it with the resolved video id. No media is downloaded and no speech-to-
// text runs on this path; the transcript comes straight from the caption
// provider.
func (h *ApplicationHandler) TranscribeYouTube(c *fiber.Ctx) error {
	h.Logger.Info("Received YouTube transcription request")

	payload := new(YouTubeRequest)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Errorf("Error parsing YouTube request payload: %v", err)
		return utils.RespondWithDetail(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithDetail(c, fiber.StatusBadRequest, fmt.Sprintf("Validation failed: %v", utils.FormatValidationErrors(err)))
	}

	result, videoID, err := h.Transcripts.ProcessVideo(c.Context(), payload.URL, payload.ClientID)
	if err != nil {
		h.Logger.Errorf("YouTube transcription failed: %v", err)
		return utils.RespondWithDetail(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"transcript": result.Text,
		"segments":   result.Segments,
		"videoId":    videoID,
		"sourceUrl":  payload.URL,
	})
}

// UploadFile stores an uploaded audio/video file and returns its transcript
// with timestamps. Storage failures are hard errors; transcription failures
// are absorbed into the result by the speech-to-text service, so the
// response is still 200 with the error text in the transcript field.
func (h *ApplicationHandler) UploadFile(c *fiber.Ctx) error {
	h.Logger.Info("Received file upload request")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Logger.Errorf("Error getting file from request: %v", err)
		return uploadError(c, err)
	}
	clientID := c.FormValue("client_id")

	objectName, fileURL, err := h.Store.SaveUpload(fileHeader)
	if err != nil {
		h.Logger.Errorf("Error saving uploaded file: %v", err)
		return uploadError(c, err)
	}
	h.Logger.Infof("File uploaded to storage: %s", objectName)

	result := h.Transcriber.Transcribe(c.Context(), fileURL, clientID)

	h.Logger.Info("File processing complete")
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"transcript": result.Text,
		"segments":   result.Segments,
		"audioUrl":   fileURL,
	})
}

func uploadError(c *fiber.Ctx, err error) error {
	return utils.RespondWithDetail(c, fiber.StatusInternalServerError,
		fmt.Sprintf("Error processing uploaded file: %v", err))
}
