package handlers

import (
	"context"
	"mime/multipart"

	"github.com/sirupsen/logrus"

	"lingoscribe/backend/internal/progress"
	"lingoscribe/backend/models"
)

// TranscriptProvider fetches a ready-made transcript for a YouTube video.
// This is the hard-fail path: errors propagate to the caller and become
// the HTTP error detail.
type TranscriptProvider interface {
	ProcessVideo(ctx context.Context, url, clientID string) (models.TranscriptResult, string, error)
}

// SpeechToText transcribes stored media. This is the soft-fail path: a
// failure comes back as a normal-shaped result carrying the error message
// as its text, never as an error.
type SpeechToText interface {
	Transcribe(ctx context.Context, source, clientID string) models.TranscriptResult
}

// ObjectStore is the storage capability the upload flow needs.
type ObjectStore interface {
	SaveUpload(fileHeader *multipart.FileHeader) (objectName, publicURL string, err error)
	Download(key string) ([]byte, error)
}

// ChatModel answers questions about a transcript.
type ChatModel interface {
	Reply(ctx context.Context, transcript, userMessage, selectedText string) (string, error)
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Logger      *logrus.Logger
	Progress    *progress.Registry
	Store       ObjectStore
	Transcriber SpeechToText
	Transcripts TranscriptProvider
	Chat        ChatModel
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(
	logger *logrus.Logger,
	registry *progress.Registry,
	store ObjectStore,
	transcriber SpeechToText,
	transcripts TranscriptProvider,
	chat ChatModel,
) *ApplicationHandler {
	return &ApplicationHandler{
		Logger:      logger,
		Progress:    registry,
		Store:       store,
		Transcriber: transcriber,
		Transcripts: transcripts,
		Chat:        chat,
	}
}
