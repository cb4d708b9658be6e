package config

import (
	"os"
	"strings"
)

// AllowedOrigins builds the comma-separated CORS origin list for the Fiber
// CORS middleware. The frontend origin comes from FRONTEND_URL (default
// http://localhost:3000); setting ALLOW_ALL_ORIGINS=true appends "*".
func AllowedOrigins() string {
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	origins := []string{frontendURL}
	if strings.EqualFold(os.Getenv("ALLOW_ALL_ORIGINS"), "true") {
		origins = append(origins, "*")
	}
	return strings.Join(origins, ", ")
}

// OpenAIKey returns the API key used for both the Whisper and the chat
// completion calls.
func OpenAIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// TranscriptAPIKey returns the youtube-transcript.io API key.
func TranscriptAPIKey() string {
	return os.Getenv("YOUTUBE_TRANSCRIPT_IO_API_KEY")
}

// Port returns the HTTP listen port, defaulting to 8080.
func Port() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return port
}
