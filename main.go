package main

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"lingoscribe/backend/config"
	"lingoscribe/backend/handlers"
	"lingoscribe/backend/internal/chat"
	"lingoscribe/backend/internal/progress"
	"lingoscribe/backend/internal/storage"
	"lingoscribe/backend/internal/whisper"
	"lingoscribe/backend/internal/youtube"
	"lingoscribe/backend/middleware"
)

func main() {
	config.InitLogger()

	if err := config.InitSupabase(); err != nil {
		log.Fatalf("Failed to initialize Supabase: %v", err)
	}

	app := fiber.New(fiber.Config{
		// Uploaded media can be large.
		BodyLimit: 100 * 1024 * 1024,
	})

	// Middleware
	origins := config.AllowedOrigins()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: !strings.Contains(origins, "*"),
	}))
	app.Use(middleware.RequestLogger())

	// Wire up the service dependencies. The progress registry is the only
	// shared mutable state; everything else is a stateless API client.
	registry := progress.NewRegistry(config.Log)
	store := storage.New(config.SupabaseClient, config.GetSupabaseURL(), config.Log)
	transcriber := whisper.NewService(config.OpenAIKey(), store, registry, config.Log)
	transcripts := youtube.NewClient(config.TranscriptAPIKey(), registry, config.Log)
	chatModel := chat.NewClient(config.OpenAIKey(), config.Log)

	h := handlers.NewApplicationHandler(config.Log, registry, store, transcriber, transcripts, chatModel)

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
		})
	})

	app.Post("/upload", h.UploadFile)
	app.Post("/transcribe-youtube", h.TranscribeYouTube)
	app.Post("/chat", h.ChatWithTranscript)

	// Per-client progress channel
	app.Use("/ws", h.WebSocketUpgrade)
	app.Get("/ws/:clientId", h.ProgressSocket())

	addr := ":" + config.Port()
	log.Printf("Starting transcriber backend on %s...", addr)
	log.Fatal(app.Listen(addr))
}
