package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"leafsight/internal/auth"
	"leafsight/internal/config"
	"leafsight/internal/detection"
	"leafsight/internal/events"
	"leafsight/internal/media"
	"leafsight/internal/server"
	"leafsight/internal/storage"
	"leafsight/internal/vision"
)

func main() {
	cfg := config.FromEnv()

	ctx := context.Background()
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	var uploader media.Uploader
	if cfg.Media.Bucket != "" && cfg.Media.Region != "" {
		uploader, err = media.NewUploader(ctx, media.Config{
			Bucket:         cfg.Media.Bucket,
			Region:         cfg.Media.Region,
			Endpoint:       cfg.Media.Endpoint,
			PublicURL:      cfg.Media.PublicURL,
			KeyPrefix:      cfg.Media.KeyPrefix,
			ForcePathStyle: cfg.Media.ForcePathStyle,
		})
		if err != nil {
			log.Fatalf("failed to init media uploader: %v", err)
		}
	} else {
		uploader, err = media.NewLocalUploader("")
		if err != nil {
			log.Fatalf("failed to init local media storage: %v", err)
		}
		log.Println("image archive: using local temp storage (S3 config missing)")
	}

	visionCfg := vision.Config{
		Model:       cfg.Vision.Model,
		Temperature: cfg.Vision.Temperature,
		MaxTokens:   cfg.Vision.MaxTokens,
		Timeout:     cfg.RequestTimeout,
	}

	var analyzer vision.Analyzer
	switch cfg.Vision.Provider {
	case "gemini":
		if cfg.Vision.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY is required for the gemini provider")
		}
		analyzer = vision.NewGeminiAnalyzer(cfg.Vision.GeminiAPIKey, visionCfg)
		log.Println("analyzer ready: Gemini")
	case "vertex":
		analyzer = vision.NewVertexAnalyzer(vision.VertexConfig{
			ProjectID:          cfg.Vision.Vertex.ProjectID,
			Location:           cfg.Vision.Vertex.Location,
			APIKey:             cfg.Vision.Vertex.APIKey,
			ServiceAccount:     cfg.Vision.Vertex.ServiceAccount,
			ServiceAccountJSON: cfg.Vision.Vertex.ServiceAccountJSON,
		}, visionCfg)
		log.Println("analyzer ready: Vertex AI")
	default:
		if cfg.Vision.GroqAPIKey == "" {
			log.Fatal("GROQ_API_KEY is required for the groq provider")
		}
		analyzer = vision.NewGroqAnalyzer(cfg.Vision.GroqAPIKey, visionCfg)
		log.Println("analyzer ready: Groq")
	}

	broker := events.NewBroker()

	handler := detection.Handler{
		Analyzer:      analyzer,
		Store:         store,
		Uploader:      uploader,
		Events:        broker,
		MaxImageBytes: cfg.MaxImageBytes,
		Provider:      cfg.Vision.Provider,
		Model:         cfg.Vision.Model,
	}

	srv := server.New(cfg.Port, handler, auth.Middleware{Hashes: cfg.APIKeyHashes})

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		log.Println("shutting down server...")
		if err := srv.Close(); err != nil {
			log.Printf("server close error: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}
