package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration values.
type Config struct {
	Port           string
	DatabaseURL    string
	MaxImageBytes  int64
	RequestTimeout time.Duration
	APIKeyHashes   []string
	Vision         VisionConfig
	Media          MediaConfig
}

// VisionConfig selects and parameterizes the external vision model. All
// values are passed through to the provider unmodified.
type VisionConfig struct {
	Provider     string // groq | gemini | vertex
	GroqAPIKey   string
	GeminiAPIKey string
	Model        string
	Temperature  float64
	MaxTokens    int
	Vertex       VertexConfig
}

// VertexConfig describes Vertex AI connection settings.
type VertexConfig struct {
	ProjectID          string
	Location           string
	APIKey             string
	ServiceAccount     string
	ServiceAccountJSON string
}

// MediaConfig describes S3/media related configuration.
type MediaConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicURL      string
	KeyPrefix      string
	ForcePathStyle bool
}

// FromEnv loads configuration from environment variables and applies defaults.
func FromEnv() Config {
	cfg := Config{
		Port:           getenv("APP_PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MaxImageBytes:  getenvInt64("MAX_IMAGE_BYTES", 5<<20),
		RequestTimeout: time.Duration(getenvInt("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		APIKeyHashes:   splitList(os.Getenv("API_KEY_HASHES")),
		Vision: VisionConfig{
			Provider:     strings.ToLower(getenv("VISION_PROVIDER", "groq")),
			GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			Model:        os.Getenv("MODEL_NAME"),
			Temperature:  getenvFloat("MODEL_TEMPERATURE", 0.3),
			MaxTokens:    getenvInt("MAX_COMPLETION_TOKENS", 1024),
			Vertex: VertexConfig{
				ProjectID:          os.Getenv("VERTEX_PROJECT_ID"),
				Location:           os.Getenv("VERTEX_LOCATION"),
				APIKey:             os.Getenv("VERTEX_API_KEY"),
				ServiceAccount:     os.Getenv("VERTEX_SERVICE_ACCOUNT"),
				ServiceAccountJSON: os.Getenv("VERTEX_SERVICE_ACCOUNT_JSON"),
			},
		},
		Media: MediaConfig{
			Bucket:         os.Getenv("S3_BUCKET"),
			Region:         os.Getenv("S3_REGION"),
			Endpoint:       os.Getenv("S3_ENDPOINT"),
			PublicURL:      os.Getenv("S3_PUBLIC_URL"),
			KeyPrefix:      strings.Trim(os.Getenv("S3_KEY_PREFIX"), "/"),
			ForcePathStyle: getenvBool("S3_FORCE_PATH_STYLE", false),
		},
	}

	if cfg.Port == "" {
		log.Fatal("APP_PORT cannot be empty")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt64(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
