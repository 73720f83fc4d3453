package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.MaxImageBytes != 5<<20 {
		t.Errorf("max image bytes = %d", cfg.MaxImageBytes)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("request timeout = %v", cfg.RequestTimeout)
	}
	if cfg.Vision.Provider != "groq" {
		t.Errorf("provider = %q", cfg.Vision.Provider)
	}
	if cfg.Vision.Temperature != 0.3 {
		t.Errorf("temperature = %v", cfg.Vision.Temperature)
	}
	if cfg.Vision.MaxTokens != 1024 {
		t.Errorf("max tokens = %d", cfg.Vision.MaxTokens)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("VISION_PROVIDER", "Gemini")
	t.Setenv("MODEL_TEMPERATURE", "0")
	t.Setenv("MAX_COMPLETION_TOKENS", "2048")
	t.Setenv("MAX_IMAGE_BYTES", "1048576")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "15")
	t.Setenv("API_KEY_HASHES", " hash-a , hash-b ,")

	cfg := FromEnv()

	if cfg.Port != "9090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.Vision.Provider != "gemini" {
		t.Errorf("provider = %q", cfg.Vision.Provider)
	}
	if cfg.Vision.Temperature != 0 {
		t.Errorf("temperature = %v", cfg.Vision.Temperature)
	}
	if cfg.Vision.MaxTokens != 2048 {
		t.Errorf("max tokens = %d", cfg.Vision.MaxTokens)
	}
	if cfg.MaxImageBytes != 1<<20 {
		t.Errorf("max image bytes = %d", cfg.MaxImageBytes)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("request timeout = %v", cfg.RequestTimeout)
	}
	if len(cfg.APIKeyHashes) != 2 || cfg.APIKeyHashes[0] != "hash-a" || cfg.APIKeyHashes[1] != "hash-b" {
		t.Errorf("api key hashes = %v", cfg.APIKeyHashes)
	}
}

func TestFromEnvBadNumbersFallBack(t *testing.T) {
	t.Setenv("MODEL_TEMPERATURE", "hot")
	t.Setenv("MAX_COMPLETION_TOKENS", "lots")

	cfg := FromEnv()

	if cfg.Vision.Temperature != 0.3 {
		t.Errorf("temperature = %v", cfg.Vision.Temperature)
	}
	if cfg.Vision.MaxTokens != 1024 {
		t.Errorf("max tokens = %d", cfg.Vision.MaxTokens)
	}
}
