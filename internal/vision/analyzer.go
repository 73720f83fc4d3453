package vision

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"leafsight/internal/analysis"
)

// ErrModelUnavailable indicates the external model call failed or timed out.
var ErrModelUnavailable = errors.New("vision model unavailable")

// ErrParseFailure indicates the model response was uninterpretable even
// after field-level defaulting.
var ErrParseFailure = errors.New("could not parse model response")

// Analyzer turns validated image bytes into a structured leaf analysis.
type Analyzer interface {
	AnalyzeBytes(ctx context.Context, data []byte, mimeType string) (analysis.Result, error)
}

// Config carries the model parameters shared by all providers. Values are
// passed through to the external call unmodified.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return 1024
	}
	return c.MaxTokens
}

func detectMime(data []byte, provided string) string {
	mime := strings.TrimSpace(provided)
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	if !strings.Contains(mime, "image/") {
		return "image/jpeg"
	}
	return mime
}
