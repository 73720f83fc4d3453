package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"leafsight/internal/analysis"
	"leafsight/internal/prompts"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiAnalyzer runs the analysis through Google's Generative Language API.
type GeminiAnalyzer struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// NewGeminiAnalyzer constructs a Gemini-backed analyzer.
func NewGeminiAnalyzer(apiKey string, cfg Config) *GeminiAnalyzer {
	model := strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiAnalyzer{
		apiKey:      apiKey,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.maxTokens(),
		timeout:     cfg.timeout(),
	}
}

// AnalyzeBytes runs the analysis on uploaded image data.
func (g *GeminiAnalyzer) AnalyzeBytes(ctx context.Context, data []byte, mimeType string) (analysis.Result, error) {
	if len(data) == 0 {
		return analysis.Result{}, fmt.Errorf("vision: empty image data")
	}
	if strings.TrimSpace(g.apiKey) == "" {
		return analysis.Result{}, fmt.Errorf("%w: missing API key", ErrModelUnavailable)
	}

	childCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(childCtx, &genai.ClientConfig{APIKey: g.apiKey})
	if err != nil {
		return analysis.Result{}, fmt.Errorf("%w: create client: %v", ErrModelUnavailable, err)
	}

	temperature := float32(g.temperature)
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompts.Analysis()),
			genai.NewPartFromBytes(data, detectMime(data, mimeType)),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(childCtx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(g.maxTokens),
	})
	if err != nil {
		return analysis.Result{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return analysis.Result{}, fmt.Errorf("%w: empty response", ErrModelUnavailable)
	}

	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if trimmed := strings.TrimSpace(part.Text); trimmed != "" {
			texts = append(texts, trimmed)
		}
	}
	if len(texts) == 0 {
		return analysis.Result{}, fmt.Errorf("%w: candidate missing text", ErrModelUnavailable)
	}

	return ParseResult(strings.Join(texts, "\n"))
}
