package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"leafsight/internal/analysis"
	"leafsight/internal/prompts"
)

const (
	groqEndpoint     = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel = "meta-llama/llama-4-scout-17b-16e-instruct"
)

// GroqAnalyzer calls Groq's OpenAI-compatible chat completions API with the
// leaf image inlined as a base64 data URL.
type GroqAnalyzer struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	endpoint    string
	client      *http.Client
}

// NewGroqAnalyzer constructs the default analyzer.
func NewGroqAnalyzer(apiKey string, cfg Config) *GroqAnalyzer {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGroqModel
	}
	return &GroqAnalyzer{
		apiKey:      apiKey,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.maxTokens(),
		endpoint:    groqEndpoint,
		client:      &http.Client{Timeout: cfg.timeout()},
	}
}

// AnalyzeBytes runs the analysis on uploaded image data.
func (g *GroqAnalyzer) AnalyzeBytes(ctx context.Context, data []byte, mimeType string) (analysis.Result, error) {
	if len(data) == 0 {
		return analysis.Result{}, fmt.Errorf("vision: empty image data")
	}
	if strings.TrimSpace(g.apiKey) == "" {
		return analysis.Result{}, fmt.Errorf("%w: missing API key", ErrModelUnavailable)
	}

	payload := map[string]any{
		"model":                 g.model,
		"temperature":           g.temperature,
		"max_completion_tokens": g.maxTokens,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": prompts.Analysis()},
					{
						"type": "image_url",
						"image_url": map[string]string{
							"url": fmt.Sprintf("data:%s;base64,%s", detectMime(data, mimeType), base64.StdEncoding.EncodeToString(data)),
						},
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("vision: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return analysis.Result{}, fmt.Errorf("vision: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return analysis.Result{}, fmt.Errorf("%w: status %d: %s", ErrModelUnavailable, resp.StatusCode, failure.Error.Message)
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return analysis.Result{}, fmt.Errorf("%w: decode response: %v", ErrModelUnavailable, err)
	}
	if len(completion.Choices) == 0 {
		return analysis.Result{}, fmt.Errorf("%w: no choices returned", ErrModelUnavailable)
	}

	return ParseResult(completion.Choices[0].Message.Content)
}
