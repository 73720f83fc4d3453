package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"leafsight/internal/analysis"
	"leafsight/internal/prompts"
)

// VertexConfig describes how to reach a Gemini publisher model on Vertex AI.
type VertexConfig struct {
	ProjectID          string
	Location           string
	APIKey             string
	ServiceAccount     string
	ServiceAccountJSON string
	TokenSource        oauth2.TokenSource
}

// VertexAnalyzer runs the analysis against a publisher model endpoint via the
// Vertex AI prediction service.
type VertexAnalyzer struct {
	projectID          string
	location           string
	model              string
	apiKey             string
	serviceAccount     string
	serviceAccountJSON string
	tokenSource        oauth2.TokenSource
	temperature        float64
	maxTokens          int
	timeout            time.Duration
}

// NewVertexAnalyzer wires a Vertex-backed analyzer.
func NewVertexAnalyzer(vc VertexConfig, cfg Config) *VertexAnalyzer {
	model := strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")
	if model == "" {
		model = defaultGeminiModel
	}
	return &VertexAnalyzer{
		projectID:          strings.TrimSpace(vc.ProjectID),
		location:           strings.TrimSpace(vc.Location),
		model:              model,
		apiKey:             strings.TrimSpace(vc.APIKey),
		serviceAccount:     strings.TrimSpace(vc.ServiceAccount),
		serviceAccountJSON: strings.TrimSpace(vc.ServiceAccountJSON),
		tokenSource:        vc.TokenSource,
		temperature:        cfg.Temperature,
		maxTokens:          cfg.maxTokens(),
		timeout:            cfg.timeout(),
	}
}

// AnalyzeBytes runs the analysis on uploaded image data.
func (v *VertexAnalyzer) AnalyzeBytes(ctx context.Context, data []byte, mimeType string) (analysis.Result, error) {
	if len(data) == 0 {
		return analysis.Result{}, fmt.Errorf("vision: empty image data")
	}
	if v.projectID == "" || v.location == "" {
		return analysis.Result{}, fmt.Errorf("%w: missing project or location", ErrModelUnavailable)
	}

	childCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	options := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", v.location)),
	}
	switch {
	case v.serviceAccountJSON != "":
		options = append(options, option.WithCredentialsJSON([]byte(v.serviceAccountJSON)))
	case v.serviceAccount != "":
		options = append(options, option.WithCredentialsFile(v.serviceAccount))
	case v.tokenSource != nil:
		options = append(options, option.WithTokenSource(v.tokenSource))
	case v.apiKey != "":
		options = append(options, option.WithAPIKey(v.apiKey))
	}

	client, err := aiplatform.NewPredictionClient(childCtx, options...)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("%w: prediction client: %v", ErrModelUnavailable, err)
	}
	defer client.Close()

	temperature := float32(v.temperature)
	maxTokens := int32(v.maxTokens)
	endpoint := fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", v.projectID, v.location, v.model)

	resp, err := client.GenerateContent(childCtx, &aiplatformpb.GenerateContentRequest{
		Model: endpoint,
		Contents: []*aiplatformpb.Content{
			{
				Role: "user",
				Parts: []*aiplatformpb.Part{
					{Data: &aiplatformpb.Part_Text{Text: prompts.Analysis()}},
					{Data: &aiplatformpb.Part_InlineData{InlineData: &aiplatformpb.Blob{
						MimeType: detectMime(data, mimeType),
						Data:     data,
					}}},
				},
			},
		},
		GenerationConfig: &aiplatformpb.GenerationConfig{
			Temperature:     &temperature,
			MaxOutputTokens: &maxTokens,
		},
	})
	if err != nil {
		return analysis.Result{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return analysis.Result{}, fmt.Errorf("%w: empty response", ErrModelUnavailable)
	}

	var texts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if trimmed := strings.TrimSpace(part.GetText()); trimmed != "" {
			texts = append(texts, trimmed)
		}
	}
	if len(texts) == 0 {
		return analysis.Result{}, fmt.Errorf("%w: candidate missing text", ErrModelUnavailable)
	}

	return ParseResult(strings.Join(texts, "\n"))
}
