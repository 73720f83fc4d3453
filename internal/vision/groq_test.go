package vision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leafsight/internal/analysis"
)

func groqResponse(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	body, _ := json.Marshal(payload)
	return string(body)
}

func newTestGroq(t *testing.T, handler http.HandlerFunc, timeout time.Duration) (*GroqAnalyzer, func()) {
	t.Helper()
	ts := httptest.NewServer(handler)
	g := NewGroqAnalyzer("test-key", Config{Temperature: 0, Timeout: timeout})
	g.endpoint = ts.URL
	return g, ts.Close
}

func TestGroqAnalyzerSuccess(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any

	g, done := newTestGroq(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(groqResponse(`{"disease_detected": true, "disease_name": "Leaf Rust", "disease_type": "fungal", "severity": "mild", "confidence": 88}`)))
	}, time.Second)
	defer done()

	result, err := g.AnalyzeBytes(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg")
	if err != nil {
		t.Fatalf("AnalyzeBytes: %v", err)
	}
	if result.DiseaseName != "Leaf Rust" || result.DiseaseType != analysis.TypeFungal {
		t.Errorf("result = %+v", result)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotPayload["max_completion_tokens"] != float64(1024) {
		t.Errorf("max_completion_tokens = %v", gotPayload["max_completion_tokens"])
	}
}

func TestGroqAnalyzerServerError(t *testing.T) {
	g, done := newTestGroq(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "over capacity"}}`))
	}, time.Second)
	defer done()

	_, err := g.AnalyzeBytes(context.Background(), []byte{0x01}, "image/jpeg")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestGroqAnalyzerTimeout(t *testing.T) {
	g, done := newTestGroq(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(groqResponse("{}")))
	}, 20*time.Millisecond)
	defer done()

	_, err := g.AnalyzeBytes(context.Background(), []byte{0x01}, "image/jpeg")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestGroqAnalyzerUnparseableContent(t *testing.T) {
	g, done := newTestGroq(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(groqResponse("I am unable to help with that.")))
	}, time.Second)
	defer done()

	_, err := g.AnalyzeBytes(context.Background(), []byte{0x01}, "image/jpeg")
	if !errors.Is(err, ErrParseFailure) {
		t.Errorf("err = %v, want ErrParseFailure", err)
	}
}

func TestGroqAnalyzerMissingKey(t *testing.T) {
	g := NewGroqAnalyzer("", Config{})

	_, err := g.AnalyzeBytes(context.Background(), []byte{0x01}, "image/jpeg")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestGroqAnalyzerEmptyData(t *testing.T) {
	g := NewGroqAnalyzer("test-key", Config{})

	if _, err := g.AnalyzeBytes(context.Background(), nil, ""); err == nil {
		t.Error("expected error for empty data")
	}
}
