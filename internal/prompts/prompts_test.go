package prompts

import (
	"strings"
	"testing"
)

func TestAnalysisPromptPinsSchema(t *testing.T) {
	prompt := Analysis()

	for _, field := range []string{
		"disease_detected",
		"disease_name",
		"disease_type",
		"severity",
		"confidence",
		"symptoms",
		"possible_causes",
		"treatment",
		"invalid_image",
	} {
		if !strings.Contains(prompt, field) {
			t.Errorf("prompt missing %q", field)
		}
	}
}
