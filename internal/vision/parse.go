package vision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"leafsight/internal/analysis"
)

// rawResult mirrors the schema the prompt asks for, with loose types so a
// sloppy model response still yields usable fields.
type rawResult struct {
	DiseaseDetected *bool      `json:"disease_detected"`
	DiseaseName     *string    `json:"disease_name"`
	DiseaseType     *string    `json:"disease_type"`
	Severity        *string    `json:"severity"`
	Confidence      flexFloat  `json:"confidence"`
	Symptoms        stringList `json:"symptoms"`
	PossibleCauses  stringList `json:"possible_causes"`
	Treatment       stringList `json:"treatment"`
}

// flexFloat accepts JSON numbers as well as numeric strings like "85" or
// "85%", which hosted models emit from time to time.
type flexFloat struct {
	set   bool
	value float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unusable value; leave unset so the default applies.
		return nil
	}
	f.set = true
	f.value = v
	return nil
}

// stringList accepts an array of strings, an array of mixed scalars, or a
// bare string where a list was expected.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var items []any
	if err := json.Unmarshal(data, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			switch v := item.(type) {
			case string:
				if trimmed := strings.TrimSpace(v); trimmed != "" {
					out = append(out, trimmed)
				}
			case float64:
				out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
			}
		}
		*l = out
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if trimmed := strings.TrimSpace(single); trimmed != "" {
			*l = stringList{trimmed}
		}
		return nil
	}

	// Unusable shape; leave nil so the default applies.
	return nil
}

// ParseResult turns the model's free-form text into a fully populated Result.
// The text may be bare JSON, JSON inside a markdown code fence, or JSON
// embedded in prose. Missing or malformed fields get defaults; only a
// response with no JSON object at all is an error.
func ParseResult(text string) (analysis.Result, error) {
	cleaned := stripCodeFence(strings.TrimSpace(text))

	var raw rawResult
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return analysis.Result{}, fmt.Errorf("%w: no JSON object in %q", ErrParseFailure, snippet(text))
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &raw); err != nil {
			return analysis.Result{}, fmt.Errorf("%w: %v", ErrParseFailure, err)
		}
	}

	result := analysis.Result{
		Symptoms:          raw.Symptoms,
		PossibleCauses:    raw.PossibleCauses,
		Treatment:         raw.Treatment,
		AnalysisTimestamp: time.Now(),
	}
	if raw.DiseaseDetected != nil {
		result.DiseaseDetected = *raw.DiseaseDetected
	}
	if raw.DiseaseName != nil {
		result.DiseaseName = *raw.DiseaseName
	}
	if raw.DiseaseType != nil {
		result.DiseaseType = *raw.DiseaseType
	}
	if raw.Severity != nil {
		result.Severity = *raw.Severity
	}
	if raw.Confidence.set {
		result.Confidence = raw.Confidence.value
	}
	result.Normalize()
	return result, nil
}

// stripCodeFence removes a surrounding markdown code block, including an
// optional "json" language tag.
func stripCodeFence(s string) string {
	const fence = "```"
	start := strings.Index(s, fence)
	if start < 0 {
		return s
	}
	rest := s[start+len(fence):]
	end := strings.Index(rest, fence)
	if end < 0 {
		return s
	}
	content := strings.TrimSpace(rest[:end])
	content = strings.TrimPrefix(content, "json")
	return strings.TrimSpace(content)
}

func snippet(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
