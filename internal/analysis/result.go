package analysis

import (
	"strings"
	"time"
)

// Disease categories the API returns. Anything else the model invents is
// coerced to TypeUnknown before the result leaves the service.
const (
	TypeFungal             = "fungal"
	TypeBacterial          = "bacterial"
	TypeViral              = "viral"
	TypePest               = "pest"
	TypeNutrientDeficiency = "nutrient_deficiency"
	TypeHealthy            = "healthy"
	TypeInvalidImage       = "invalid_image"
	TypeUnknown            = "unknown"
)

// Severity levels.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
	SeverityNone     = "none"
)

// Result is the fixed-schema disease analysis record returned per request.
// Every field is always populated; missing or malformed model output is
// replaced with a safe default rather than failing the whole response.
type Result struct {
	DiseaseDetected   bool      `json:"disease_detected"`
	DiseaseName       string    `json:"disease_name"`
	DiseaseType       string    `json:"disease_type"`
	Severity          string    `json:"severity"`
	Confidence        float64   `json:"confidence"`
	Symptoms          []string  `json:"symptoms"`
	PossibleCauses    []string  `json:"possible_causes"`
	Treatment         []string  `json:"treatment"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
}

// Normalize coerces enum values, clamps the confidence score and replaces nil
// slices so the serialized result always matches the published schema.
func (r *Result) Normalize() {
	r.DiseaseName = strings.TrimSpace(r.DiseaseName)
	r.DiseaseType = NormalizeDiseaseType(r.DiseaseType)
	r.Severity = NormalizeSeverity(r.Severity)
	r.Confidence = ClampConfidence(r.Confidence)
	if r.Symptoms == nil {
		r.Symptoms = []string{}
	}
	if r.PossibleCauses == nil {
		r.PossibleCauses = []string{}
	}
	if r.Treatment == nil {
		r.Treatment = []string{}
	}
}

// NormalizeDiseaseType maps free-form model output onto the known categories.
// Spaces become underscores because models write "nutrient deficiency".
func NormalizeDiseaseType(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.ReplaceAll(v, " ", "_")
	switch v {
	case TypeFungal, TypeBacterial, TypeViral, TypePest, TypeNutrientDeficiency, TypeHealthy, TypeInvalidImage:
		return v
	default:
		return TypeUnknown
	}
}

// NormalizeSeverity maps free-form model output onto the known levels.
func NormalizeSeverity(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return v
	default:
		return SeverityNone
	}
}

// ClampConfidence bounds a confidence score to [0,100].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
