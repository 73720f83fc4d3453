package detection

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"strings"

	// Formats accepted for analysis. GIF registers too so we can tell an
	// unsupported image apart from something that is not an image at all.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"leafsight/internal/analysis"
	"leafsight/internal/events"
	"leafsight/internal/media"
	"leafsight/internal/storage"
	"leafsight/internal/vision"
)

// DefaultMaxImageBytes bounds uploads when no limit is configured.
const DefaultMaxImageBytes = 5 << 20

// Error codes surfaced to clients.
const (
	codeInvalidImage      = "invalid_image"
	codeTooLarge          = "too_large"
	codeUnsupportedFormat = "unsupported_format"
	codeModelUnavailable  = "model_unavailable"
	codeParseFailure      = "parse_failure"
	codeNotFound          = "not_found"
)

var errUnsupportedFormat = errors.New("unsupported image format")

var supportedFormats = map[string]struct{}{
	"jpeg": {},
	"png":  {},
	"bmp":  {},
	"tiff": {},
}

// Handler bundles dependencies for the detection endpoints.
type Handler struct {
	Analyzer      vision.Analyzer
	Store         storage.Store
	Uploader      media.Uploader
	Events        *events.Broker
	MaxImageBytes int64
	Provider      string
	Model         string
}

func (h Handler) maxBytes() int64 {
	if h.MaxImageBytes > 0 {
		return h.MaxImageBytes
	}
	return DefaultMaxImageBytes
}

// Index handles GET / with a static endpoint summary.
func (h Handler) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "leaf disease detection",
		"endpoints": map[string]string{
			"POST /disease-detection-file":   "multipart upload, field 'file'",
			"POST /disease-detection-base64": `JSON body {"image": "<base64>"}`,
			"GET /api/analyses":              "recent analyses",
			"GET /api/analyses/{id}":         "single analysis",
			"GET /api/events":                "SSE stream of completed analyses",
			"GET /health":                    "liveness probe",
		},
	})
}

// DetectFile handles POST /disease-detection-file.
func (h Handler) DetectFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxBytes() + (1 << 20)); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidImage, fmt.Sprintf("could not parse form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidImage, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes()+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidImage, "could not read file")
		return
	}

	h.analyze(w, r, data, header.Header.Get("Content-Type"), header.Filename)
}

// DetectBase64 handles POST /disease-detection-base64.
func (h Handler) DetectBase64(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidImage, "invalid request body")
		return
	}

	raw := strings.TrimSpace(req.Image)
	if strings.HasPrefix(raw, "data:") {
		if parts := strings.SplitN(raw, ",", 2); len(parts) == 2 {
			raw = parts[1]
		}
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidImage, "image is not valid base64")
		return
	}

	h.analyze(w, r, data, "", "upload")
}

// analyze validates the image bytes, delegates to the Analyzer and writes the
// result. Validation failures never reach the external model; model failures
// are never retried.
func (h Handler) analyze(w http.ResponseWriter, r *http.Request, data []byte, declaredType, filename string) {
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, codeInvalidImage, "empty image")
		return
	}
	if int64(len(data)) > h.maxBytes() {
		writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, fmt.Sprintf("image exceeds %d bytes", h.maxBytes()))
		return
	}

	format, err := sniffImage(data)
	if err != nil {
		if errors.Is(err, errUnsupportedFormat) {
			writeError(w, http.StatusUnsupportedMediaType, codeUnsupportedFormat, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, codeInvalidImage, "data is not a decodable image")
		return
	}

	mime := declaredType
	if strings.TrimSpace(mime) == "" {
		mime = "image/" + format
	}

	result, err := h.Analyzer.AnalyzeBytes(r.Context(), data, mime)
	if err != nil {
		if errors.Is(err, vision.ErrParseFailure) {
			log.Printf("analysis parse failure: %v", err)
			writeError(w, http.StatusInternalServerError, codeParseFailure, "model response could not be interpreted")
			return
		}
		log.Printf("analysis failed: %v", err)
		writeError(w, http.StatusBadGateway, codeModelUnavailable, "external analysis service unavailable")
		return
	}

	h.record(r.Context(), data, filename, mime, result)
	writeJSON(w, http.StatusOK, result)
}

// record archives the image and stores the analysis. Both are best effort;
// the caller already has their result.
func (h Handler) record(ctx context.Context, data []byte, filename, mime string, result analysis.Result) {
	var imageKey, imageURL string
	if h.Uploader != nil {
		up, err := h.Uploader.Upload(ctx, media.UploadInput{
			Filename:    filename,
			ContentType: mime,
			Body:        bytes.NewReader(data),
			Size:        int64(len(data)),
		})
		switch {
		case err == nil:
			imageKey, imageURL = up.Key, up.URL
		case !errors.Is(err, media.ErrUploaderDisabled):
			log.Printf("image archive failed: %v", err)
		}
	}

	if h.Store == nil {
		return
	}
	saved, err := h.Store.SaveAnalysis(ctx, storage.Analysis{
		ImageKey: imageKey,
		ImageURL: imageURL,
		Provider: h.Provider,
		Model:    h.Model,
		Result:   result,
	})
	if err != nil {
		log.Printf("could not record analysis: %v", err)
		return
	}
	if h.Events != nil {
		h.Events.Publish(events.Event{
			AnalysisID:  saved.ID,
			DiseaseName: result.DiseaseName,
			DiseaseType: result.DiseaseType,
			Severity:    result.Severity,
			Confidence:  result.Confidence,
		})
	}
}

func sniffImage(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if _, ok := supportedFormats[format]; !ok {
		return "", fmt.Errorf("%w: %s", errUnsupportedFormat, format)
	}
	return format, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
