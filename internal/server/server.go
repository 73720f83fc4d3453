package server

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"leafsight/internal/auth"
	"leafsight/internal/detection"
)

// New constructs the HTTP server with routes and middleware.
func New(port string, handler detection.Handler, apiKeys auth.Middleware) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Get("/", handler.Index)
	router.Post("/disease-detection-file", handler.DetectFile)
	router.Post("/disease-detection-base64", handler.DetectBase64)

	router.Route("/api", func(r chi.Router) {
		r.Use(apiKeys.RequireKey)
		r.Get("/analyses", handler.ListAnalyses)
		r.Get("/analyses/{id}", handler.GetAnalysis)
		r.Get("/events", handler.StreamEvents)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// No write timeout: analysis calls block on the external model and
		// /api/events keeps its connection open.
		IdleTimeout: 60 * time.Second,
	}

	log.Println("server ready on", srv.Addr)
	return srv
}
