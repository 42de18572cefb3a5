// Package server exposes an on-demand encyclopedia lookup over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/HazeMiya/ai-2024/internal/wiki"
)

const welcome = "本の分析APIへようこそ"

// PageFetcher loads one encyclopedia article by exact title.
type PageFetcher interface {
	Page(ctx context.Context, title string) (wiki.Page, error)
}

// Analysis is the response body of GET /analyze/{title}.
type Analysis struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Locations  []string `json:"locations"`
	Characters []string `json:"characters"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

// Server serves the lookup API.
type Server struct {
	pages PageFetcher
}

// New creates a Server backed by pages.
func New(pages PageFetcher) *Server {
	return &Server{pages: pages}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/", s.handleRoot)
	r.Get("/analyze/{title}", s.handleAnalyze)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Server listening", "address", listener.Addr().String())
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcome})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	page, err := s.pages.Page(r.Context(), title)
	if errors.Is(err, wiki.ErrPageNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: fmt.Sprintf("『%s』の情報が見つかりませんでした", title)})
		return
	}
	if err != nil {
		slog.Error("Page lookup failed", "title", title, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, Analyze(title, page.Extract))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
