package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vbonduro/moveassist/internal/capture"
	"github.com/vbonduro/moveassist/internal/domain"
	"github.com/vbonduro/moveassist/internal/medium"
	"github.com/vbonduro/moveassist/internal/store"
)

// BoxStore is the slice of *store.BoxStore the handlers use.
type BoxStore interface {
	List(ctx context.Context) ([]*domain.Box, error)
	Get(ctx context.Context, id string) (*domain.Box, error)
	Save(ctx context.Context, in store.SaveInput) (*store.SaveResult, error)
	Delete(ctx context.Context, id string) error
	Usage(ctx context.Context) (medium.Usage, error)
}

type Server struct {
	boxes         BoxStore
	sessions      *capture.Manager
	maxPhotoBytes int64
	router        chi.Router
	logger        *slog.Logger
}

// NewServer enforces the same photo size limit as the capture sessions.
func NewServer(boxes BoxStore, sessions *capture.Manager, logger *slog.Logger) *Server {
	s := &Server{
		boxes:         boxes,
		sessions:      sessions,
		maxPhotoBytes: sessions.MaxPhotoBytes(),
		router:        chi.NewRouter(),
		logger:        logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms", s.handleListRooms)
		r.Get("/storage", s.handleStorageUsage)

		r.Route("/boxes", func(r chi.Router) {
			r.Get("/", s.handleListBoxes)
			r.Post("/", s.handleCreateBox)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetBox)
				r.Patch("/", s.handleUpdateBox)
				r.Delete("/", s.handleDeleteBox)
				r.Get("/photo", s.handleGetBoxPhoto)
				r.Get("/label", s.handleGetBoxLabel)
			})
		})

		r.Route("/captures", func(r chi.Router) {
			r.Post("/", s.handleCreateCapture)
			r.Route("/{sid}", func(r chi.Router) {
				r.Get("/", s.handleGetCapture)
				r.Delete("/", s.handleDeleteCapture)
				r.Put("/details", s.handleCaptureDetails)
				r.Post("/upload", s.handleBeginUpload)
				r.Post("/photo", s.handleCapturePhoto)
				r.Delete("/photo", s.handleRemoveCapturePhoto)
				r.Post("/camera", s.handleOpenCamera)
				r.Delete("/camera", s.handleCloseCamera)
				r.Post("/camera/flip", s.handleFlipCamera)
				r.Post("/camera/capture", s.handleCameraCapture)
				r.Post("/retag", s.handleRetag)
				r.Post("/suggest", s.handleSuggestRoom)
				r.Post("/apply-suggestion", s.handleApplySuggestion)
				r.Post("/submit", s.handleSubmitCapture)
			})
		})
	})
}

// securityHeaders sets browser hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self' data:; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
