package web

import (
	"context"
	"net/http"
	"time"

	"draft-desk/internal/importer"
	"draft-desk/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	drafts       *service.DraftService
	importer     *importer.Importer
	logger       *zap.Logger
	router       *mux.Router
	server       *http.Server
	maxBodyBytes int64
}

func NewServer(drafts *service.DraftService, imp *importer.Importer, logger *zap.Logger, maxBodyBytes int64) *Server {
	s := &Server{
		drafts:       drafts,
		importer:     imp,
		logger:       logger,
		router:       mux.NewRouter(),
		maxBodyBytes: maxBodyBytes,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/api/drafts", s.handleListDrafts).Methods("GET")
	s.router.HandleFunc("/api/drafts", s.handleCreateDraft).Methods("POST")
	s.router.HandleFunc("/api/drafts/import", s.handleImportDraft).Methods("POST")
	s.router.HandleFunc("/api/drafts/{id}", s.handleGetDraft).Methods("GET")
	s.router.HandleFunc("/api/drafts/{id}", s.handleUpdateDraft).Methods("PUT", "PATCH")
	s.router.HandleFunc("/api/drafts/{id}", s.handleDeleteDraft).Methods("DELETE")

	// Public read-only view
	s.router.HandleFunc("/api/content/{id}", s.handleGetContent).Methods("GET")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start launches the HTTP server
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("Web server listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
